package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/mfeller-dev/guestlist/internal/report"
)

// handleBioSheet renders the PDF briefing for an event and streams it as a
// download.
func (s *Server) handleBioSheet(w http.ResponseWriter, r *http.Request) {
	event, err := s.eventFromPath(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	attendees, err := s.store.ListAttendees(r.Context(), event.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	pdf, err := s.reports.BioSheet(event, attendees)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s", strconv.Quote(report.Filename(event.Name))))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.Write(pdf)
}
