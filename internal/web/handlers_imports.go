package web

import (
	"io"
	"net/http"

	"github.com/mfeller-dev/guestlist/internal/reconcile"
	"github.com/mfeller-dev/guestlist/internal/store"
	"github.com/mfeller-dev/guestlist/internal/tabular"
)

// readUpload pulls the "file" part out of a multipart request, enforcing the
// configured size cap, and parses it into a table.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*tabular.Table, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, badRequest("an import file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, badRequest("could not read upload: %v", err)
	}

	return tabular.Read(data, header.Filename)
}

// guestImportResponse is a guest run summary plus the capped, user-facing
// rendering of the skipped row labels.
type guestImportResponse struct {
	*reconcile.GuestSummary
	SkippedDisplay string `json:"skipped_display,omitempty"`
}

func newGuestImportResponse(s *reconcile.GuestSummary) guestImportResponse {
	return guestImportResponse{GuestSummary: s, SkippedDisplay: s.SkippedDisplay()}
}

// attendeeImportResponse is an attendee run summary plus the capped,
// user-facing rendering of the unmatched names.
type attendeeImportResponse struct {
	*reconcile.AttendeeSummary
	NotFoundDisplay string `json:"not_found_display,omitempty"`
}

func newAttendeeImportResponse(s *reconcile.AttendeeSummary) attendeeImportResponse {
	return attendeeImportResponse{AttendeeSummary: s, NotFoundDisplay: s.NotFoundDisplay()}
}

// handleImportGuests ingests a guest spreadsheet for the authenticated user.
// The whole file is applied in one transaction; any row failure discards the
// entire run.
func (s *Server) handleImportGuests(w http.ResponseWriter, r *http.Request) {
	table, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	userID := currentUserID(r)

	var summary *reconcile.GuestSummary
	err = s.store.WithTx(r.Context(), func(q *store.Queries) error {
		var txErr error
		summary, txErr = reconcile.ImportGuests(r.Context(), q, table, userID)
		return txErr
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newGuestImportResponse(summary))
}

// handleImportAttendees ingests an attendee list for one event, matching
// rows against already-known guests by name.
func (s *Server) handleImportAttendees(w http.ResponseWriter, r *http.Request) {
	event, err := s.eventFromPath(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	table, err := s.readUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var summary *reconcile.AttendeeSummary
	err = s.store.WithTx(r.Context(), func(q *store.Queries) error {
		var txErr error
		summary, txErr = reconcile.ImportAttendees(r.Context(), q, table, event.ID)
		return txErr
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newAttendeeImportResponse(summary))
}
