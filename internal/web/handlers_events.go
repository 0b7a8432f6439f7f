package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/mfeller-dev/guestlist/internal/store"
)

// eventPayload is the writable subset of an event record.
type eventPayload struct {
	Name        string    `json:"name"`
	StartsAt    time.Time `json:"starts_at"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	ExternalRef string    `json:"external_ref"`
}

func (p *eventPayload) validate() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return badRequest("name is required")
	}
	if p.StartsAt.IsZero() {
		return badRequest("starts_at is required")
	}
	return nil
}

func (p *eventPayload) apply(e *store.Event) {
	e.Name = p.Name
	e.StartsAt = p.StartsAt
	e.Location = p.Location
	e.Description = p.Description
	e.ExternalRef = p.ExternalRef
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.store.ListEvents(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var p eventPayload
	if err := decodeJSON(r, &p); err != nil {
		respondError(w, r, err)
		return
	}
	if err := p.validate(); err != nil {
		respondError(w, r, err)
		return
	}

	e := &store.Event{}
	p.apply(e)
	if err := s.store.CreateEvent(r.Context(), e); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, e)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	e, err := s.eventFromPath(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	e, err := s.eventFromPath(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var p eventPayload
	if err := decodeJSON(r, &p); err != nil {
		respondError(w, r, err)
		return
	}
	if err := p.validate(); err != nil {
		respondError(w, r, err)
		return
	}

	p.apply(e)
	if err := s.store.UpdateEvent(r.Context(), e); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "eventID")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.store.DeleteEvent(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAttendees(w http.ResponseWriter, r *http.Request) {
	e, err := s.eventFromPath(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	attendees, err := s.store.ListAttendees(r.Context(), e.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"event":     e,
		"attendees": attendees,
	})
}

type addAttendeeRequest struct {
	GuestID int64  `json:"guest_id"`
	Notes   string `json:"notes"`
}

// handleAddAttendee registers one guest for the event.
func (s *Server) handleAddAttendee(w http.ResponseWriter, r *http.Request) {
	e, err := s.eventFromPath(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req addAttendeeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.GuestID <= 0 {
		respondError(w, r, badRequest("guest_id is required"))
		return
	}

	// The guest must belong to the caller to be added by id.
	if _, err := s.store.GetGuest(r.Context(), req.GuestID, currentUserID(r)); err != nil {
		respondError(w, r, err)
		return
	}

	a := &store.Attendance{GuestID: req.GuestID, EventID: e.ID, Notes: req.Notes}
	if err := s.store.CreateAttendance(r.Context(), a); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, a)
}

func (s *Server) handleRemoveAttendee(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "eventID")
	if err != nil {
		respondError(w, r, err)
		return
	}
	attendanceID, err := pathID(r, "attendanceID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.store.DeleteAttendance(r.Context(), attendanceID, eventID); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setAttendedRequest struct {
	Attended bool `json:"attended"`
}

// handleSetAttended flips the check-in flag on an attendance row.
func (s *Server) handleSetAttended(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "eventID")
	if err != nil {
		respondError(w, r, err)
		return
	}
	attendanceID, err := pathID(r, "attendanceID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req setAttendedRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.store.SetAttended(r.Context(), attendanceID, eventID, req.Attended); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// eventFromPath loads the event named by the URL. Events are global, not
// scoped to the authenticated user.
func (s *Server) eventFromPath(r *http.Request) (*store.Event, error) {
	id, err := pathID(r, "eventID")
	if err != nil {
		return nil, err
	}
	return s.store.GetEvent(r.Context(), id)
}
