package web

import (
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/mfeller-dev/guestlist/internal/reconcile"
	"github.com/mfeller-dev/guestlist/internal/store"
)

// guestPayload is the writable subset of a guest record.
type guestPayload struct {
	Prefix              string `json:"prefix"`
	FirstName           string `json:"first_name"`
	MiddleName          string `json:"middle_name"`
	LastName            string `json:"last_name"`
	Nickname            string `json:"nickname"`
	Descriptor          string `json:"descriptor"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	Organization        string `json:"organization"`
	Title               string `json:"title"`
	ExternalID          string `json:"external_id"`
	RelationshipManager string `json:"relationship_manager"`
	DonorCapacity       string `json:"donor_capacity"`
	Bio                 string `json:"bio"`
	Notes               string `json:"notes"`
}

func (p *guestPayload) validate() error {
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	if p.FirstName == "" || p.LastName == "" {
		return badRequest("first_name and last_name are required")
	}
	return nil
}

// apply copies the payload onto a guest, normalizing donor capacity.
func (p *guestPayload) apply(g *store.Guest) {
	g.Prefix = p.Prefix
	g.FirstName = p.FirstName
	g.MiddleName = p.MiddleName
	g.LastName = p.LastName
	g.Nickname = p.Nickname
	g.Descriptor = p.Descriptor
	g.Email = strings.TrimSpace(p.Email)
	g.Phone = p.Phone
	g.Organization = p.Organization
	g.Title = p.Title
	g.ExternalID = strings.TrimSpace(p.ExternalID)
	g.RelationshipManager = p.RelationshipManager
	g.DonorCapacity = reconcile.NormalizeCapacity(p.DonorCapacity)
	g.Bio = p.Bio
	g.Notes = p.Notes
}

type guestListResponse struct {
	Guests   []store.Guest `json:"guests"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// handleListGuests returns a page of the user's guests. Query parameters:
// q (search), sort, dir, page, page_size.
func (s *Server) handleListGuests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}

	guests, total, err := s.store.ListGuests(r.Context(), store.GuestListParams{
		UserID:  currentUserID(r),
		Search:  strings.TrimSpace(q.Get("q")),
		SortBy:  q.Get("sort"),
		SortDir: q.Get("dir"),
		Limit:   pageSize,
		Offset:  (page - 1) * pageSize,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, guestListResponse{
		Guests:   guests,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (s *Server) handleCreateGuest(w http.ResponseWriter, r *http.Request) {
	var p guestPayload
	if err := decodeJSON(r, &p); err != nil {
		respondError(w, r, err)
		return
	}
	if err := p.validate(); err != nil {
		respondError(w, r, err)
		return
	}

	g := &store.Guest{UserID: currentUserID(r)}
	p.apply(g)

	if err := s.store.CreateGuest(r.Context(), g); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, g)
}

func (s *Server) handleGetGuest(w http.ResponseWriter, r *http.Request) {
	g, err := s.guestFromPath(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

func (s *Server) handleUpdateGuest(w http.ResponseWriter, r *http.Request) {
	g, err := s.guestFromPath(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var p guestPayload
	if err := decodeJSON(r, &p); err != nil {
		respondError(w, r, err)
		return
	}
	if err := p.validate(); err != nil {
		respondError(w, r, err)
		return
	}

	p.apply(g)
	if err := s.store.UpdateGuest(r.Context(), g); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, g)
}

func (s *Server) handleDeleteGuest(w http.ResponseWriter, r *http.Request) {
	g, err := s.guestFromPath(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.store.DeleteGuest(r.Context(), g.ID, g.UserID); err != nil {
		respondError(w, r, err)
		return
	}
	// The photo file is orphaned once the row is gone; best effort cleanup.
	if err := s.photos.Remove(g.PhotoFilename); err != nil {
		slogWarn(r, "removing guest photo", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUploadPhoto replaces the guest's photo from a multipart "photo" part.
func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	g, err := s.guestFromPath(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)
	file, _, err := r.FormFile("photo")
	if err != nil {
		respondError(w, r, badRequest("photo file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, badRequest("could not read photo: %v", err))
		return
	}

	name, err := s.photos.Save(data)
	if err != nil {
		respondError(w, r, err)
		return
	}

	old := g.PhotoFilename
	g.PhotoFilename = name
	if err := s.store.UpdateGuest(r.Context(), g); err != nil {
		s.photos.Remove(name)
		respondError(w, r, err)
		return
	}
	if err := s.photos.Remove(old); err != nil {
		slogWarn(r, "removing replaced photo", err)
	}

	respondJSON(w, http.StatusOK, g)
}

func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	g, err := s.guestFromPath(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if g.PhotoFilename == "" {
		respondError(w, r, store.ErrNotFound)
		return
	}

	path := s.photos.Path(g.PhotoFilename)
	if _, err := os.Stat(path); err != nil {
		respondError(w, r, store.ErrNotFound)
		return
	}
	http.ServeFile(w, r, path)
}

func (s *Server) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	g, err := s.guestFromPath(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if g.PhotoFilename == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	old := g.PhotoFilename
	g.PhotoFilename = ""
	if err := s.store.UpdateGuest(r.Context(), g); err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.photos.Remove(old); err != nil {
		slogWarn(r, "removing photo", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// guestFromPath loads the guest named by the URL, scoped to the
// authenticated user.
func (s *Server) guestFromPath(r *http.Request) (*store.Guest, error) {
	id, err := pathID(r, "guestID")
	if err != nil {
		return nil, err
	}
	return s.store.GetGuest(r.Context(), id, currentUserID(r))
}
