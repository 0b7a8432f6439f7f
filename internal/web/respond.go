package web

// respond.go centralizes JSON encoding and error mapping for the API.
//
// Handlers call respondError with whatever error bubbled up; the mapping
// below decides the status code and the client-facing message, and the full
// technical error is logged with the request ID for correlation.

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mfeller-dev/guestlist/internal/logging"
	"github.com/mfeller-dev/guestlist/internal/photo"
	"github.com/mfeller-dev/guestlist/internal/reconcile"
	"github.com/mfeller-dev/guestlist/internal/report"
	"github.com/mfeller-dev/guestlist/internal/store"
	"github.com/mfeller-dev/guestlist/internal/tabular"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// badRequestError carries a handler-level validation message to respondError.
type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

// badRequest wraps a validation message so respondError maps it to 400.
func badRequest(format string, args ...interface{}) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// respondError maps an error to a status code and JSON body, logging the
// technical detail server-side.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	resp := ErrorResponse{Error: "internal server error"}

	var (
		missing   *tabular.MissingColumnsError
		badReq    *badRequestError
		importErr *reconcile.ImportError
	)
	switch {
	case errors.As(err, &badReq):
		status = http.StatusBadRequest
		resp.Error = badReq.msg
	case errors.As(err, &missing):
		status = http.StatusBadRequest
		resp.Error = "could not find first name and last name columns"
		resp.Details = missing.Found
	case errors.Is(err, tabular.ErrUnreadableFile):
		status = http.StatusBadRequest
		resp.Error = err.Error()
	case errors.As(err, &importErr):
		// The run was rolled back; surface which row broke it.
		resp.Error = importErr.Error()
	case errors.Is(err, photo.ErrUnsupportedImage):
		status = http.StatusBadRequest
		resp.Error = "photo must be a JPEG or PNG image"
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
		resp.Error = "not found"
	case errors.Is(err, errUnauthorized):
		status = http.StatusUnauthorized
		resp.Error = "invalid or missing token"
	case isUniqueViolation(err):
		status = http.StatusConflict
		resp.Error = "already exists"
	case errors.Is(err, report.ErrReportGeneration):
		resp.Error = "could not generate report"
	}

	if status >= 500 {
		logging.FromContext(r.Context()).Error("request error",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err.Error(),
		)
	}

	respondJSON(w, status, resp)
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid request body: %v", err)
	}
	return nil
}

// slogWarn logs a non-fatal handler problem with the request ID attached.
func slogWarn(r *http.Request, msg string, err error) {
	logging.FromContext(r.Context()).Warn(msg, "error", err)
}

// pathID parses a numeric URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid %s", name)
	}
	return id, nil
}
