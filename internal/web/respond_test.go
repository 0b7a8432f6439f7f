package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mfeller-dev/guestlist/internal/photo"
	"github.com/mfeller-dev/guestlist/internal/store"
	"github.com/mfeller-dev/guestlist/internal/tabular"
)

func TestRespondErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad request", badRequest("nope"), http.StatusBadRequest},
		{"missing columns", &tabular.MissingColumnsError{Found: []string{"Email"}}, http.StatusBadRequest},
		{"unreadable file", fmt.Errorf("%w: details", tabular.ErrUnreadableFile), http.StatusBadRequest},
		{"bad image", fmt.Errorf("%w: details", photo.ErrUnsupportedImage), http.StatusBadRequest},
		{"not found", store.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("load guest: %w", store.ErrNotFound), http.StatusNotFound},
		{"unauthorized", errUnauthorized, http.StatusUnauthorized},
		{"unique violation", &pgconn.PgError{Code: "23505"}, http.StatusConflict},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}

			var body ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("body is not JSON: %v", err)
			}
			if body.Error == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestRespondErrorMissingColumnsDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := &tabular.MissingColumnsError{Found: []string{"Email", "Rating"}}
	respondError(rec, httptest.NewRequest(http.MethodGet, "/", nil), err)

	var body ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Details) != 2 || body.Details[0] != "Email" {
		t.Errorf("details = %v, want the found headers", body.Details)
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, httptest.NewRequest(http.MethodGet, "/", nil),
		fmt.Errorf("pq: connection refused on 10.1.2.3"))

	var body ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "internal server error" {
		t.Errorf("error = %q, internal details must not leak", body.Error)
	}
}
