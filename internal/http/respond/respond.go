// Package respond writes JSON bodies and maps service errors to HTTP status codes.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sh44ni/telalalbedaya-sub000/internal/apperrors"
	"github.com/sh44ni/telalalbedaya-sub000/internal/calendar"
)

type errorResponse struct {
	Error      string                `json:"error"`
	Violations []apperrors.Violation `json:"violations,omitempty"`
}

// JSON encodes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes err as 400 for validation failures, 404 for missing records
// and an opaque 500 for everything else.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var verr *apperrors.ValidationError

	switch {
	case errors.As(err, &verr):
		JSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Violations: verr.Violations})
	case errors.Is(err, apperrors.ErrValidation):
		JSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		JSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		JSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// BadRequest writes a 400 with msg.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// ID parses the {id} URL parameter, writing a 400 on failure.
func ID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		BadRequest(w, "invalid id")
		return uuid.Nil, false
	}

	return id, true
}

// Decode reads a JSON body into v, writing a 400 on failure.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		BadRequest(w, "invalid request body: "+err.Error())
		return false
	}

	return true
}

// QueryID reads an optional uuid query parameter.
func QueryID(q url.Values, name string) (*uuid.UUID, error) {
	s := q.Get(name)
	if s == "" {
		return nil, nil
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return nil, apperrors.Invalid(name, "uuid", name+" must be a uuid")
	}

	return &id, nil
}

// QueryDay reads an optional YYYY-MM-DD query parameter.
func QueryDay(q url.Values, name string) (*time.Time, error) {
	s := q.Get(name)
	if s == "" {
		return nil, nil
	}

	t, err := calendar.ParseDay(s)
	if err != nil {
		return nil, apperrors.Invalid(name, "date", err.Error())
	}

	return &t, nil
}

// Day parses an optional YYYY-MM-DD body field. Empty means the zero time.
func Day(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}

	t, err := calendar.ParseDay(s)
	if err != nil {
		return time.Time{}, apperrors.Invalid(field, "date", err.Error())
	}

	return t, nil
}
