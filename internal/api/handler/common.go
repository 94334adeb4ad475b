package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/workflows-scrum/workflows/internal/api/middleware"
	"github.com/workflows-scrum/workflows/internal/api/response"
	"github.com/workflows-scrum/workflows/internal/api/validation"
	"github.com/workflows-scrum/workflows/internal/auth"
)

const (
	timeFormat  = "2006-01-02T15:04:05Z"
	maxBodySize = 1 << 20
)

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(validation.DateLayout)
	return &s
}

// parseID reads a positive integer from s. Writes a 400 and returns false
// when s is not one.
func parseID(w http.ResponseWriter, s, field, requestID string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		response.Err(w, http.StatusBadRequest, "INVALID_ID", field+" must be a positive integer", requestID)
		return 0, false
	}
	return id, true
}

// urlID reads a positive integer URL parameter.
func urlID(w http.ResponseWriter, r *http.Request, param, requestID string) (int64, bool) {
	return parseID(w, chi.URLParam(r, param), param, requestID)
}

// decodeJSON decodes the request body into dst. Writes a 400 and returns
// false when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, requestID string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Err(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "Request body is too large", requestID)
			return false
		}
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return false
	}
	return true
}

func validationFailed(w http.ResponseWriter, fieldErrors []validation.FieldError, requestID string) {
	response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
}

func notFound(w http.ResponseWriter, message, requestID string) {
	response.Err(w, http.StatusNotFound, "NOT_FOUND", message, requestID)
}

func internalError(w http.ResponseWriter, message, requestID string, err error, attrs ...any) {
	slog.Error("failed to "+message, append([]any{"error", err, "requestId", requestID}, attrs...)...)
	response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to "+message, requestID)
}

// sessionUser returns the id of the logged-in user, or 0.
func sessionUser(r *http.Request) int64 {
	if s := middleware.GetSession(r.Context()); s != nil {
		return s.UserID
	}
	return 0
}

func currentSession(r *http.Request) *auth.Session {
	return middleware.GetSession(r.Context())
}
