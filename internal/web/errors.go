package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/justestif/go-tuneaura/internal/catalog"
	"github.com/justestif/go-tuneaura/internal/mood"
	"github.com/justestif/go-tuneaura/internal/session"
)

var (
	errTrackNotFound = errors.New("track not found")
	errBadPosition   = errors.New("position must be a whole number of seconds")
	errBadPermission = errors.New("allow must be true or false")
)

type ctxKey int

const jsonKey ctxKey = 0

// jsonAPI marks requests that should be answered with JSON.
func jsonAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), jsonKey, true)))
	})
}

func isJSON(r *http.Request) bool {
	v, _ := r.Context().Value(jsonKey).(bool)
	return v
}

// statusFor maps an event error to an HTTP status.
func statusFor(err error) int {
	var missing *session.MissingFieldError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &missing),
		errors.Is(err, mood.ErrEmptyInput),
		errors.Is(err, mood.ErrInvalidMood),
		errors.Is(err, session.ErrUnknownSection),
		errors.Is(err, errBadPosition),
		errors.Is(err, errBadPermission):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, errTrackNotFound), errors.Is(err, catalog.ErrNoTracks):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, session.ErrNotLoggedIn),
		errors.Is(err, session.ErrNoDetection):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the flash message for an error the machine did not alert on.
func messageFor(err error) string {
	switch {
	case errors.Is(err, session.ErrNotLoggedIn):
		return "Please log in first."
	case errors.Is(err, session.ErrNoDetection):
		return "No mood detected yet."
	case errors.Is(err, session.ErrInvalidTransition):
		return "That isn't available right now."
	case errors.Is(err, session.ErrUnknownSection):
		return "That page doesn't exist."
	case errors.Is(err, errTrackNotFound), errors.Is(err, catalog.ErrNoTracks):
		return "That track is no longer available."
	case errors.Is(err, errBadPosition), errors.Is(err, errBadPermission):
		return err.Error()
	default:
		return "Something went wrong. Please try again."
	}
}
