package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/pickemparty/pickem-app/internal/awards"
)

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	http.Error(w, msg, http.StatusBadRequest)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	http.Error(w, msg, http.StatusNotFound)
}

// statusFor maps the domain error taxonomy onto HTTP statuses. Everything in
// the taxonomy is a retry-with-different-input failure, never a 500.
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, awards.ErrGameNotFound),
		errors.Is(err, awards.ErrCategoryNotFound),
		errors.Is(err, awards.ErrNominationNotFound),
		errors.Is(err, awards.ErrInvalidAccessCode):
		return http.StatusNotFound, true
	case errors.Is(err, awards.ErrNotAParticipant):
		return http.StatusForbidden, true
	case errors.Is(err, awards.ErrPicksLocked),
		errors.Is(err, awards.ErrGameNotJoinable),
		errors.Is(err, awards.ErrInvalidTransition):
		return http.StatusConflict, true
	case errors.Is(err, awards.ErrCategoryNotInGame),
		errors.Is(err, awards.ErrNominationNotInCategory),
		errors.Is(err, awards.ErrNominationCategoryMismatch):
		return http.StatusUnprocessableEntity, true
	}
	return 0, false
}

// DomainError writes a domain failure as JSON, falling back to a 500 for
// anything outside the taxonomy.
func DomainError(w http.ResponseWriter, msg string, err error) {
	status, ok := statusFor(err)
	if !ok {
		InternalServerError(w, msg, err)
		return
	}
	slog.Warn(msg, "error", err, "status", status)
	WriteJSON(w, status, map[string]string{"error": err.Error()})
}
