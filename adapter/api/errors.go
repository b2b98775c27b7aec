package api

import (
	"errors"
	"net/http"

	"github.com/felixgeelhaar/calmbox/internal/datasource"
	inboxQueries "github.com/felixgeelhaar/calmbox/internal/inbox/application/queries"
	inbox "github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	"github.com/felixgeelhaar/calmbox/internal/productivity/application/commands"
	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/task"
	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/value_objects"
)

type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string { return "invalid request body: " + e.err.Error() }
func (e *badRequestError) Unwrap() error { return e.err }

// statusFor maps application errors to HTTP status codes.
func statusFor(err error) int {
	var bad *badRequestError
	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest
	case errors.Is(err, inbox.ErrEmailNotFound),
		errors.Is(err, task.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, inbox.ErrInvalidLevel),
		errors.Is(err, task.ErrEmptyTitle),
		errors.Is(err, task.ErrInvalidStatus),
		errors.Is(err, value_objects.ErrInvalidPriority),
		errors.Is(err, inboxQueries.ErrEmptyText):
		return http.StatusBadRequest
	case errors.Is(err, commands.ErrEmailNotProcessed):
		return http.StatusConflict
	case errors.Is(err, datasource.ErrFetchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	s.respondError(w, status, err.Error())
}
