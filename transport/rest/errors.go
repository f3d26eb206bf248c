package rest

import (
	"errors"
	"net/http"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
)

// statusFor - maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrInvalidArgument),
		errors.Is(err, apperror.ErrSessionFull),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrIllegalMove),
		errors.Is(err, apperror.ErrGameIsNotStarted),
		errors.Is(err, apperror.ErrGameFinished):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
