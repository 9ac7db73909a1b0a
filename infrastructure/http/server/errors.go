package server

import (
	apperrors "chat-room/errors"
	"errors"
	"net/http"
)

// statusFor maps service errors onto the HTTP contract of the room API.
// A sender outside the room is reported as 422, a sender who does not own
// the message as 401.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidationFailed),
		errors.Is(err, apperrors.ErrInvalidType),
		errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides store internals from callers, validation details are kept.
func publicMessage(status int, err error) string {
	if status == http.StatusInternalServerError {
		return http.StatusText(status)
	}
	return err.Error()
}
