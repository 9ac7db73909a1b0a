package errors

import "fmt"

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	// ErrValidationFailed covers malformed or missing input. It never reaches the store.
	ErrValidationFailed = fmt.Errorf("validation failed")
	ErrInvalidType      = fmt.Errorf("invalid message type")
	ErrConflict         = fmt.Errorf("participant already in the room")
	// ErrUnauthorized means the sender is not in the room at all.
	ErrUnauthorized = fmt.Errorf("participant not in the room")
	// ErrForbidden means the sender is in the room but does not own the message.
	ErrForbidden    = fmt.Errorf("participant does not own the message")
	ErrNotFound     = fmt.Errorf("not found")
	ErrStoreFailure = fmt.Errorf("store failure")
)
