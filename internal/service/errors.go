package service

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")
	// ErrUserNotFound means the session is valid but the store has no
	// matching user row.
	ErrUserNotFound = errors.New("user not found")
	// ErrTodoNotFound covers both a missing todo and one owned by someone
	// else.
	ErrTodoNotFound = errors.New("todo not found")
	ErrValidation   = errors.New("validation failed")
	// ErrMalformedBody and ErrInvalidPatch are not client errors; the
	// transport reports them like any other unexpected failure.
	ErrMalformedBody = errors.New("malformed request body")
	ErrInvalidPatch  = errors.New("invalid patch")
)

// ValidationError describes rejected input. Message is safe to show to
// clients.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
