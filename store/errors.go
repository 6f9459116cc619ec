package store

import "errors"

// ErrNotFound is returned when no record matches an id. Malformed ids
// produce the same error so callers cannot tell the two apart.
var ErrNotFound = errors.New("record not found")

// ValidationError is a client error whose Message is safe to return verbatim
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with the given message
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

var (
	ErrInvalidGenre    = NewValidationError("Invalid genre.")
	ErrInvalidCustomer = NewValidationError("Invalid customer.")
	ErrInvalidMovie    = NewValidationError("Invalid movie.")
	ErrMovieNotInStock = NewValidationError("Movie not in stock.")
	ErrReturnProcessed = NewValidationError("Return already processed.")
	ErrUserExists      = NewValidationError("User already registered.")
)
