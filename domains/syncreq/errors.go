package syncreq

import (
	"errors"
	"fmt"
)

// ValidationError is a terminal, non-retriable problem with a trigger.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NotFound builds the validation error for a missing or unknown repository.
func NotFound(repositoryID string) *ValidationError {
	if repositoryID == "" {
		repositoryID = "undefined"
	}
	return &ValidationError{Message: fmt.Sprintf("Repository not found: %s", repositoryID)}
}

func invalid(err error, format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...), Err: err}
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
