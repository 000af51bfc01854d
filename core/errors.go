package core

import "github.com/pkg/errors"

// FieldError pins a validation failure to a single struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError carries a request-level error and the per-field
// failures that produced it. API handlers render it as a 400.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown signals that the error is unrecoverable and the server
// should stop accepting traffic.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
