package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoData is returned when the request carries no tenancy data.
var ErrNoData = errors.New("No data provided")

// FieldError describes one missing or invalid payload field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError is a client error (HTTP 400).
type ValidationError struct {
	Message string
	Fields  []FieldError

	cause error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Reason
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return e.cause }

// NewValidationError builds a ValidationError for the given field failures.
func NewValidationError(msg string, fields ...FieldError) *ValidationError {
	return &ValidationError{Message: msg, Fields: fields}
}

func noData() *ValidationError {
	return &ValidationError{Message: ErrNoData.Error(), cause: ErrNoData}
}

// InternalError is any failure while building a pack (HTTP 500). The message
// of the wrapped error is reported verbatim.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string { return e.Err.Error() }
func (e *InternalError) Unwrap() error { return e.Err }

// Internal wraps err unless it already is a ValidationError or InternalError.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	var ie *InternalError
	if errors.As(err, &ve) || errors.As(err, &ie) {
		return err
	}
	return &InternalError{Err: err}
}

// MissingFieldError is raised in lenient mode when rendering would need a
// field the payload does not have.
type MissingFieldError struct {
	Path string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field '%s'", e.Path)
}
