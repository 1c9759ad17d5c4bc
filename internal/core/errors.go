package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUser      = errors.New("username already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
	ErrValidation         = errors.New("validation failed")
	ErrSchema             = errors.New("invalid schema")

	ErrMalformedRecord = errors.New("malformed record")
	ErrInvalidValue    = errors.New("invalid value")
)

// ValidationError reports a field that failed input validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// SchemaError reports required columns missing from an uploaded file.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// MalformedRecordError is returned when a record reaching the aggregator has a
// null numeric field.
type MalformedRecordError struct {
	Index int
	Field string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("record %d: %s is null or non-numeric", e.Index, e.Field)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

// InvalidValueError is returned when a record reaching the aggregator has a
// negative price or quantity.
type InvalidValueError struct {
	Index int
	Field string
	Value string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("record %d: %s must not be negative (got %s)", e.Index, e.Field, e.Value)
}

func (e *InvalidValueError) Unwrap() error { return ErrInvalidValue }

// IsUserInput reports whether err is caused by the caller's request and can be
// corrected by them.
func IsUserInput(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrDuplicateUser) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrSchema)
}

// IsDataIntegrity reports whether err comes from stored data that violates the
// report's numeric invariants.
func IsDataIntegrity(err error) bool {
	return errors.Is(err, ErrMalformedRecord) || errors.Is(err, ErrInvalidValue)
}
