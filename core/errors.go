package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// IntegrityError is returned by the storage layer when a write violates a store constraint.
// Duplicate is set for unique violations.
type IntegrityError struct {
	Err       error
	Duplicate bool
}

func NewIntegrityError(err error, duplicate bool) error {
	return &IntegrityError{Err: err, Duplicate: duplicate}
}

func (err IntegrityError) Error() string {
	if err.Err == nil {
		return "integrity error"
	}
	return err.Err.Error()
}

func (err IntegrityError) Unwrap() error { return err.Err }

// IsDuplicate reports whether err was caused by a unique violation.
func IsDuplicate(err error) bool {
	iErr, ok := errors.Cause(err).(*IntegrityError)
	return ok && iErr.Duplicate
}

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
