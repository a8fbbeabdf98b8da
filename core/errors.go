package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError reports missing or malformed client input.
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

// ReferenceError reports a foreign key that does not resolve to an existing record.
type ReferenceError struct {
	Field string // JSON name of the referencing field, eg. "teacherId"
	Kind  string // referenced kind, eg. "teacher"
	ID    int
}

func NewReferenceError(field, kind string, id int) error {
	return &ReferenceError{Field: field, Kind: kind, ID: id}
}

func (err ReferenceError) Error() string {
	return "invalid " + err.Field
}

// Detail describes the dangling reference.
func (err ReferenceError) Detail() string {
	return fmt.Sprintf("%s %d does not exist", err.Kind, err.ID)
}

// ConflictError reports a write blocked by records that depend on the target.
type ConflictError struct {
	message string
}

func NewConflictError(format string, args ...interface{}) error {
	return &ConflictError{message: fmt.Sprintf(format, args...)}
}

func (err ConflictError) Error() string {
	return err.message
}

// NotFoundError reports that no record of Kind exists at the requested identifier.
type NotFoundError struct {
	Kind string
}

func NewNotFoundError(kind string) error {
	return &NotFoundError{Kind: kind}
}

func (err NotFoundError) Error() string {
	return err.Kind + " not found"
}

// IsNotFound reports whether the cause of err is a NotFoundError.
func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
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
