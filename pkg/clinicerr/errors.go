// Package clinicerr defines the error taxonomy shared by the domain
// services. Callers classify failures with errors.Is / errors.As rather
// than string matching.
package clinicerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for state conflicts on approval units.
var (
	// ErrAlreadyDecided is returned when an approve or reject targets a
	// unit that has already left the pending state. Retrying cannot
	// succeed: someone already decided.
	ErrAlreadyDecided = errors.New("unit already decided")

	// ErrMissingComment is returned when a rejection carries no comment.
	ErrMissingComment = errors.New("rejection comment is required")
)

// ValidationError reports malformed or missing input. The caller can
// recover by re-prompting.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// Invalid builds a ValidationError for a named field.
func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFoundError reports an unknown entity identity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// NotFound builds a NotFoundError.
func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// StateConflictError reports a transition attempted against a unit that
// is no longer in the required state. It wraps ErrAlreadyDecided so
// errors.Is(err, ErrAlreadyDecided) holds.
type StateConflictError struct {
	Entity string
	ID     string
	State  string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("%s %s is already %s", e.Entity, e.ID, e.State)
}

func (e *StateConflictError) Unwrap() error { return ErrAlreadyDecided }

// Conflict builds a StateConflictError.
func Conflict(entity, id, state string) error {
	return &StateConflictError{Entity: entity, ID: id, State: state}
}

func IsConflict(err error) bool {
	var ce *StateConflictError
	return errors.As(err, &ce)
}

// DependencyError wraps a failure from an external collaborator (the
// database, a remote API). The core never retries these; the caller
// decides retry policy.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// Dependency wraps err as a DependencyError. Nil stays nil.
func Dependency(op string, err error) error {
	if err == nil {
		return nil
	}
	return &DependencyError{Op: op, Err: err}
}
