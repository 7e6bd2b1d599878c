package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure for the HTTP boundary
type ErrorKind string

const (
	KindValidation      ErrorKind = "validation"
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindForbidden       ErrorKind = "forbidden"
	KindNotFound        ErrorKind = "not_found"
	KindConflict        ErrorKind = "conflict"
	// KindPartialFailure marks operations where an external side effect
	// succeeded but local persistence did not; operators must reconcile
	// manually.
	KindPartialFailure ErrorKind = "partial_failure"
	KindInternal       ErrorKind = "internal"
)

// Error is a domain failure carrying its boundary classification
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a domain error
func E(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a domain error around an underlying cause
func Wrap(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain, defaulting to KindInternal
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
