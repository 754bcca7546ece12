package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures that callers are expected to handle.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindPermissionDenied ErrorKind = "permission_denied"
	KindDuplicateRating  ErrorKind = "duplicate_rating"
	KindValidation       ErrorKind = "validation_error"
	KindConflict         ErrorKind = "conflict"
)

// Error is the error type returned by services for domain failures.
// Anything else coming out of a service is an unexpected storage error.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// for every not-found error regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks
var (
	ErrNotFound         = &Error{Kind: KindNotFound, Message: "not found"}
	ErrPermissionDenied = &Error{Kind: KindPermissionDenied, Message: "permission denied"}
	ErrDuplicateRating  = &Error{Kind: KindDuplicateRating, Message: "rating already exists for this recipe"}
	ErrValidation       = &Error{Kind: KindValidation, Message: "validation error"}
	ErrConflict         = &Error{Kind: KindConflict, Message: "conflict"}

	// ErrListNotOwnedOrNotFound is returned by Recompute, which does not
	// distinguish a missing list from a list owned by someone else.
	ErrListNotOwnedOrNotFound = &Error{Kind: KindNotFound, Message: "grocery list not found or not owned by user"}
)

func notFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func permissionDenied(format string, args ...interface{}) error {
	return &Error{Kind: KindPermissionDenied, Message: fmt.Sprintf(format, args...)}
}

func validationError(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}
