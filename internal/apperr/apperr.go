// Package apperr defines the error taxonomy shared by the case lifecycle,
// task, and work queue engines. Every engine entry point fails with one of
// these kinds so callers can distinguish a bad request from a lost race.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure.
type Kind int

const (
	// KindValidation covers bad input: unknown enum values, reason codes
	// outside the enabled set, missing required fields.
	KindValidation Kind = iota
	// KindInvalidTransition means the current state does not permit the action.
	KindInvalidTransition
	// KindConflict means an optimistic-concurrency race was lost.
	KindConflict
	// KindNotFound means an id did not resolve.
	KindNotFound
	// KindAuthorizationDenied means the caller's role or subscription is
	// insufficient.
	KindAuthorizationDenied
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindAuthorizationDenied:
		return "authorization_denied"
	default:
		return "unknown"
	}
}

// Error is a classified engine failure with an actionable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a KindValidation error.
func Validation(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// InvalidTransition builds a KindInvalidTransition error.
func InvalidTransition(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds a KindConflict error.
func Conflict(format string, args ...interface{}) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a KindNotFound error.
func NotFound(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// AuthorizationDenied builds a KindAuthorizationDenied error.
func AuthorizationDenied(format string, args ...interface{}) error {
	return &Error{Kind: KindAuthorizationDenied, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err (or anything it wraps) is an Error of kind k.
func IsKind(err error, k Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == k
	}
	return false
}

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return IsKind(err, KindValidation) }

// IsInvalidTransition reports whether err is an invalid-transition failure.
func IsInvalidTransition(err error) bool { return IsKind(err, KindInvalidTransition) }

// IsConflict reports whether err is a lost optimistic-concurrency race.
func IsConflict(err error) bool { return IsKind(err, KindConflict) }

// IsNotFound reports whether err is an unresolved id.
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

// IsAuthorizationDenied reports whether err is an authorization failure.
func IsAuthorizationDenied(err error) bool { return IsKind(err, KindAuthorizationDenied) }
