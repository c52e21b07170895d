// Package apperr defines the error taxonomy shared by services and handlers.
// Every operation returns errors tagged with a Kind; the HTTP boundary maps
// kinds to status codes through a fixed table.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown     Kind = iota
	KindValidation       // missing/malformed input
	KindConflict         // uniqueness violation
	KindAuth             // bad credentials, bad/expired/stale token
	KindNotFound         // entity does not exist
	KindUpload           // media store failure
	KindPersistence      // store unavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindUpload:
		return "upload"
	case KindPersistence:
		return "persistence"
	}
	return "unknown"
}

// Error is a kind-tagged error. Message is safe to surface to callers; Err
// carries the underlying cause for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a tagged error with a caller-facing message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf creates a tagged error with a formatted caller-facing message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags an underlying error. The wrapped cause stays out of the
// caller-facing message.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf extracts the Kind from err, walking the wrap chain. Untagged errors
// report KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the caller-facing message of err, or a generic fallback for
// untagged errors so internal detail never leaks.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "something went wrong"
}
