package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an operation failure into one of the stable categories the
// HTTP layer maps to status codes. Every operation either returns its success
// value or exactly one of these kinds.
type Kind int

const (
	// Validation means malformed or missing input.
	Validation Kind = iota
	// NotFound means a referenced entity is absent.
	NotFound
	// Authorization means the actor lacks permission.
	Authorization
	// Conflict means a duplicate friend request or an already-friends pair.
	Conflict
	// SelfReference means a self-targeted friend request.
	SelfReference
	// InvalidState means a transition attempted from the wrong state.
	InvalidState
	// Internal covers store and infrastructure failures.
	Internal
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Authorization:
		return "authorization"
	case Conflict:
		return "conflict"
	case SelfReference:
		return "self_reference"
	case InvalidState:
		return "invalid_state"
	default:
		return "internal"
	}
}

// Error carries a kind plus a caller-visible message. Fields, when set,
// name which inputs failed validation.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a new Error of the given kind.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// ValidationFields builds a Validation error naming the offending fields.
func ValidationFields(fields map[string]string) *Error {
	return &Error{Kind: Validation, Message: "invalid input", Fields: fields}
}

// KindOf reports the kind of err, or Internal when err is not an *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}
