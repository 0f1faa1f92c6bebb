package errz

import (
	"errors"
	"fmt"
)

// Kind represents the category of a status error.
type Kind int

const (
	// BadParameter indicates a required argument was missing or invalid.
	BadParameter Kind = iota
	// NoMemory indicates an allocation was refused or an identifier
	// space is exhausted.
	NoMemory
	// StackUnderflow indicates a pop from an empty stack.
	StackUnderflow
	// StackOverflow indicates a push onto a full fixed-size stack.
	StackOverflow
	// NoHardwareResponse indicates the platform ignored a requested
	// hardware mode transition.
	NoHardwareResponse
	// InvalidArgument indicates malformed table data or a failed table
	// entry handler.
	InvalidArgument
	// AlreadyTerminated indicates a repeated shutdown request.
	AlreadyTerminated
	// Internal indicates corrupted interpreter state.
	Internal
)

// String returns the string representation of the status kind.
func (k Kind) String() string {
	switch k {
	case BadParameter:
		return "bad parameter"
	case NoMemory:
		return "no memory"
	case StackUnderflow:
		return "stack underflow"
	case StackOverflow:
		return "stack overflow"
	case NoHardwareResponse:
		return "no hardware response"
	case InvalidArgument:
		return "invalid argument"
	case AlreadyTerminated:
		return "already terminated"
	case Internal:
		return "internal error"
	default:
		return "error"
	}
}

// Status is the error type returned throughout the subsystem. Kind carries
// the category that callers branch on; Cause optionally carries an
// underlying error from the host or from a table entry handler.
type Status struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Status) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind.String(), e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *Status) Unwrap() error {
	return e.Cause
}

// IsFatal returns whether the error aborts the current walk instead of
// being reported to the caller for recovery.
func (e *Status) IsFatal() bool {
	switch e.Kind {
	case StackOverflow, Internal:
		return true
	default:
		return false
	}
}

// New creates a Status with the given kind and message.
func New(kind Kind, message string) *Status {
	return &Status{Kind: kind, Message: message}
}

// Newf creates a Status with a formatted message.
func Newf(kind Kind, format string, args ...any) *Status {
	return &Status{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithCause wraps the error with a cause.
func (e *Status) WithCause(cause error) *Status {
	e.Cause = cause
	return e
}

// KindOf returns the status kind carried by err. The boolean reports
// whether err, or anything it wraps, is a Status.
func KindOf(err error) (Kind, bool) {
	var st *Status
	if errors.As(err, &st) {
		return st.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries a Status of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsFatal reports whether err carries a fatal Status.
func IsFatal(err error) bool {
	var st *Status
	if errors.As(err, &st) {
		return st.IsFatal()
	}
	return false
}
