package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies a class of domain error so handlers and the job runner can
// react without string matching.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindValidation
	KindUnsupportedFormat
	KindFileNotFound
	KindExtraction
	KindExternalService
	KindInvalidStateTransition
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindUnsupportedFormat:
		return "unsupported_format"
	case KindFileNotFound:
		return "file_not_found"
	case KindExtraction:
		return "extraction"
	case KindExternalService:
		return "external_service"
	case KindInvalidStateTransition:
		return "invalid_state_transition"
	default:
		return "unknown"
	}
}

// Error is a domain error carrying a Kind and an optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a domain error without a cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates a formatted domain error without a cause.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates a domain error wrapping a cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// NotFound reports whether err is a not-found domain error.
func NotFound(err error) bool { return Is(err, KindNotFound) }

// Retryable reports whether the error is worth retrying. Only upstream
// service failures are; exhausted extraction and bad input are not.
func Retryable(err error) bool { return Is(err, KindExternalService) }

// Is reports whether the outermost domain error in err's chain has the given
// kind. Wrapping an error re-kinds it: an extraction error stays an
// extraction error even when the underlying cause was a service failure.
func Is(err error, kind Kind) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}

// KindOf returns the Kind of err, or 0 if err is not a domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}
