package booking

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies booking failures so callers can map them to transport
// codes and retry policy without string matching.
type Kind string

const (
	KindInvalidInput      Kind = "InvalidInput"
	KindNotFound          Kind = "ResourceNotFound"
	KindDoctorUnavailable Kind = "DoctorUnavailable"
	KindConflict          Kind = "BookingConflict"
	KindRepository        Kind = "RepositoryError"
)

// Error is the typed failure returned by every booking operation.
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

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func invalidInput(format string, args ...any) *Error {
	return newError(KindInvalidInput, format, args...)
}

func notFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func doctorUnavailable(format string, args ...any) *Error {
	return newError(KindDoctorUnavailable, format, args...)
}

func conflict(format string, args ...any) *Error {
	return newError(KindConflict, format, args...)
}

func repositoryError(msg string, err error) *Error {
	return &Error{Kind: KindRepository, Message: msg, Err: err}
}

// KindOf extracts the Kind from an error chain, defaulting to
// RepositoryError for untyped failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindRepository
}

// HTTPStatus maps an error kind to its response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindDoctorUnavailable, KindConflict:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
