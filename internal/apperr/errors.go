// Package apperr holds the error taxonomy shared by services and the HTTP layer.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindStorage
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindStorage:
		return "storage_error"
	case KindConfiguration:
		return "configuration_error"
	default:
		return "internal_error"
	}
}

// HTTPStatus maps a kind to the status code the API answers with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a kind, a stable machine code and a message that is safe to show to
// callers. Err is the underlying cause and is never rendered.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap returns a copy of sentinel carrying cause. errors.Is(result, sentinel) holds.
func Wrap(sentinel *Error, cause error) error {
	return &wrapped{
		e:        Error{Kind: sentinel.Kind, Code: sentinel.Code, Message: sentinel.Message, Err: cause},
		sentinel: sentinel,
	}
}

type wrapped struct {
	e        Error
	sentinel *Error
}

func (w *wrapped) Error() string {
	return w.e.Error()
}

func (w *wrapped) Unwrap() error {
	return w.e.Err
}

func (w *wrapped) Is(target error) bool {
	return target == w.sentinel
}

func (w *wrapped) As(target any) bool {
	if t, ok := target.(**Error); ok {
		*t = &w.e
		return true
	}
	return false
}

func Validation(message string) error {
	return New(KindValidation, KindValidation.String(), message)
}

func Storage(op string, cause error) error {
	return &Error{Kind: KindStorage, Code: KindStorage.String(), Message: op, Err: cause}
}

// KindOf reports the kind of err, KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Public returns the code and message that may be sent to a client.
func Public(err error) (code string, message string) {
	var e *Error
	if errors.As(err, &e) && e.Kind.HTTPStatus() < http.StatusInternalServerError {
		return e.Code, e.Message
	}
	return "internal_server_error", "something went wrong"
}
