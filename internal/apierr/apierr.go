// Package apierr defines the closed error taxonomy surfaced by every
// component: BadRequest, NotFound, and Internal. Partial-failure conditions
// (unsupported language, parse failure, empty match) are never represented
// here — those degrade to empty results with a warning log instead.
package apierr

import (
	"fmt"
	"net/http"
)

// Class is the discriminator carried in the JSON error envelope.
type Class string

const (
	ClassBadRequest Class = "bad_request"
	ClassNotFound   Class = "not_found"
	ClassInternal   Class = "internal"
)

// Error is the error type every package-level operation returns on failure.
// It carries a Class so transports can map it to a status code without
// inspecting the message text.
type Error struct {
	Class   Class
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

// HTTPStatus maps the error's class to the status code the transport layer
// should return.
func (e *Error) HTTPStatus() int {
	switch e.Class {
	case ClassBadRequest:
		return http.StatusBadRequest
	case ClassNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// BadRequest reports that client input violated a documented constraint.
func BadRequest(format string, args ...any) *Error {
	return &Error{Class: ClassBadRequest, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports that a named entity (session, project, file, symbol,
// buffer, variable) does not exist.
func NotFound(kind, id string) *Error {
	return &Error{Class: ClassNotFound, Message: fmt.Sprintf("%s %q not found", kind, id)}
}

// Internal wraps an infrastructure failure (I/O, parse initialization,
// cancelled blocking task, PDF converter failure).
func Internal(context string, err error) *Error {
	return &Error{Class: ClassInternal, Message: context, Err: err}
}

// Is reports whether err is an *Error of the given class.
func Is(err error, class Class) bool {
	e, ok := err.(*Error)
	return ok && e.Class == class
}
