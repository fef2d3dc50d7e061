package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Kind classifies an operation failure. Every error surfaced to a caller
// carries exactly one kind plus a human-readable message.
type Kind int

const (
	Validation Kind = iota + 1
	NotFound
	Forbidden
	Conflict
	InvalidState
	External
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	case Conflict:
		return "conflict"
	case InvalidState:
		return "invalid_state"
	case External:
		return "external"
	}
	return "unknown"
}

type Error struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, never shown to callers
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap keeps the cause for logs while exposing only the message.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf returns the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Status maps an error to its HTTP status code. Unknown errors map to 500.
func Status(err error) int {
	switch KindOf(err) {
	case Validation, InvalidState:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Forbidden:
		return http.StatusForbidden
	case Conflict:
		return http.StatusConflict
	case External:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// JSON writes the error response. Internal errors never leak their message.
func JSON(c echo.Context, err error) error {
	status := Status(err)
	if status == http.StatusInternalServerError {
		return c.JSON(status, echo.Map{"error": "server error"})
	}
	var e *Error
	errors.As(err, &e)
	return c.JSON(status, echo.Map{"error": e.Message, "kind": e.Kind.String()})
}
