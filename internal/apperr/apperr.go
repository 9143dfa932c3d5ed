// Package apperr carries the failure taxonomy used across the service
// layer. Handlers never map errors themselves: they hand whatever a
// service returned to httpapi.Error, which decodes the *apperr.Error in
// the chain into the HTTP status and response body exactly once.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
)

// Code is the wire level discriminator clients switch on.
func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindNotFound:
		return "NOT_FOUND"
	case KindConflict:
		return "CONFLICT"
	default:
		return "INTERNAL_ERROR"
	}
}

func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
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

// Error is a tagged failure. Kind picks the HTTP status and wire code,
// Reason is the stable sub-code naming the exact rule that fired
// (LAST_ADMIN, SLUG_TAKEN, ...), Message is safe to show to users and
// Details carries field level context for the response body.
type Error struct {
	Kind    Kind
	Reason  string
	Message string
	Details map[string]any

	cause error
}

func (e *Error) Error() string {
	code := e.Kind.Code()
	if e.Reason != "" {
		code = code + "/" + e.Reason
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches on Kind and Reason so sentinel comparisons survive the
// copies made by WithDetails and Wrap.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Reason == t.Reason
}

// WithDetails returns a copy carrying extra context for the response
// body. The receiver is left untouched so package level sentinels stay
// immutable.
func (e *Error) WithDetails(details map[string]any) *Error {
	c := *e
	c.Details = details
	return &c
}

// Wrap returns a copy recording err as the cause. The cause is logged
// server side but never serialized into the response.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.cause = err
	return &c
}

func New(kind Kind, reason, message string) *Error {
	return &Error{Kind: kind, Reason: reason, Message: message}
}

func Validation(reason, message string) *Error {
	return New(KindValidation, reason, message)
}

func Unauthorized(reason, message string) *Error {
	return New(KindUnauthorized, reason, message)
}

func Forbidden(reason, message string) *Error {
	return New(KindForbidden, reason, message)
}

func NotFound(reason, message string) *Error {
	return New(KindNotFound, reason, message)
}

func Conflict(reason, message string) *Error {
	return New(KindConflict, reason, message)
}

func Internal(err error) *Error {
	return &Error{
		Kind:    KindInternal,
		Message: "something went wrong",
		cause:   err,
	}
}

// From extracts the tagged error from err's chain, wrapping unknown
// errors as internal so the boundary never leaks raw error text.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
