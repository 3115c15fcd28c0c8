// Package apperr defines the typed domain errors used across the CRM core.
// Services return these; the HTTP layer maps each Kind to a status code.
package apperr

import (
	"fmt"
	"net/http"
)

// Kind categorizes a domain error.
type Kind int

const (
	// KindUnknown is the default when no kind was set.
	KindUnknown Kind = iota
	// KindNotFound indicates a missing resource.
	KindNotFound
	// KindValidation indicates input that fails a business rule before any
	// state change is applied.
	KindValidation
	// KindDuplicate indicates a create that conflicts with an existing
	// cached entity (e.g. same phone number).
	KindDuplicate
	// KindForbidden indicates the actor may not act on this entity.
	KindForbidden
	// KindUnauthorized indicates a missing or invalid identity.
	KindUnauthorized
	// KindInternal indicates an unexpected failure.
	KindInternal
)

// Error is a domain error carrying a Kind for HTTP mapping and optional
// structured details for the notification layer.
type Error struct {
	Kind    Kind
	Message string
	Field   string // offending field for validation errors (optional)
	Err     error  // wrapped cause (optional)
	Details any    // extra payload rendered in the response (optional)
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Unwrap supports errors.Is/errors.As on the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the kind to a response status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindDuplicate:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// WithDetails attaches a structured payload to the error.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// New creates an error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error with a wrapped cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NotFound creates a not-found error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Validation creates a validation error for a specific field.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// Duplicate creates a duplicate-entity error naming the conflicting entity.
func Duplicate(message, conflictingName string) *Error {
	return &Error{
		Kind:    KindDuplicate,
		Message: message,
		Details: map[string]string{"conflictingEntityName": conflictingName},
	}
}

// Forbidden creates a forbidden error.
func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

// Unauthorized creates an unauthorized error.
func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

// Internal creates an internal error.
func Internal(message string) *Error {
	return New(KindInternal, message)
}

// GetKind extracts the kind from any error, KindUnknown when it is not an
// *Error.
func GetKind(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return KindUnknown
}
