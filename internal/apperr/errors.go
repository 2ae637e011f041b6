package apperr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Kind classifies a failure into the externally observable error taxonomy.
type Kind string

const (
	KindMalformedInput   Kind = "malformed_input"
	KindValidation       Kind = "validation"
	KindNotFound         Kind = "not_found"
	KindStateConflict    Kind = "state_conflict"
	KindStoreUnavailable Kind = "store_unavailable"
	KindUpstream         Kind = "upstream"
	KindUnauthorized     Kind = "unauthorized"
	KindForbidden        Kind = "forbidden"
	KindMethodNotAllowed Kind = "method_not_allowed"
	KindInternal         Kind = "internal"
)

// Error is a classified failure carrying everything needed to render the
// `{success:false, error, message, ...extra}` response body.
type Error struct {
	Kind    Kind
	Status  int
	Title   string
	Message string
	Extra   map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Title, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Title, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// With attaches an extra response attribute and returns the same error.
func (e *Error) With(key string, value any) *Error {
	if e.Extra == nil {
		e.Extra = make(map[string]any)
	}
	e.Extra[key] = value
	return e
}

// WithTitle overrides the short error title.
func (e *Error) WithTitle(title string) *Error {
	e.Title = title
	return e
}

// Wrap records the underlying cause.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

func newError(kind Kind, status int, title, message string) *Error {
	return &Error{Kind: kind, Status: status, Title: title, Message: message}
}

// MalformedInput reports a request body that could not be parsed.
func MalformedInput(err error) *Error {
	return newError(KindMalformedInput, http.StatusBadRequest, "Invalid JSON", "Request body must be valid JSON").Wrap(err)
}

// Validation reports a missing or invalid field.
func Validation(field, message string) *Error {
	e := newError(KindValidation, http.StatusBadRequest, "Validation error", message)
	if field != "" {
		e.With("field", field)
	}
	return e
}

// ValidationFailed reports several validation failures at once.
func ValidationFailed(details []string) *Error {
	return newError(KindValidation, http.StatusBadRequest, "Validation failed", "One or more fields are invalid").
		With("details", details)
}

// NotFound reports that no record exists for an identifier.
func NotFound(resource, identifier string) *Error {
	return newError(KindNotFound, http.StatusNotFound, resource+" not found",
		fmt.Sprintf("No %s found with ID: %s", lower(resource), identifier)).
		With("identifier", identifier)
}

// Empty reports a query that matched nothing where a result was required.
func Empty(title, message string) *Error {
	return newError(KindNotFound, http.StatusNotFound, title, message)
}

// StateConflict reports that the current status does not permit a transition.
func StateConflict(title, message, current string) *Error {
	return newError(KindStateConflict, http.StatusConflict, title, message).With("currentStatus", current)
}

// StoreUnavailable reports a failed round trip to the spreadsheet.
func StoreUnavailable(err error) *Error {
	status := http.StatusBadGateway
	message := "Failed to access or update the spreadsheet"
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusServiceUnavailable
		message = "Spreadsheet request timed out"
	}
	return newError(KindStoreUnavailable, status, "Google Sheets error", message).Wrap(err)
}

// StoreMisconfigured reports missing spreadsheet credentials or identifiers.
func StoreMisconfigured(err error) *Error {
	return newError(KindStoreUnavailable, http.StatusInternalServerError, "Configuration error",
		"Google Sheets authentication is not properly configured").Wrap(err)
}

// Upstream reports a failure of the photo upload collaborator.
func Upstream(status int, title, message string) *Error {
	return newError(KindUpstream, status, title, message)
}

// Unauthorized reports a missing or invalid session.
func Unauthorized(message string) *Error {
	return newError(KindUnauthorized, http.StatusUnauthorized, "Unauthorized", message)
}

// Forbidden reports a session that is not allowed to access a resource.
func Forbidden(message string) *Error {
	return newError(KindForbidden, http.StatusForbidden, "AccessDenied", message)
}

// MethodNotAllowed reports an unsupported HTTP method.
func MethodNotAllowed(allowed string) *Error {
	return newError(KindMethodNotAllowed, http.StatusMethodNotAllowed, "Method not allowed",
		fmt.Sprintf("This endpoint only accepts %s requests", allowed))
}

// Internal reports an unclassified failure. The cause message is exposed as details.
func Internal(operation string, err error) *Error {
	e := newError(KindInternal, http.StatusInternalServerError, "Internal server error",
		fmt.Sprintf("An unexpected error occurred during %s", operation)).Wrap(err)
	if err != nil {
		e.With("details", err.Error())
	}
	return e
}

// From classifies any error. Already classified errors are returned as is.
func From(err error, operation string) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return MalformedInput(err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return StoreUnavailable(err)
	}
	return Internal(operation, err)
}

// Is reports whether err is a classified error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// StatusOf returns the HTTP status an error maps to.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return From(err, "request").Status
}

func lower(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
