// Package common defines shared constants and sentinel errors used across
// the server, the HTTP layer and the eventctl client. Callers should use
// errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
	"strings"
)

// AdminPasswordHeaderName carries the shared admin secret on admin requests.
const AdminPasswordHeaderName = "x-admin-pass"

var (
	// Repository-level errors.
	ErrorNotFound       = errors.New("not found")
	ErrorMultipleActive = errors.New("more than one active event")

	// Service-level errors.
	ErrorValidation       = errors.New("validation error")
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrorNoActiveEvent    = errors.New("no active event")
	ErrorUpstream         = errors.New("upstream service error")
	ErrorMethodNotAllowed = errors.New("method not allowed")

	// Upload-specific errors.
	ErrorFileTooLarge = errors.New("file too large")
)

// Error pairs an error kind (one of the sentinels above) with a message that
// is safe to show to the caller and the underlying cause, if any.
type Error struct {
	Kind    error
	Message string
	Err     error
}

// NewError builds an Error of the given kind.
func NewError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Details returns the cause's message, or "" when there is none.
func (e *Error) Details() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// OversizedFilesMessage lists the files rejected by the per-file size cap.
// limit is the already formatted cap, e.g. "50 MB".
func OversizedFilesMessage(limit string, names []string) string {
	return fmt.Sprintf("Os seguintes arquivos excedem o limite de %s: %s", limit, strings.Join(names, ", "))
}
