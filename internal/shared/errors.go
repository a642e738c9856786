package shared

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAuthenticationMissing occurs when a request carries no credential.
	ErrAuthenticationMissing = errors.New("no credential provided")
	// ErrAuthenticationInvalid occurs when a credential is malformed, tampered or expired.
	ErrAuthenticationInvalid = errors.New("authentication failed")
	// ErrAuthorizationDenied occurs when an authenticated principal lacks role or ownership.
	ErrAuthorizationDenied = errors.New("insufficient privilege")
	// ErrDuplicate indicates a unique field is already taken.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrResetTokenInvalid occurs when a password reset token is unknown or expired.
	ErrResetTokenInvalid = errors.New("password reset token is invalid or has expired")
)

// FieldError attaches per-field messages to one of the sentinels above.
type FieldError struct {
	Kind   error
	Fields map[string]string
}

// NewFieldError builds a FieldError of kind.
func NewFieldError(kind error, fields map[string]string) *FieldError {
	return &FieldError{Kind: kind, Fields: fields}
}

func (e *FieldError) Error() string {
	return e.Kind.Error() + ": " + e.Message()
}

// Message renders the field messages in a stable order.
func (e *FieldError) Message() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return strings.Join(parts, "; ")
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}
