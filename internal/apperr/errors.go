package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrEmailTaken maps the users.email unique violation. The message is
	// user-facing and stable across the API.
	ErrEmailTaken = errors.New("Email đã tồn tại")
	// ErrUnauthorized hides which step of token verification failed.
	// The reason is to resist enumeration and replay probing.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrTokenRevoked is surfaced distinctly from ErrUnauthorized: a logout
	// with a refresh token that is already gone means the token was likely
	// stolen and used by someone else first.
	ErrTokenRevoked = errors.New("Refresh token has been revoked")
	// ErrInvalidToken is the single failure kind of the token issuer; expired
	// and malformed-signature both collapse into it.
	ErrInvalidToken = errors.New("invalid token")
)

// ValidationError is user-correctable input failure with field-level detail.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ExternalServiceError wraps a failure of an external collaborator
// (SMTP delivery, identity provider exchange).
type ExternalServiceError struct {
	Op  string
	Err error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func External(op string, err error) *ExternalServiceError {
	return &ExternalServiceError{Op: op, Err: err}
}
