package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// InsufficientTokensError is returned when a caller asks to spend more
// EcoTokens than the wallet holds or the cart accepts.
type InsufficientTokensError struct {
	Requested     int64
	Available     int64
	MaxRedeemable int64
}

func (e *InsufficientTokensError) Error() string {
	return fmt.Sprintf(
		"insufficient tokens: requested %d, available %d, max redeemable %d",
		e.Requested, e.Available, e.MaxRedeemable,
	)
}

// NetworkError wraps a failed call to a remote dependency after retries ran out.
type NetworkError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s failed after %d attempt(s): %v", e.Op, e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthorizationError is a role or ownership mismatch. Never retried.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string {
	return "forbidden: " + e.Reason
}

func Forbidden(reason string) error {
	return &AuthorizationError{Reason: reason}
}

// Permanent marks an error that the retry helper must not retry.
type permanent struct{ err error }

func (p *permanent) Error() string { return p.err.Error() }
func (p *permanent) Unwrap() error { return p.err }

func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanent{err: err}
}

func IsPermanent(err error) bool {
	var p *permanent
	if errors.As(err, &p) {
		return true
	}
	var v *ValidationError
	var a *AuthorizationError
	return errors.As(err, &v) || errors.As(err, &a)
}
