// Package common defines the error taxonomy and shared constants used across
// the tasktracker server. Callers should use errors.Is to match kinds.
package common

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// Error kinds. Every error returned by a service matches exactly one of these.
	ErrorValidation    = errors.New("validation error")
	ErrorNotFound      = errors.New("not found")
	ErrorAuthorization = errors.New("forbidden")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrorConflict      = errors.New("conflict")
	ErrorRateLimited   = errors.New("rate limited")
	ErrorStateInvalid  = errors.New("unprocessable")
	ErrorInternal      = errors.New("internal error")

	// Authentication errors.
	ErrNoCredentials      = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInactive           = errors.New("account is not active")
	ErrInvalidToken       = errors.New("invalid token")

	// ErrExpiredOrInvalid is returned for reset/activation tokens that are
	// unknown or past their expiry. The two cases are never distinguished.
	ErrExpiredOrInvalid = fmt.Errorf("%w: invalid or expired token", ErrorNotFound)
)

// Error is a user-facing error: Message is safe to return to the caller and
// Kind is one of the error kinds above.
type Error struct {
	Kind    error
	Message string
}

// NewError builds an Error of the given kind.
func NewError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// RateLimitError reports that an unexpired token already exists.
type RateLimitError struct {
	Wait time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("you already have an active link, try after %d minutes", e.WaitMinutes())
}

func (e *RateLimitError) Is(target error) bool { return target == ErrorRateLimited }

// WaitMinutes rounds the remaining wait up to whole minutes.
func (e *RateLimitError) WaitMinutes() int {
	if e.Wait <= 0 {
		return 0
	}
	return int(math.Ceil(e.Wait.Minutes()))
}

// Message extracts the user-facing message of err, or fallback when err carries none.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.Error()
	}
	return fallback
}
