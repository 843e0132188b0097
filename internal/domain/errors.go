package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// OTP verification outcomes. Each one asks the client for a different remedy:
	// the first three require a new code, a mismatch allows retyping.
	ErrOTPNotFound          = errors.New("no valid OTP found for this phone number")
	ErrOTPExpired           = errors.New("OTP has expired")
	ErrOTPAttemptsExhausted = errors.New("too many attempts")
	ErrOTPMismatch          = errors.New("invalid OTP code")

	// ErrMessagingNotConfigured is returned before any dispatch attempt when
	// the messaging provider lacks credentials.
	ErrMessagingNotConfigured = errors.New("messaging provider not configured")

	// Uniqueness conflicts on customer registration.
	ErrWhatsAppTaken = fmt.Errorf("this WhatsApp number is already registered: %w", ErrConflict)
	ErrEmailTaken    = fmt.Errorf("this email address is already registered: %w", ErrConflict)
)

// MismatchError reports a wrong code together with the attempts still allowed.
type MismatchError struct {
	AttemptsLeft int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %d attempts left", ErrOTPMismatch, e.AttemptsLeft)
}

func (e *MismatchError) Unwrap() error { return ErrOTPMismatch }

// FieldErrors collects per-field validation messages for the intake form.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	return fmt.Sprintf("%d invalid fields", len(f))
}

func (f FieldErrors) Unwrap() error { return ErrBadRequest }
