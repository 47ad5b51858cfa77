// Package services holds the application core: password policy, the
// authentication/lockout state machine, offer letter issuance, and the
// collaborator contracts (hashing, rendering, mail) they depend on.
package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the portal's failure taxonomy. Controllers map these to
// HTTP status codes; none are retried.
var (
	// ErrNotFound: unknown username, token, or document. Auth and reset
	// flows must never surface this distinctly to end users.
	ErrNotFound = errors.New("not found")

	// ErrBadCredentials: credential comparison failed.
	ErrBadCredentials = errors.New("bad credentials")

	// ErrAccountLocked: authentication refused before credential comparison.
	ErrAccountLocked = errors.New("account locked")

	// ErrConflict: duplicate username at registration.
	ErrConflict = errors.New("username already exists")
)

// BadCredentialsError reports a failed credential check. JustLocked is true
// when this attempt was the one that locked the account, so callers can emit
// the distinct "account just became locked" signal.
type BadCredentialsError struct {
	JustLocked bool
}

func (e *BadCredentialsError) Error() string {
	if e.JustLocked {
		return "bad credentials: account locked"
	}
	return "bad credentials"
}

func (e *BadCredentialsError) Unwrap() error { return ErrBadCredentials }

// PolicyViolationError carries the human-readable reasons a password was
// rejected. Safe to show to end users verbatim.
type PolicyViolationError struct {
	Reasons []string
}

func (e *PolicyViolationError) Error() string {
	return "password policy violation: " + strings.Join(e.Reasons, ", ")
}

// RenderError wraps a PDF rendering failure. Rendering happens before any
// side effect, so a RenderError means nothing was persisted.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string { return fmt.Sprintf("render failed: %v", e.Err) }
func (e *RenderError) Unwrap() error { return e.Err }

// DeliveryError wraps a mail transport failure. The offer letter is already
// persisted by the time delivery runs; a DeliveryError does not roll it back.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string { return fmt.Sprintf("delivery failed: %v", e.Err) }
func (e *DeliveryError) Unwrap() error { return e.Err }
