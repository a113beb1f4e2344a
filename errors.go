package faceid

import (
	"errors"
	"fmt"

	"github.com/edunex/faceid/internal/match"
)

var (
	// ErrInvalidDescriptor is returned when a probe or enrollment payload is
	// not a well-formed 128-element numeric vector (or set of them).
	ErrInvalidDescriptor = match.ErrInvalidDescriptor
	// ErrConsentRequired is returned when enrollment is attempted without the
	// explicit biometric-storage consent flag.
	ErrConsentRequired = errors.New("biometric storage consent required")
	// ErrNoPendingVerification is returned when Verify or SkipVerification is
	// called for a session with no pending 2FA step.
	ErrNoPendingVerification = errors.New("no face verification pending")
	// ErrLoginRateLimited is returned when the standalone face-login attempt
	// budget for the session is exhausted inside the active window.
	ErrLoginRateLimited = errors.New("face login rate limited")
	// ErrAlreadyAuthenticated is returned when FaceLogin is called on a
	// session that already carries an authenticated identity.
	ErrAlreadyAuthenticated = errors.New("already authenticated")
	// ErrIdentityNotFound is returned when the referenced identity does not
	// exist in the identity provider.
	ErrIdentityNotFound = errors.New("identity not found")
	// ErrSessionNotFound is returned when the referenced client session does
	// not exist or has expired.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNotEnrolled is returned by Verify when the identity has no stored
	// descriptors and the fail-open recovery path is disabled.
	ErrNotEnrolled = errors.New("identity has no enrolled descriptors")
	// ErrSessionUnavailable is returned when the session backend cannot be
	// reached or the stored record is corrupt.
	ErrSessionUnavailable = errors.New("session backend unavailable")
	// ErrIdentityBackend is returned when the identity provider fails.
	ErrIdentityBackend = errors.New("identity backend unavailable")
	// ErrEngineNotReady is returned when the engine is missing a required
	// dependency.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// identityLookupError maps provider lookup failures. Providers signal a
// missing identity by returning an error matching ErrIdentityNotFound;
// anything else is a backend fault.
func identityLookupError(err error) error {
	if errors.Is(err, ErrIdentityNotFound) {
		return ErrIdentityNotFound
	}
	return wrapIdentityBackend(err)
}

func wrapIdentityBackend(err error) error {
	return fmt.Errorf("%w: %v", ErrIdentityBackend, err)
}
