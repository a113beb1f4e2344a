package faceid

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/edunex/faceid/internal/match"
	"github.com/edunex/faceid/session"
)

// BeginVerification marks the session as requiring a face check before the
// identity's login completes. Hosts call this right after a successful
// password login; it reports whether a face step is actually required, which
// is false for identities without face authentication enabled. The attempt
// counter starts at zero; calling it again restarts the pending step.
func (e *Engine) BeginVerification(ctx context.Context, sessionID, identityID string) (bool, error) {
	if e == nil || e.sessions == nil || e.identities == nil {
		return false, ErrEngineNotReady
	}

	rec, err := e.identities.GetIdentity(ctx, identityID)
	if err != nil {
		return false, identityLookupError(err)
	}
	if !rec.FaceEnabled {
		return false, nil
	}

	if _, err := e.sessions.BeginVerification(ctx, sessionID, identityID); err != nil {
		return false, sessionStoreError(err)
	}
	e.metricInc(MetricVerifyPending)
	e.metricInc(MetricSessionCreated)
	return true, nil
}

// VerificationPending reports the session's verification state so hosts can
// gate routes while the face check is outstanding. A missing session means
// nothing is pending.
func (e *Engine) VerificationPending(ctx context.Context, sessionID string) (VerificationState, error) {
	if e == nil || e.sessions == nil {
		return VerificationState{}, ErrEngineNotReady
	}

	sess, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return VerificationState{}, nil
		}
		return VerificationState{}, sessionStoreError(err)
	}

	left := e.config.Verify.MaxAttempts - int(sess.VerifyAttempts)
	if left < 0 {
		left = 0
	}
	return VerificationState{
		Pending:      sess.PendingVerification,
		Verified:     sess.Verified,
		AttemptsLeft: left,
	}, nil
}

// Verify compares the probe against the pending identity's stored
// descriptors. A match completes the verification; a miss consumes one
// attempt. When the attempt budget is already exhausted the probe is not
// evaluated at all and the caller is told to route the user to the skip
// path. The computed distance is never returned, only audited.
func (e *Engine) Verify(ctx context.Context, sessionID string, probe []float64) (VerifyResult, error) {
	if e == nil || e.sessions == nil || e.identities == nil {
		return VerifyResult{}, ErrEngineNotReady
	}

	sess, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return VerifyResult{}, sessionStoreError(err)
	}
	if !sess.PendingVerification {
		return VerifyResult{}, ErrNoPendingVerification
	}

	attemptsLeft := e.config.Verify.MaxAttempts - int(sess.VerifyAttempts)

	parsed, err := match.ParseProbe(probe)
	if err != nil {
		// Malformed input does not consume an attempt.
		if attemptsLeft < 0 {
			attemptsLeft = 0
		}
		return VerifyResult{AttemptsLeft: attemptsLeft}, err
	}

	if attemptsLeft <= 0 {
		// Budget already spent; do not touch the matcher or the audit trail.
		return VerifyResult{AttemptsLeft: 0, RedirectToSkip: true}, nil
	}

	stored, err := e.identities.GetDescriptors(ctx, sess.IdentityID)
	if err != nil {
		return VerifyResult{AttemptsLeft: attemptsLeft}, identityLookupError(err)
	}

	if len(stored) == 0 {
		return e.verifyWithoutDescriptors(ctx, sessionID, sess.IdentityID, attemptsLeft)
	}

	distance, matched := match.Match(parsed, stored, e.config.Match.Threshold)
	if matched {
		if _, err := e.sessions.CompleteVerification(ctx, sessionID); err != nil {
			return VerifyResult{AttemptsLeft: attemptsLeft}, sessionStoreError(err)
		}
		e.metricInc(MetricVerifySuccess)
		e.emitAudit(ctx, auditActionVerifySuccess, sess.IdentityID, sessionID, distancePtr(distance), nil)
		return VerifyResult{Matched: true, AttemptsLeft: attemptsLeft}, nil
	}

	updated, err := e.sessions.RecordVerifyFailure(ctx, sessionID)
	if err != nil {
		return VerifyResult{AttemptsLeft: attemptsLeft}, sessionStoreError(err)
	}

	attemptsLeft = e.config.Verify.MaxAttempts - int(updated.VerifyAttempts)
	if attemptsLeft < 0 {
		attemptsLeft = 0
	}
	redirect := attemptsLeft <= 0
	if redirect {
		e.metricInc(MetricVerifyExhausted)
	}
	e.metricInc(MetricVerifyFailure)
	attempts := int(updated.VerifyAttempts)
	e.emitAudit(ctx, auditActionVerifyFail, sess.IdentityID, sessionID, distancePtr(distance), func() map[string]string {
		return map[string]string{
			"attempt": strconv.Itoa(attempts),
		}
	})

	return VerifyResult{AttemptsLeft: attemptsLeft, RedirectToSkip: redirect}, nil
}

// verifyWithoutDescriptors handles a pending verification whose identity has
// no stored descriptors left, e.g. face auth was disabled after the password
// login. The configured recovery path either waves the user through or
// aborts the pending step.
func (e *Engine) verifyWithoutDescriptors(ctx context.Context, sessionID, identityID string, attemptsLeft int) (VerifyResult, error) {
	if e.config.Verify.FailOpenOnMissingDescriptors {
		if _, err := e.sessions.CompleteVerification(ctx, sessionID); err != nil {
			return VerifyResult{AttemptsLeft: attemptsLeft}, sessionStoreError(err)
		}
		e.metricInc(MetricVerifySuccess)
		e.emitAudit(ctx, auditActionVerifySuccess, identityID, sessionID, nil, func() map[string]string {
			return map[string]string{
				"reason": "no_descriptors",
			}
		})
		return VerifyResult{Matched: true, AttemptsLeft: attemptsLeft}, nil
	}

	if _, err := e.sessions.AbortVerification(ctx, sessionID); err != nil {
		return VerifyResult{AttemptsLeft: attemptsLeft}, sessionStoreError(err)
	}
	e.metricInc(MetricVerifySkipped)
	e.emitAudit(ctx, auditActionVerifySkipped, identityID, sessionID, nil, func() map[string]string {
		return map[string]string{
			"reason": "not_enrolled",
		}
	})
	return VerifyResult{AttemptsLeft: attemptsLeft}, ErrNotEnrolled
}

// SkipVerification ends the pending face check without a biometric decision.
// The session proceeds as authenticated by its password factor alone. Hosts
// typically offer this after the attempt budget is spent or when the client
// has no camera.
func (e *Engine) SkipVerification(ctx context.Context, sessionID string) error {
	if e == nil || e.sessions == nil {
		return ErrEngineNotReady
	}

	sess, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return sessionStoreError(err)
	}
	if !sess.PendingVerification {
		return ErrNoPendingVerification
	}

	if _, err := e.sessions.CompleteVerification(ctx, sessionID); err != nil {
		return sessionStoreError(err)
	}

	e.metricInc(MetricVerifySkipped)
	e.emitAudit(ctx, auditActionVerifySkipped, sess.IdentityID, sessionID, nil, nil)

	return nil
}

// sessionStoreError maps store-level failures onto the engine's sentinels.
// Corrupt records and unreachable backends are both infrastructure failures
// from the caller's point of view.
func sessionStoreError(err error) error {
	if errors.Is(err, session.ErrSessionNotFound) {
		return ErrSessionNotFound
	}
	return fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
}
