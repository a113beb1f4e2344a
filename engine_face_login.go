package faceid

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/edunex/faceid/internal/match"
	"github.com/edunex/faceid/session"
)

// FaceLogin attempts a 1:N authentication: the probe is compared against
// every face-enabled active identity and the session is authenticated as the
// globally closest one when it clears the threshold. A failed attempt
// consumes one unit of the per-session attempt budget; the budget resets
// after the configured idle window. Failed attempts leave no audit trail so
// that nothing is recorded about which identity an unverified probe was
// closest to.
func (e *Engine) FaceLogin(ctx context.Context, sessionID string, probe []float64) (FaceLoginResult, error) {
	if e == nil || e.sessions == nil || e.identities == nil {
		return FaceLoginResult{}, ErrEngineNotReady
	}

	maxAttempts := e.config.Login.MaxAttempts
	window := e.config.Login.AttemptWindow

	sess, err := e.sessions.Get(ctx, sessionID)
	if err != nil && !errors.Is(err, session.ErrSessionNotFound) {
		return FaceLoginResult{}, sessionStoreError(err)
	}

	attemptsLeft := maxAttempts
	if sess != nil {
		if sess.Verified && sess.IdentityID != "" && !sess.PendingVerification {
			return FaceLoginResult{}, ErrAlreadyAuthenticated
		}
		attemptsLeft = remainingLoginAttempts(sess, maxAttempts, window, time.Now())
		if attemptsLeft <= 0 {
			e.metricInc(MetricFaceLoginRateLimited)
			return FaceLoginResult{AttemptsLeft: 0}, ErrLoginRateLimited
		}
	}

	parsed, err := match.ParseProbe(probe)
	if err != nil {
		// Malformed input does not consume an attempt.
		return FaceLoginResult{AttemptsLeft: attemptsLeft}, err
	}

	candidates, err := e.identities.FindEnabledActive(ctx)
	if err != nil {
		return FaceLoginResult{AttemptsLeft: attemptsLeft}, wrapIdentityBackend(err)
	}

	identityID, distance, matched := bestIdentity(parsed, candidates, e.config.Match.Threshold)
	if !matched {
		updated, err := e.sessions.IncrementLoginAttempt(ctx, sessionID, window)
		if err != nil {
			return FaceLoginResult{}, sessionStoreError(err)
		}
		attemptsLeft = maxAttempts - int(updated.LoginAttempts)
		if attemptsLeft < 0 {
			attemptsLeft = 0
		}
		e.metricInc(MetricFaceLoginFailure)
		return FaceLoginResult{AttemptsLeft: attemptsLeft}, nil
	}

	if _, err := e.sessions.MarkAuthenticated(ctx, sessionID, identityID); err != nil {
		return FaceLoginResult{}, sessionStoreError(err)
	}

	result := FaceLoginResult{
		Matched:      true,
		IdentityID:   identityID,
		AttemptsLeft: maxAttempts,
	}

	e.metricInc(MetricFaceLoginSuccess)
	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditActionFaceLoginSuccess, identityID, sessionID, distancePtr(distance), nil)

	if e.tokens != nil {
		access, err := e.tokens.Issue(identityID, sessionID)
		if err != nil {
			// The session is already authenticated; a token failure is
			// reported but must not be mistaken for a rejected probe.
			log.Print("faceid: access token issuance failed after face login")
			return result, err
		}
		result.AccessToken = access
	}

	return result, nil
}

// remainingLoginAttempts applies the idle-window reset without writing it
// back; the write happens only when an attempt is actually consumed.
func remainingLoginAttempts(sess *session.Session, maxAttempts int, window time.Duration, now time.Time) int {
	attempts := int(sess.LoginAttempts)
	if sess.LastLoginAttempt > 0 && now.Sub(time.Unix(sess.LastLoginAttempt, 0)) > window {
		attempts = 0
	}
	left := maxAttempts - attempts
	if left < 0 {
		left = 0
	}
	return left
}

// bestIdentity scans every candidate's descriptor set and returns the
// identity holding the global minimum distance, when that minimum clears the
// threshold. Ties keep the first identity in provider order.
func bestIdentity(probe match.Descriptor, candidates []IdentityRecord, threshold float64) (string, float64, bool) {
	bestID := ""
	bestDistance := 0.0
	found := false

	for _, candidate := range candidates {
		if !candidate.FaceEnabled || !candidate.Active || len(candidate.Descriptors) == 0 {
			continue
		}
		d, idx := match.Best(probe, candidate.Descriptors)
		if idx < 0 {
			continue
		}
		if !found || d < bestDistance {
			found = true
			bestDistance = d
			bestID = candidate.IdentityID
		}
	}

	if !found || bestDistance > threshold {
		return "", 0, false
	}
	return bestID, bestDistance, true
}
