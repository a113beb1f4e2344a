package faceid

import (
	"context"
	"strconv"
	"time"

	"github.com/edunex/faceid/internal/match"
)

// Enroll stores the given descriptor set for the identity and enables face
// authentication. The set replaces any previously stored descriptors in
// full; re-enrollment is a complete overwrite, never an append.
//
// consent must be true: biometric data is only persisted with the subject's
// explicit agreement, and the flag is checked before any payload validation.
func (e *Engine) Enroll(ctx context.Context, identityID string, descriptors [][]float64, consent bool) error {
	if e == nil || e.identities == nil {
		return ErrEngineNotReady
	}
	if !consent {
		return ErrConsentRequired
	}

	parsed, err := match.ParseSet(descriptors)
	if err != nil {
		return err
	}

	if _, err := e.identities.GetIdentity(ctx, identityID); err != nil {
		return identityLookupError(err)
	}

	if err := e.identities.SetDescriptors(ctx, identityID, parsed); err != nil {
		return wrapIdentityBackend(err)
	}
	if err := e.identities.SetFaceEnabled(ctx, identityID, true, time.Now()); err != nil {
		return wrapIdentityBackend(err)
	}

	e.metricInc(MetricEnroll)
	e.emitAudit(ctx, auditActionEnroll, identityID, "", nil, func() map[string]string {
		return map[string]string{
			"descriptor_count": strconv.Itoa(len(parsed)),
		}
	})

	return nil
}

// Disable turns face authentication off for the identity and deletes its
// stored descriptors. Removal is unconditional; no consent flag applies to
// deleting one's own biometric data.
func (e *Engine) Disable(ctx context.Context, identityID string) error {
	if e == nil || e.identities == nil {
		return ErrEngineNotReady
	}

	if _, err := e.identities.GetIdentity(ctx, identityID); err != nil {
		return identityLookupError(err)
	}

	if err := e.identities.SetDescriptors(ctx, identityID, nil); err != nil {
		return wrapIdentityBackend(err)
	}
	if err := e.identities.SetFaceEnabled(ctx, identityID, false, time.Time{}); err != nil {
		return wrapIdentityBackend(err)
	}

	e.metricInc(MetricDisable)
	e.emitAudit(ctx, auditActionDisable, identityID, "", nil, nil)

	return nil
}
