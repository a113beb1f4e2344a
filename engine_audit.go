package faceid

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	auditActionEnroll           = "enroll"
	auditActionDisable          = "disable"
	auditActionVerifySuccess    = "verify_success"
	auditActionVerifyFail       = "verify_fail"
	auditActionVerifySkipped    = "verify_skipped"
	auditActionFaceLoginSuccess = "face_login_success"
)

// emitAudit builds and dispatches one audit entry. distance is nil for
// decisions that never reached the matcher. metadataBuilder runs only when
// the dispatcher is active.
func (e *Engine) emitAudit(
	ctx context.Context,
	action string,
	identityID string,
	sessionID string,
	distance *float64,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}
	if ua := userAgentFromContext(ctx); ua != "" {
		if metadata == nil {
			metadata = make(map[string]string, 1)
		}
		metadata["user_agent"] = ua
	}

	e.audit.Emit(ctx, AuditEntry{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Action:     action,
		IdentityID: identityID,
		SessionID:  sessionID,
		IP:         clientIPFromContext(ctx),
		Distance:   distance,
		Metadata:   metadata,
	})
}

func distancePtr(d float64) *float64 {
	return &d
}
