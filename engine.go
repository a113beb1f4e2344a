package faceid

import (
	internalaudit "github.com/edunex/faceid/internal/audit"
	"github.com/edunex/faceid/session"
	"github.com/edunex/faceid/token"
)

// Engine is the entry point for all face verification flows. Construct one
// with [New] and a [Builder]; an Engine is safe for concurrent use.
type Engine struct {
	config     Config
	identities IdentityProvider
	sessions   *session.Store
	audit      *internalaudit.Dispatcher
	metrics    *Metrics
	tokens     *token.Manager
}

// Close flushes and stops the audit dispatcher. The engine must not be used
// after Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit entries were dropped because the
// dispatch buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the decision counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// ParseAccessToken validates an access token issued by [Engine.FaceLogin]
// and returns its claims. It fails when token issuance is not configured.
func (e *Engine) ParseAccessToken(tokenStr string) (*TokenClaims, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}
	return e.tokens.Parse(tokenStr)
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}
