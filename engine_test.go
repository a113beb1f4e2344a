package faceid

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

// mockIdentityProvider is an in-memory IdentityProvider for tests.
type mockIdentityProvider struct {
	mu         sync.Mutex
	identities map[string]*IdentityRecord

	getIdentityErr    error
	getDescriptorsErr error
	findErr           error
}

func newMockIdentityProvider() *mockIdentityProvider {
	return &mockIdentityProvider{
		identities: make(map[string]*IdentityRecord),
	}
}

func (p *mockIdentityProvider) add(rec IdentityRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	stored := rec
	p.identities[rec.IdentityID] = &stored
}

func (p *mockIdentityProvider) GetIdentity(_ context.Context, identityID string) (IdentityRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.getIdentityErr != nil {
		return IdentityRecord{}, p.getIdentityErr
	}
	rec, ok := p.identities[identityID]
	if !ok {
		return IdentityRecord{}, ErrIdentityNotFound
	}
	return *rec, nil
}

func (p *mockIdentityProvider) FindEnabledActive(context.Context) ([]IdentityRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.findErr != nil {
		return nil, p.findErr
	}
	var out []IdentityRecord
	for _, rec := range p.identities {
		if rec.FaceEnabled && rec.Active {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (p *mockIdentityProvider) GetDescriptors(_ context.Context, identityID string) ([]Descriptor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.getDescriptorsErr != nil {
		return nil, p.getDescriptorsErr
	}
	rec, ok := p.identities[identityID]
	if !ok {
		return nil, ErrIdentityNotFound
	}
	return append([]Descriptor(nil), rec.Descriptors...), nil
}

func (p *mockIdentityProvider) SetDescriptors(_ context.Context, identityID string, descriptors []Descriptor) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec, ok := p.identities[identityID]
	if !ok {
		return ErrIdentityNotFound
	}
	rec.Descriptors = append([]Descriptor(nil), descriptors...)
	return nil
}

func (p *mockIdentityProvider) SetFaceEnabled(_ context.Context, identityID string, enabled bool, enrolledAt time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec, ok := p.identities[identityID]
	if !ok {
		return ErrIdentityNotFound
	}
	rec.FaceEnabled = enabled
	rec.EnrolledAt = enrolledAt.Unix()
	return nil
}

func newFaceEngine(t *testing.T, cfg Config, provider IdentityProvider, sink AuditSink) (*Engine, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, rdb := newTestRedis(t)

	builder := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithIdentityProvider(provider)
	if sink != nil {
		builder = builder.WithAuditSink(sink)
	}

	engine, err := builder.Build()
	if err != nil {
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}

	return engine, mr, func() {
		engine.Close()
		mr.Close()
	}
}

// vec returns a 128-element vector with every component set to base. Two
// such vectors sit at Euclidean distance |a-b|*sqrt(128), roughly 11.3
// times the component delta, which makes threshold arithmetic easy to read
// in tests.
func vec(base float64) []float64 {
	out := make([]float64, VectorLength)
	for i := range out {
		out[i] = base
	}
	return out
}

func mustDescriptors(t *testing.T, bases ...float64) []Descriptor {
	t.Helper()
	out := make([]Descriptor, 0, len(bases))
	for _, b := range bases {
		var d Descriptor
		copy(d[:], vec(b))
		out = append(out, d)
	}
	return out
}

// drainAudit closes the engine to flush the dispatcher, then collects
// everything the sink received.
func drainAudit(engine *Engine, sink *ChannelSink) []AuditEntry {
	engine.Close()

	var out []AuditEntry
	for {
		select {
		case entry := <-sink.Entries():
			out = append(out, entry)
		default:
			return out
		}
	}
}

func auditActions(entries []AuditEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Action)
	}
	return out
}
