package faceid

import (
	"errors"

	internalaudit "github.com/edunex/faceid/internal/audit"
	"github.com/edunex/faceid/session"
	"github.com/edunex/faceid/token"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. A Builder is single-use; Build fails on the
// second call.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	identityProvider IdentityProvider
	auditSink        AuditSink

	built bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the entire configuration tree.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing the session store.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithIdentityProvider sets the caller's identity backend.
func (b *Builder) WithIdentityProvider(p IdentityProvider) *Builder {
	b.identityProvider = p
	return b
}

// WithAuditSink sets the destination for audit entries. Without a sink the
// dispatcher still runs but entries are discarded.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and wires all engine components.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.identityProvider == nil {
		return nil, errors.New("identity provider required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	engine := &Engine{
		config:     cfg,
		identities: b.identityProvider,
		sessions:   session.NewStore(b.redis, cfg.Session.RedisPrefix, cfg.Session.Lifetime),
		metrics:    NewMetrics(cfg.Metrics),
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
	}

	if cfg.Token.Enabled {
		tm, err := token.NewManager(token.Config{
			TTL:           cfg.Token.TTL,
			SigningMethod: token.SigningMethod(cfg.Token.SigningMethod),
			PrivateKey:    cloneBytes(cfg.Token.PrivateKey),
			PublicKey:     cloneBytes(cfg.Token.PublicKey),
			Issuer:        cfg.Token.Issuer,
		})
		if err != nil {
			return nil, err
		}
		engine.tokens = tm
	}

	b.built = true

	return engine, nil
}
