package faceid

import (
	"errors"
	"time"

	"github.com/edunex/faceid/token"
)

// Config is the full engine configuration tree. Zero values are filled with
// the contract defaults by [DefaultConfig]; [Config.Validate] runs at build
// time.
type Config struct {
	Match   MatchConfig
	Verify  VerifyConfig
	Login   LoginConfig
	Session SessionConfig
	Token   TokenConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

// MatchConfig tunes the similarity decision.
type MatchConfig struct {
	// Threshold is the maximum Euclidean distance at which two descriptors
	// are considered the same identity. The default 0.55 is an empirical
	// cutoff carried over for compatibility; it has no documented
	// calibration method.
	Threshold float64
}

// VerifyConfig tunes the 2FA verification flow.
type VerifyConfig struct {
	// MaxAttempts bounds consecutive failed probes before the session is
	// pushed to the skip path. No time-based reset; the counter lives and
	// dies with the pending verification.
	MaxAttempts int

	// FailOpenOnMissingDescriptors controls the recovery path taken when the
	// identity's descriptor set is empty at verification time (e.g. face
	// auth was disabled between login and verification). When true the
	// probe is treated as an automatic match; when false Verify returns
	// ErrNotEnrolled and clears the pending flag. Either way the outcome is
	// audited.
	FailOpenOnMissingDescriptors bool
}

// LoginConfig tunes the standalone 1:N face-login flow.
type LoginConfig struct {
	// MaxAttempts bounds attempts per session inside AttemptWindow.
	MaxAttempts int
	// AttemptWindow is the idle period after which the attempt counter
	// resets to zero.
	AttemptWindow time.Duration
}

// SessionConfig tunes the Redis-backed client session store.
type SessionConfig struct {
	RedisPrefix string
	Lifetime    time.Duration
}

// TokenConfig tunes access-token issuance on successful face login. When
// Enabled is false, FaceLogin establishes the session but returns no token.
type TokenConfig struct {
	Enabled       bool
	TTL           time.Duration
	SigningMethod string // "ed25519" (default), "hs256" optional
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
}

// AuditConfig tunes the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles in-process decision counters.
type MetricsConfig struct {
	Enabled bool
}

// Contract constants. These must match the enrolled population and the
// client capture model exactly.
const (
	DefaultMatchThreshold     = 0.55
	DefaultMaxVerifyAttempts  = 3
	DefaultMaxLoginAttempts   = 5
	DefaultLoginAttemptWindow = 300 * time.Second
)

// DefaultConfig returns the configuration with all contract defaults set.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Match: MatchConfig{
			Threshold: DefaultMatchThreshold,
		},
		Verify: VerifyConfig{
			MaxAttempts:                  DefaultMaxVerifyAttempts,
			FailOpenOnMissingDescriptors: true,
		},
		Login: LoginConfig{
			MaxAttempts:   DefaultMaxLoginAttempts,
			AttemptWindow: DefaultLoginAttemptWindow,
		},
		Session: SessionConfig{
			RedisPrefix: "fcs",
			Lifetime:    12 * time.Hour,
		},
		Token: TokenConfig{
			Enabled:       false,
			TTL:           15 * time.Minute,
			SigningMethod: string(token.MethodEd25519),
			Issuer:        "faceid",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.PrivateKey = cloneBytes(cfg.Token.PrivateKey)
	out.Token.PublicKey = cloneBytes(cfg.Token.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate checks the configuration for internally inconsistent or unsafe
// values. It is called by [Builder.Build].
func (c Config) Validate() error {
	if c.Match.Threshold <= 0 {
		return errors.New("Match.Threshold must be positive")
	}
	if c.Verify.MaxAttempts <= 0 {
		return errors.New("Verify.MaxAttempts must be positive")
	}
	if c.Login.MaxAttempts <= 0 {
		return errors.New("Login.MaxAttempts must be positive")
	}
	if c.Login.AttemptWindow <= 0 {
		return errors.New("Login.AttemptWindow must be positive")
	}
	if c.Session.Lifetime <= 0 {
		return errors.New("Session.Lifetime must be positive")
	}
	if c.Token.Enabled {
		if c.Token.TTL <= 0 {
			return errors.New("Token.TTL must be positive when tokens are enabled")
		}
		if len(c.Token.PrivateKey) == 0 {
			return errors.New("Token.PrivateKey required when tokens are enabled")
		}
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("Audit.BufferSize must not be negative")
	}
	return nil
}
