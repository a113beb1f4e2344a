package faceid

import (
	"testing"
	"time"
)

func TestDefaultConfigContract(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Match.Threshold != 0.55 {
		t.Errorf("Match.Threshold: got %v, want 0.55", cfg.Match.Threshold)
	}
	if cfg.Verify.MaxAttempts != 3 {
		t.Errorf("Verify.MaxAttempts: got %d, want 3", cfg.Verify.MaxAttempts)
	}
	if cfg.Login.MaxAttempts != 5 {
		t.Errorf("Login.MaxAttempts: got %d, want 5", cfg.Login.MaxAttempts)
	}
	if cfg.Login.AttemptWindow != 300*time.Second {
		t.Errorf("Login.AttemptWindow: got %v, want 300s", cfg.Login.AttemptWindow)
	}
	if !cfg.Verify.FailOpenOnMissingDescriptors {
		t.Error("expected fail-open recovery enabled by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"zero threshold":     func(c *Config) { c.Match.Threshold = 0 },
		"negative threshold": func(c *Config) { c.Match.Threshold = -1 },
		"zero verify budget": func(c *Config) { c.Verify.MaxAttempts = 0 },
		"zero login budget":  func(c *Config) { c.Login.MaxAttempts = 0 },
		"zero window":        func(c *Config) { c.Login.AttemptWindow = 0 },
		"zero lifetime":      func(c *Config) { c.Session.Lifetime = 0 },
		"token without key":  func(c *Config) { c.Token.Enabled = true; c.Token.PrivateKey = nil },
		"token zero ttl":     func(c *Config) { c.Token.Enabled = true; c.Token.PrivateKey = []byte("k"); c.Token.TTL = 0 },
		"negative buffer":    func(c *Config) { c.Audit.BufferSize = -1 },
	}
	for name, mutate := range cases {
		cfg := defaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestBuilderRequiresDependencies(t *testing.T) {
	if _, err := New().Build(); err == nil {
		t.Fatal("expected error without redis client")
	}

	mr, rdb := newTestRedis(t)
	defer mr.Close()

	if _, err := New().WithRedis(rdb).Build(); err == nil {
		t.Fatal("expected error without identity provider")
	}

	b := New().WithRedis(rdb).WithIdentityProvider(newMockIdentityProvider())
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("expected error on builder reuse")
	}
}

func TestCloneConfigCopiesKeys(t *testing.T) {
	cfg := defaultConfig()
	cfg.Token.PrivateKey = []byte("secret")

	cloned := cloneConfig(cfg)
	cloned.Token.PrivateKey[0] = 'X'

	if cfg.Token.PrivateKey[0] != 's' {
		t.Fatal("cloneConfig must deep-copy key material")
	}
}
