package authcore

import (
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	if cfg.Session.TokenLength != 32 {
		t.Fatalf("token length = %d, want 32", cfg.Session.TokenLength)
	}
	if cfg.Session.RememberedTTL != 30*24*time.Hour {
		t.Fatalf("remembered ttl = %v, want 720h", cfg.Session.RememberedTTL)
	}
	if cfg.PasswordReset.ResetTTL != 2*time.Hour {
		t.Fatalf("reset ttl = %v, want 2h", cfg.PasswordReset.ResetTTL)
	}
	if cfg.EmailVerification.VerificationTTL != 30*24*time.Hour {
		t.Fatalf("verification ttl = %v, want 720h", cfg.EmailVerification.VerificationTTL)
	}
}

func TestConfigValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty prefix", func(c *Config) { c.Session.RedisPrefix = "" }},
		{"short session token", func(c *Config) { c.Session.TokenLength = 16 }},
		{"zero session ttl", func(c *Config) { c.Session.SessionTTL = 0 }},
		{"remembered shorter than session", func(c *Config) { c.Session.RememberedTTL = time.Hour }},
		{"short reset token", func(c *Config) { c.PasswordReset.TokenLength = 8 }},
		{"zero reset ttl", func(c *Config) { c.PasswordReset.ResetTTL = 0 }},
		{"short verification token", func(c *Config) { c.EmailVerification.TokenLength = 8 }},
		{"zero verification ttl", func(c *Config) { c.EmailVerification.VerificationTTL = 0 }},
		{"zero audit buffer", func(c *Config) { c.Audit.BufferSize = 0 }},
	}

	for _, tc := range cases {
		cfg := defaultConfig()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: Validate accepted bad config", tc.name)
		}
	}
}

func TestBuilderRequiresDependencies(t *testing.T) {
	mr, rdb := newTestRedis(t)
	t.Cleanup(mr.Close)

	if _, err := New().WithUserStore(newMockUserStore()).Build(); err == nil {
		t.Fatal("Build succeeded without redis")
	}
	if _, err := New().WithRedis(rdb).Build(); err == nil {
		t.Fatal("Build succeeded without user store")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	mr, rdb := newTestRedis(t)
	t.Cleanup(mr.Close)

	b := New().WithConfig(testConfig()).WithRedis(rdb).WithUserStore(newMockUserStore())

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := b.Build(); err == nil {
		t.Fatal("second Build on the same builder succeeded")
	}
}

func TestBuilderFreezesPolicies(t *testing.T) {
	mr, rdb := newTestRedis(t)
	t.Cleanup(mr.Close)

	engine, err := New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithUserStore(newMockUserStore()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if engine.Policies().Count() != 5 {
		t.Fatalf("policy count = %d, want the 5 builtins", engine.Policies().Count())
	}
}
