package campusride

import (
	"testing"
	"time"

	"github.com/MrEthical07/campusride/userstore"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "test defaults valid",
			mutate:    func(*Config) {},
			wantValid: true,
		},
		{
			name: "missing secret invalid",
			mutate: func(c *Config) {
				c.Session.Secret = ""
			},
			wantValid: false,
		},
		{
			name: "short secret invalid",
			mutate: func(c *Config) {
				c.Session.Secret = "too-short"
			},
			wantValid: false,
		},
		{
			name: "zero notify timeout invalid",
			mutate: func(c *Config) {
				c.Notify.Timeout = 0
			},
			wantValid: false,
		},
		{
			name: "zero session ttl invalid",
			mutate: func(c *Config) {
				c.Session.TTL = 0
			},
			wantValid: false,
		},
		{
			name: "zero reset code ttl invalid",
			mutate: func(c *Config) {
				c.Codes.ResetTTL = 0
			},
			wantValid: false,
		},
		{
			name: "argon2 memory too low invalid",
			mutate: func(c *Config) {
				c.Password.Memory = 1024
			},
			wantValid: false,
		},
		{
			name: "max bytes below min length invalid",
			mutate: func(c *Config) {
				c.Password.MaxBytes = 4
			},
			wantValid: false,
		},
		{
			name: "rate limits disabled valid",
			mutate: func(c *Config) {
				c.RateLimit.MaxCodeSends = 0
				c.RateLimit.MaxLoginFailures = 0
			},
			wantValid: true,
		},
		{
			name: "negative rate limit invalid",
			mutate: func(c *Config) {
				c.RateLimit.MaxCodeConfirms = -1
			},
			wantValid: false,
		},
		{
			name: "production without secure cookie invalid",
			mutate: func(c *Config) {
				c.Security.ProductionMode = true
			},
			wantValid: false,
		},
		{
			name: "production with secure cookie valid",
			mutate: func(c *Config) {
				c.Security.ProductionMode = true
				c.Session.SecureCookie = true
			},
			wantValid: true,
		},
		{
			name: "audit enabled without buffer invalid",
			mutate: func(c *Config) {
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tt.wantValid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestDefaultConfigNeedsSecret(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatal("default config must require a session secret")
	}
	if cfg.Codes.RegisterTTL != 10*time.Minute || cfg.Codes.ResetTTL != 15*time.Minute || cfg.Codes.DeleteTTL != 10*time.Minute {
		t.Fatalf("unexpected code TTLs %+v", cfg.Codes)
	}
	if cfg.Session.TTL != 24*time.Hour || cfg.Password.MinLength != 6 {
		t.Fatalf("unexpected defaults %+v %+v", cfg.Session, cfg.Password)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CRTEST_SESSION_TTL", "2h")
	t.Setenv("CRTEST_SESSION_SECRET", "env-secret-env-secret-env-secret")
	t.Setenv("CRTEST_RATE_LIMIT_MAX_LOGIN_FAILURES", "7")
	t.Setenv("CRTEST_PASSWORD_PARALLELISM", "4")
	t.Setenv("CRTEST_CODE_RESET_TTL", "20m")

	cfg, err := LoadConfigFromEnv(DefaultConfig(), "CRTEST_")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Session.TTL != 2*time.Hour {
		t.Fatalf("expected 2h TTL, got %s", cfg.Session.TTL)
	}
	if cfg.RateLimit.MaxLoginFailures != 7 || cfg.Password.Parallelism != 4 || cfg.Codes.ResetTTL != 20*time.Minute {
		t.Fatalf("env overlay not applied: %+v", cfg)
	}
	if cfg.Codes.RegisterTTL != 10*time.Minute {
		t.Fatalf("unset variables must keep defaults, got %s", cfg.Codes.RegisterTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadConfigFromEnvRejectsGarbage(t *testing.T) {
	t.Setenv("CRTEST_SESSION_TTL", "forever")
	if _, err := LoadConfigFromEnv(DefaultConfig(), "CRTEST_"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestBuilderRequiresCollaborators(t *testing.T) {
	if _, err := New().WithConfig(testConfig()).Build(); err == nil {
		t.Fatal("expected error without user store")
	}

	b := New().WithConfig(testConfig()).WithUserStore(userstore.NewMemory())
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error without notifier")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := New().WithConfig(testConfig()).WithUserStore(userstore.NewMemory()).WithNotifier(&recordingNotifier{})
	e, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer e.Close()
	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}
