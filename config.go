package campusride

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable of the Engine. Start from DefaultConfig and
// override fields, or overlay environment variables with LoadConfigFromEnv.
type Config struct {
	Session   SessionConfig   `envPrefix:"SESSION_"`
	Codes     CodeConfig      `envPrefix:"CODE_"`
	Password  PasswordConfig  `envPrefix:"PASSWORD_"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
	Notify    NotifyConfig    `envPrefix:"NOTIFY_"`
	Audit     AuditConfig     `envPrefix:"AUDIT_"`
	Metrics   MetricsConfig   `envPrefix:"METRICS_"`
	Redis     RedisConfig     `envPrefix:"REDIS_"`
	Security  SecurityConfig  `envPrefix:"SECURITY_"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls session lifetime and the signed cookie token.
type SessionConfig struct {
	TTL          time.Duration `env:"TTL"`
	Secret       string        `env:"SECRET"`
	CookieName   string        `env:"COOKIE_NAME"`
	SecureCookie bool          `env:"SECURE_COOKIE"`
	Issuer       string        `env:"ISSUER"`
	Leeway       time.Duration `env:"LEEWAY"`
}

/*
====================================
VERIFICATION CODE CONFIG
====================================
*/

// CodeConfig sets the lifetime of each verification purpose.
type CodeConfig struct {
	RegisterTTL time.Duration `env:"REGISTER_TTL"`
	ResetTTL    time.Duration `env:"RESET_TTL"`
	DeleteTTL   time.Duration `env:"DELETE_TTL"`

	// ExpiryGrace keeps Redis entries past their TTL so a late code is
	// reported as expired instead of unknown.
	ExpiryGrace time.Duration `env:"EXPIRY_GRACE"`
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds argon2id cost parameters and the length policy.
type PasswordConfig struct {
	Memory      uint32 `env:"MEMORY"` // in KB
	Time        uint32 `env:"TIME"`
	Parallelism uint8  `env:"PARALLELISM"`
	SaltLength  uint32 `env:"SALT_LENGTH"`
	KeyLength   uint32 `env:"KEY_LENGTH"`
	MinLength   int    `env:"MIN_LENGTH"`
	MaxBytes    int    `env:"MAX_BYTES"`
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig bounds code sends and code confirmations per email and
// failed logins per username, each within one fixed Window. A zero Max
// disables that limit.
type RateLimitConfig struct {
	Window           time.Duration `env:"WINDOW"`
	MaxCodeSends     int           `env:"MAX_CODE_SENDS"`
	MaxCodeConfirms  int           `env:"MAX_CODE_CONFIRMS"`
	MaxLoginFailures int           `env:"MAX_LOGIN_FAILURES"`
}

/*
====================================
NOTIFY CONFIG
====================================
*/

// NotifyConfig sizes the notification worker pool.
type NotifyConfig struct {
	Workers   int           `env:"WORKERS"`
	QueueSize int           `env:"QUEUE_SIZE"`
	Timeout   time.Duration `env:"TIMEOUT"`
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool `env:"ENABLED"`
	BufferSize int  `env:"BUFFER_SIZE"`
	DropIfFull bool `env:"DROP_IF_FULL"`
}

// MetricsConfig controls the in-process counter registry.
type MetricsConfig struct {
	Enabled                 bool `env:"ENABLED"`
	EnableLatencyHistograms bool `env:"LATENCY_HISTOGRAMS"`
}

/*
====================================
REDIS / SECURITY CONFIG
====================================
*/

// RedisConfig names the key prefixes used when a Redis client is supplied.
type RedisConfig struct {
	LedgerPrefix  string `env:"LEDGER_PREFIX"`
	SessionPrefix string `env:"SESSION_PREFIX"`
	RatePrefix    string `env:"RATE_PREFIX"`
}

// SecurityConfig enables production hardening checks.
type SecurityConfig struct {
	ProductionMode bool `env:"PRODUCTION_MODE"`
}

// DefaultConfig returns a development-ready configuration. The session
// secret is empty and must be set before Build.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			TTL:        24 * time.Hour,
			CookieName: "campusride_session",
			Issuer:     "campusride",
			Leeway:     5 * time.Second,
		},
		Codes: CodeConfig{
			RegisterTTL: 10 * time.Minute,
			ResetTTL:    15 * time.Minute,
			DeleteTTL:   10 * time.Minute,
			ExpiryGrace: 10 * time.Minute,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
			MinLength:   6,
			MaxBytes:    1024,
		},
		RateLimit: RateLimitConfig{
			Window:           15 * time.Minute,
			MaxCodeSends:     5,
			MaxCodeConfirms:  10,
			MaxLoginFailures: 10,
		},
		Notify: NotifyConfig{
			Workers:   4,
			QueueSize: 64,
			Timeout:   15 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
		Redis: RedisConfig{
			LedgerPrefix:  "crv",
			SessionPrefix: "crs",
			RatePrefix:    "crl",
		},
	}
}

// LoadConfigFromEnv overlays variables named prefix+SECTION_FIELD (for
// example CAMPUSRIDE_SESSION_TTL) onto base. Unset variables keep the
// value from base.
func LoadConfigFromEnv(base Config, prefix string) (Config, error) {
	cfg := base
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: prefix}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	// Session
	if c.Session.TTL <= 0 {
		return errors.New("Session TTL must be > 0")
	}
	if len(c.Session.Secret) < 32 {
		return errors.New("Session Secret must be at least 32 bytes")
	}
	if c.Session.CookieName == "" {
		return errors.New("Session CookieName must be set")
	}
	if c.Session.Leeway < 0 {
		return errors.New("Session Leeway must be >= 0")
	}

	// Codes
	if c.Codes.RegisterTTL <= 0 || c.Codes.ResetTTL <= 0 || c.Codes.DeleteTTL <= 0 {
		return errors.New("Codes TTLs must be > 0")
	}
	if c.Codes.ExpiryGrace < 0 {
		return errors.New("Codes ExpiryGrace must be >= 0")
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}
	if c.Password.MinLength < 1 {
		return errors.New("Password MinLength must be >= 1")
	}
	if c.Password.MaxBytes < c.Password.MinLength {
		return errors.New("Password MaxBytes must be >= MinLength")
	}

	// Rate limits
	if c.RateLimit.MaxCodeSends < 0 || c.RateLimit.MaxCodeConfirms < 0 || c.RateLimit.MaxLoginFailures < 0 {
		return errors.New("RateLimit maxima must be >= 0")
	}
	if c.RateLimit.Window < 0 {
		return errors.New("RateLimit Window must be >= 0")
	}

	// Notify
	if c.Notify.Workers < 1 {
		return errors.New("Notify Workers must be >= 1")
	}
	if c.Notify.QueueSize < 0 {
		return errors.New("Notify QueueSize must be >= 0")
	}
	if c.Notify.Timeout <= 0 {
		return errors.New("Notify Timeout must be > 0")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	// Security
	if c.Security.ProductionMode {
		if !c.Session.SecureCookie {
			return errors.New("production mode requires Session SecureCookie")
		}
		if c.RateLimit.Window == 0 || c.RateLimit.MaxLoginFailures == 0 {
			return errors.New("production mode requires login rate limiting")
		}
	}

	return nil
}
