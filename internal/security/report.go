package security

import (
	"strings"
	"time"
)

type PasswordReport struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Report summarises the effective security posture of a configured engine.
// It is logged once at startup.
type Report struct {
	ProductionMode      bool
	SessionTTL          time.Duration
	SecureCookie        bool
	Argon2              PasswordReport
	MinPasswordLength   int
	RegisterCodeTTL     time.Duration
	ResetCodeTTL        time.Duration
	DeleteCodeTTL       time.Duration
	RateLimitingActive  bool
	LoginThrottleActive bool
	DistributedState    bool
	DevNotifierInUse    bool
	Warnings            []string
}

type ReportInput struct {
	ProductionMode    bool
	SessionTTL        time.Duration
	SecureCookie      bool
	Password          PasswordReport
	MinPasswordLength int
	RegisterCodeTTL   time.Duration
	ResetCodeTTL      time.Duration
	DeleteCodeTTL     time.Duration
	MaxCodeSends      int
	MaxCodeConfirms   int
	MaxLoginFailures  int
	RateLimitWindow   time.Duration
	RedisBacked       bool
	NotifierName      string
}

func BuildReport(input ReportInput) Report {
	rateLimiting := input.RateLimitWindow > 0 &&
		(input.MaxCodeSends > 0 || input.MaxCodeConfirms > 0)
	loginThrottle := input.RateLimitWindow > 0 && input.MaxLoginFailures > 0
	devNotifier := strings.EqualFold(input.NotifierName, "log")

	r := Report{
		ProductionMode:      input.ProductionMode,
		SessionTTL:          input.SessionTTL,
		SecureCookie:        input.SecureCookie,
		Argon2:              input.Password,
		MinPasswordLength:   input.MinPasswordLength,
		RegisterCodeTTL:     input.RegisterCodeTTL,
		ResetCodeTTL:        input.ResetCodeTTL,
		DeleteCodeTTL:       input.DeleteCodeTTL,
		RateLimitingActive:  rateLimiting,
		LoginThrottleActive: loginThrottle,
		DistributedState:    input.RedisBacked,
		DevNotifierInUse:    devNotifier,
	}

	if input.ProductionMode {
		if !input.SecureCookie {
			r.Warnings = append(r.Warnings, "session cookie is not marked Secure")
		}
		if devNotifier {
			r.Warnings = append(r.Warnings, "log notifier writes verification codes to the log")
		}
		if !rateLimiting || !loginThrottle {
			r.Warnings = append(r.Warnings, "rate limiting is disabled")
		}
	}
	return r
}
