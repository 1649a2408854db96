package campusride

import "github.com/MrEthical07/campusride/internal/security"

// SecurityReport is the effective security posture of an Engine.
type SecurityReport = security.Report

// SecurityReport summarises the validated configuration, with warnings for
// settings that are unsafe in production.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	cfg := e.config
	return security.BuildReport(security.ReportInput{
		ProductionMode: cfg.Security.ProductionMode,
		SessionTTL:     cfg.Session.TTL,
		SecureCookie:   cfg.Session.SecureCookie,
		Password: security.PasswordReport{
			Memory:      cfg.Password.Memory,
			Time:        cfg.Password.Time,
			Parallelism: cfg.Password.Parallelism,
			SaltLength:  cfg.Password.SaltLength,
			KeyLength:   cfg.Password.KeyLength,
		},
		MinPasswordLength: cfg.Password.MinLength,
		RegisterCodeTTL:   cfg.Codes.RegisterTTL,
		ResetCodeTTL:      cfg.Codes.ResetTTL,
		DeleteCodeTTL:     cfg.Codes.DeleteTTL,
		MaxCodeSends:      cfg.RateLimit.MaxCodeSends,
		MaxCodeConfirms:   cfg.RateLimit.MaxCodeConfirms,
		MaxLoginFailures:  cfg.RateLimit.MaxLoginFailures,
		RateLimitWindow:   cfg.RateLimit.Window,
		RedisBacked:       e.redis != nil,
		NotifierName:      e.notifierName,
	})
}
