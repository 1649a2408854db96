package campusride

import (
	"context"
	"errors"
	"strconv"
)

const (
	auditEventRegistrationCodeSent       = "registration_code_sent"
	auditEventRegistrationSuccess        = "registration_success"
	auditEventRegistrationFailure        = "registration_failure"
	auditEventRegistrationDuplicate      = "registration_duplicate"
	auditEventLoginSuccess               = "login_success"
	auditEventLoginFailure               = "login_failure"
	auditEventLoginRateLimited           = "login_rate_limited"
	auditEventLogoutSession              = "logout_session"
	auditEventPasswordResetRequest       = "password_reset_request"
	auditEventPasswordResetConfirm       = "password_reset_confirm"
	auditEventAccountDeleteRequest       = "account_delete_request"
	auditEventAccountDeleteConfirm       = "account_delete_confirm"
	auditEventLanguageChanged            = "language_changed"
	auditEventNotificationFailed         = "notification_failed"
	auditEventRateLimitTriggered         = "rate_limit_triggered"
	auditEventSessionsInvalidatedForUser = "sessions_invalidated"
)

// AuditErrorCode is the stable, non-sensitive error label written to audit
// events.
type AuditErrorCode string

const (
	auditErrInvalidInput       AuditErrorCode = "invalid_input"
	auditErrDuplicate          AuditErrorCode = "duplicate"
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrNotVerified        AuditErrorCode = "not_verified"
	auditErrUnauthenticated    AuditErrorCode = "unauthenticated"
	auditErrEmailMismatch      AuditErrorCode = "email_mismatch"
	auditErrCodeExpired        AuditErrorCode = "code_expired"
	auditErrCodeMismatch       AuditErrorCode = "code_mismatch"
	auditErrNoSuchCode         AuditErrorCode = "no_such_code"
	auditErrUserNotFound       AuditErrorCode = "user_not_found"
	auditErrRateLimited        AuditErrorCode = "rate_limited"
	auditErrNotification       AuditErrorCode = "notification_failed"
	auditErrUnavailable        AuditErrorCode = "backend_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID int64,
	email string,
	sessionID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: e.now().UTC(),
		EventType: eventType,
		Email:     email,
		SessionID: sessionID,
		RequestID: requestIDFromContext(ctx),
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if userID > 0 {
		event.UserID = strconv.FormatInt(userID, 10)
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func (e *Engine) emitRateLimit(
	ctx context.Context,
	scope string,
	email string,
	metadataBuilder func() map[string]string,
) {
	e.metricInc(MetricRateLimitHit)
	e.emitAudit(ctx, auditEventRateLimitTriggered, false, 0, email, "", ErrRateLimited, func() map[string]string {
		base := map[string]string{
			"scope": scope,
		}
		if metadataBuilder == nil {
			return base
		}
		for k, v := range metadataBuilder() {
			base[k] = v
		}
		return base
	})
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrInvalidLanguage):
		return auditErrInvalidInput
	case errors.Is(err, ErrDuplicateUsername),
		errors.Is(err, ErrDuplicateEmail):
		return auditErrDuplicate
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrNotVerified):
		return auditErrNotVerified
	case errors.Is(err, ErrUnauthenticated):
		return auditErrUnauthenticated
	case errors.Is(err, ErrEmailMismatch):
		return auditErrEmailMismatch
	case errors.Is(err, ErrCodeExpired):
		return auditErrCodeExpired
	case errors.Is(err, ErrCodeMismatch):
		return auditErrCodeMismatch
	case errors.Is(err, ErrNoSuchCode):
		return auditErrNoSuchCode
	case errors.Is(err, ErrUserNotFound):
		return auditErrUserNotFound
	case errors.Is(err, ErrRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrNotificationFailed):
		return auditErrNotification
	case errors.Is(err, ErrStoreUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
