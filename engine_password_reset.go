package campusride

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/campusride/internal/stores"
	"github.com/MrEthical07/campusride/locale"
	"github.com/MrEthical07/campusride/userstore"
)

// RequestPasswordReset emails a reset code when email belongs to an
// account. The result is nil for unknown and malformed addresses too, and
// delivery failures are not reported, so the caller learns nothing about
// which addresses are registered. The per-address send limit applies to
// every address alike.
func (e *Engine) RequestPasswordReset(ctx context.Context, email string) error {
	if e == nil || e.ledger == nil {
		return ErrEngineNotReady
	}

	email = userstore.NormalizeEmail(email)
	if !validEmail(email) {
		e.emitAudit(ctx, auditEventPasswordResetRequest, false, 0, "", "", ErrInvalidEmail, nil)
		return nil
	}

	if err := e.limit(ctx, "code_send", email, func() error {
		return e.limiter.Hit(ctx, sendKey(stores.PurposeReset, email), e.sendRule())
	}); err != nil {
		return err
	}
	e.metricInc(MetricPasswordResetRequest)

	u, err := e.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userstore.ErrUserNotFound) {
			e.emitAudit(ctx, auditEventPasswordResetRequest, false, 0, email, "", ErrUserNotFound, nil)
			return nil
		}
		return userStoreError(err)
	}

	lang, err := locale.Parse(u.Language)
	if err != nil {
		lang = locale.Default
	}
	if err := e.deliverCode(ctx, email, stores.PurposeReset, lang, e.config.Codes.ResetTTL); err != nil {
		e.metricInc(MetricPasswordResetFailure)
		e.logger.Error(ctx, "password reset code not sent", "user_id", u.ID, "error", err)
		e.emitAudit(ctx, auditEventPasswordResetRequest, false, u.ID, email, "", err, nil)
		return nil
	}

	e.emitAudit(ctx, auditEventPasswordResetRequest, true, u.ID, email, "", nil, nil)
	return nil
}

// ResetPassword replaces the password of the account behind email and ends
// all of its sessions. A too-short password is rejected before the code is
// consumed, so the same code can be retried.
func (e *Engine) ResetPassword(ctx context.Context, req PasswordResetRequest) error {
	if e == nil || e.ledger == nil {
		return ErrEngineNotReady
	}

	email := userstore.NormalizeEmail(req.Email)
	userID, err := e.resetPassword(ctx, email, req)
	if err != nil {
		e.metricInc(MetricPasswordResetFailure)
		e.emitAudit(ctx, auditEventPasswordResetConfirm, false, userID, email, "", err, nil)
		return err
	}

	e.metricInc(MetricPasswordResetSuccess)
	e.emitAudit(ctx, auditEventPasswordResetConfirm, true, userID, email, "", nil, nil)
	e.endAllSessions(ctx, userID, "password_reset")
	return nil
}

func (e *Engine) resetPassword(ctx context.Context, email string, req PasswordResetRequest) (int64, error) {
	if !validEmail(email) {
		return 0, ErrInvalidEmail
	}
	code, err := normalizeCode(req.Code)
	if err != nil {
		return 0, err
	}
	if err := e.checkPassword(req.NewPassword); err != nil {
		return 0, err
	}
	hash, err := e.passwordHash.Hash(req.NewPassword)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	if err := e.consumeCode(ctx, email, stores.PurposeReset, code); err != nil {
		return 0, err
	}

	u, err := e.users.ByEmail(ctx, email)
	if err != nil {
		return 0, userStoreError(err)
	}
	if err := e.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return u.ID, userStoreError(err)
	}
	e.resetLimit(ctx, loginKey(u.Username))
	return u.ID, nil
}
