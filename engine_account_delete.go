package campusride

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/campusride/internal/stores"
	"github.com/MrEthical07/campusride/userstore"
)

// RequestAccountDeletion emails a deletion code to the signed-in account's
// own address, in the session's language.
func (e *Engine) RequestAccountDeletion(ctx context.Context, token string) error {
	if e == nil || e.ledger == nil {
		return ErrEngineNotReady
	}

	sess, err := e.loadSession(ctx, token)
	if err != nil {
		return err
	}
	info := sessionInfo(sess)
	if !validEmail(info.Email) {
		return ErrInvalidEmail
	}

	if err := e.limit(ctx, "code_send", info.Email, func() error {
		return e.limiter.Hit(ctx, sendKey(stores.PurposeDelete, info.Email), e.sendRule())
	}); err != nil {
		return err
	}

	if err := e.deliverCode(ctx, info.Email, stores.PurposeDelete, info.Language, e.config.Codes.DeleteTTL); err != nil {
		e.metricInc(MetricAccountDeleteFailure)
		return err
	}

	e.metricInc(MetricAccountDeleteRequest)
	e.emitAudit(ctx, auditEventAccountDeleteRequest, true, info.UserID, info.Email, info.SessionID, nil, nil)
	return nil
}

// ConfirmAccountDeletion deletes the signed-in account once the emailed
// code checks out, then ends every session of that account including the
// caller's. An email other than the session's own returns ErrEmailMismatch
// and leaves the code usable.
func (e *Engine) ConfirmAccountDeletion(ctx context.Context, token, email, code string) error {
	if e == nil || e.ledger == nil {
		return ErrEngineNotReady
	}

	sess, err := e.loadSession(ctx, token)
	if err != nil {
		return err
	}

	email = userstore.NormalizeEmail(email)
	if err := e.confirmAccountDeletion(ctx, sess.UserID, sess.Email, email, code); err != nil {
		e.metricInc(MetricAccountDeleteFailure)
		e.emitAudit(ctx, auditEventAccountDeleteConfirm, false, sess.UserID, sess.Email, sess.SessionID, err, nil)
		return err
	}

	e.metricInc(MetricAccountDeleted)
	e.emitAudit(ctx, auditEventAccountDeleteConfirm, true, sess.UserID, sess.Email, sess.SessionID, nil, nil)
	e.logger.Info(ctx, "account deleted", "user_id", sess.UserID)
	e.endAllSessions(ctx, sess.UserID, "account_deleted")
	if err := e.ledger.Revoke(ctx, email, stores.PurposeReset); err != nil {
		e.logger.Warn(ctx, "revoke pending reset code", "error", err)
	}
	return nil
}

func (e *Engine) confirmAccountDeletion(ctx context.Context, userID int64, sessionEmail, email, code string) error {
	if email != userstore.NormalizeEmail(sessionEmail) {
		return ErrEmailMismatch
	}
	code, err := normalizeCode(code)
	if err != nil {
		return err
	}

	if err := e.consumeCode(ctx, email, stores.PurposeDelete, code); err != nil {
		return err
	}

	if err := e.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, userstore.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
