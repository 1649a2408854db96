package campusride

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/campusride/internal/stores"
	"github.com/MrEthical07/campusride/userstore"
)

// SendRegistrationCode emails a registration code to an address that has
// no account yet. Any earlier registration code for the address stops
// working.
func (e *Engine) SendRegistrationCode(ctx context.Context, email, language string) error {
	if e == nil || e.ledger == nil {
		return ErrEngineNotReady
	}

	email = userstore.NormalizeEmail(email)
	if !validEmail(email) {
		return ErrInvalidEmail
	}
	lang, err := parseLanguage(language)
	if err != nil {
		return err
	}

	if err := e.ensureEmailFree(ctx, email); err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			e.metricInc(MetricRegistrationDuplicate)
			e.emitAudit(ctx, auditEventRegistrationDuplicate, false, 0, email, "", err, nil)
		}
		return err
	}

	if err := e.limit(ctx, "code_send", email, func() error {
		return e.limiter.Hit(ctx, sendKey(stores.PurposeRegister, email), e.sendRule())
	}); err != nil {
		return err
	}

	if err := e.deliverCode(ctx, email, stores.PurposeRegister, lang, e.config.Codes.RegisterTTL); err != nil {
		e.metricInc(MetricRegistrationFailure)
		return err
	}

	e.metricInc(MetricRegistrationCodeSent)
	e.emitAudit(ctx, auditEventRegistrationCodeSent, true, 0, email, "", nil, func() map[string]string {
		return map[string]string{"language": lang.String()}
	})
	return nil
}

// CompleteRegistration verifies the emailed code and creates a verified
// account, then opens a session for it.
//
// Input is validated and the username and email are checked to be free
// before the code is consumed, so a rejected request leaves the code
// usable. Concurrent calls with the same identifiers produce one account.
func (e *Engine) CompleteRegistration(ctx context.Context, req RegistrationRequest) (LoginResult, error) {
	if e == nil || e.ledger == nil {
		return LoginResult{}, ErrEngineNotReady
	}

	email := userstore.NormalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)
	result, err := e.completeRegistration(ctx, email, username, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail), errors.Is(err, ErrDuplicateUsername):
			e.metricInc(MetricRegistrationDuplicate)
			e.emitAudit(ctx, auditEventRegistrationDuplicate, false, 0, email, "", err, nil)
		default:
			e.metricInc(MetricRegistrationFailure)
			e.emitAudit(ctx, auditEventRegistrationFailure, false, 0, email, "", err, nil)
		}
		return LoginResult{}, err
	}

	e.metricInc(MetricRegistrationSuccess)
	e.emitAudit(ctx, auditEventRegistrationSuccess, true, result.Session.UserID, email, result.Session.SessionID, nil, nil)
	e.logger.Info(ctx, "account registered", "user_id", result.Session.UserID)
	return result, nil
}

func (e *Engine) completeRegistration(ctx context.Context, email, username string, req RegistrationRequest) (LoginResult, error) {
	if !validEmail(email) {
		return LoginResult{}, ErrInvalidEmail
	}
	code, err := normalizeCode(req.Code)
	if err != nil {
		return LoginResult{}, err
	}
	if !validUsername(username) {
		return LoginResult{}, ErrInvalidInput
	}
	if err := e.checkPassword(req.Password); err != nil {
		return LoginResult{}, err
	}
	lang, err := parseLanguage(req.Language)
	if err != nil {
		return LoginResult{}, err
	}

	hash, err := e.passwordHash.Hash(req.Password)
	if err != nil {
		return LoginResult{}, fmt.Errorf("hash password: %w", err)
	}

	e.registerMu.Lock()
	defer e.registerMu.Unlock()

	if err := e.ensureUsernameFree(ctx, username); err != nil {
		return LoginResult{}, err
	}
	if err := e.ensureEmailFree(ctx, email); err != nil {
		return LoginResult{}, err
	}

	if err := e.consumeCode(ctx, email, stores.PurposeRegister, code); err != nil {
		return LoginResult{}, err
	}

	u, err := e.users.Create(ctx, userstore.NewUser{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Language:     lang.String(),
		Verified:     true,
	})
	if err != nil {
		return LoginResult{}, userStoreError(err)
	}

	return e.openSession(ctx, u)
}

func (e *Engine) ensureEmailFree(ctx context.Context, email string) error {
	_, err := e.users.ByEmail(ctx, email)
	switch {
	case err == nil:
		return ErrDuplicateEmail
	case errors.Is(err, userstore.ErrUserNotFound):
		return nil
	default:
		return userStoreError(err)
	}
}

func (e *Engine) ensureUsernameFree(ctx context.Context, username string) error {
	_, err := e.users.ByUsername(ctx, username)
	switch {
	case err == nil:
		return ErrDuplicateUsername
	case errors.Is(err, userstore.ErrUserNotFound):
		return nil
	default:
		return userStoreError(err)
	}
}
