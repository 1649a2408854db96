package campusride

import (
	"context"
	"errors"
	"strings"

	"github.com/MrEthical07/campusride/userstore"
)

// Login checks a username and password and opens a session.
//
// Unknown usernames and wrong passwords both return ErrInvalidCredentials
// after one argon2 verification, so neither the error nor the timing
// tells them apart. ErrNotVerified is only returned once the password has
// matched.
func (e *Engine) Login(ctx context.Context, username, password string) (LoginResult, error) {
	if e == nil || e.passwordHash == nil {
		return LoginResult{}, ErrEngineNotReady
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return LoginResult{}, ErrInvalidInput
	}

	key := loginKey(username)
	if err := e.limit(ctx, "login", "", func() error {
		return e.limiter.Check(ctx, key, e.loginRule())
	}); err != nil {
		if errors.Is(err, ErrRateLimited) {
			e.metricInc(MetricLoginRateLimited)
			e.emitAudit(ctx, auditEventLoginRateLimited, false, 0, "", "", err, nil)
		}
		return LoginResult{}, err
	}

	u, err := e.verifyCredentials(ctx, username, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			e.loginFailed(ctx, key, u.ID)
		}
		return LoginResult{}, err
	}

	if !u.Verified {
		e.metricInc(MetricLoginUnverified)
		e.emitAudit(ctx, auditEventLoginFailure, false, u.ID, u.Email, "", ErrNotVerified, nil)
		return LoginResult{}, ErrNotVerified
	}

	e.resetLimit(ctx, key)

	result, err := e.openSession(ctx, u)
	if err != nil {
		e.emitAudit(ctx, auditEventLoginFailure, false, u.ID, u.Email, "", err, nil)
		return LoginResult{}, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, u.ID, u.Email, result.Session.SessionID, nil, nil)
	return result, nil
}

// verifyCredentials returns the matched user or ErrInvalidCredentials.
// The returned user carries the id even on a wrong password, for audit.
func (e *Engine) verifyCredentials(ctx context.Context, username, password string) (userstore.User, error) {
	if len(password) > e.config.Password.MaxBytes {
		return userstore.User{}, ErrInvalidCredentials
	}

	u, err := e.users.ByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, userstore.ErrUserNotFound) {
			return userstore.User{}, userStoreError(err)
		}
		_, _ = e.passwordHash.Verify(password, e.dummyHash)
		return userstore.User{}, ErrInvalidCredentials
	}

	ok, err := e.passwordHash.Verify(password, u.PasswordHash)
	if err != nil {
		e.logger.Error(ctx, "stored password hash unreadable", "user_id", u.ID, "error", err)
		return userstore.User{ID: u.ID}, ErrInvalidCredentials
	}
	if !ok {
		return userstore.User{ID: u.ID}, ErrInvalidCredentials
	}
	e.upgradeHash(ctx, u, password)
	return u, nil
}

// upgradeHash rehashes password with the current Argon2 parameters when
// the stored hash is weaker. Failures only delay the upgrade to the next
// login.
func (e *Engine) upgradeHash(ctx context.Context, u userstore.User, password string) {
	stale, err := e.passwordHash.NeedsUpgrade(u.PasswordHash)
	if err != nil || !stale {
		return
	}
	hash, err := e.passwordHash.Hash(password)
	if err != nil {
		return
	}
	if err := e.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		e.logger.Warn(ctx, "password hash upgrade failed", "user_id", u.ID, "error", err)
		return
	}
	e.logger.Info(ctx, "password hash upgraded", "user_id", u.ID)
}

func (e *Engine) loginFailed(ctx context.Context, key string, userID int64) {
	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, auditEventLoginFailure, false, userID, "", "", ErrInvalidCredentials, nil)

	err := e.limit(ctx, "login", "", func() error {
		return e.limiter.Hit(ctx, key, e.loginRule())
	})
	if errors.Is(err, ErrStoreUnavailable) {
		e.logger.Warn(ctx, "record failed login", "error", err)
	}
}
