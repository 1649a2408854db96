package campusride

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrEthical07/campusride/catalogue"
	"github.com/MrEthical07/campusride/internal"
	"github.com/MrEthical07/campusride/internal/audit"
	"github.com/MrEthical07/campusride/internal/logging"
	"github.com/MrEthical07/campusride/internal/rate"
	"github.com/MrEthical07/campusride/internal/stores"
	"github.com/MrEthical07/campusride/jwt"
	"github.com/MrEthical07/campusride/locale"
	"github.com/MrEthical07/campusride/notify"
	"github.com/MrEthical07/campusride/password"
	"github.com/MrEthical07/campusride/session"
	"github.com/MrEthical07/campusride/userstore"
	"github.com/redis/go-redis/v9"
)

// Engine runs the account workflows: registration with email
// verification, login and logout, password reset, account deletion and
// language changes. It also gates the route catalogue behind a session.
//
// All methods are safe for concurrent use.
type Engine struct {
	config       Config
	users        userstore.Store
	ledger       stores.Ledger
	sessions     session.Store
	limiter      rate.Limiter
	notifier     *notify.Dispatcher
	notifierName string
	audit        *audit.Dispatcher
	metrics      *Metrics
	passwordHash *password.Argon2
	jwtManager   *jwt.Manager
	catalogue    *catalogue.Catalogue
	logger       logging.Logger
	redis        redis.UniversalClient
	clock        func() time.Time

	// registerMu serialises the check, consume and create section of
	// registration so equal identifiers cannot both commit.
	registerMu sync.Mutex
	dummyHash  string
	closeOnce  sync.Once
}

// Close stops the notification and audit workers. Pending audit events
// are flushed.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.closeOnce.Do(func() {
		if e.notifier != nil {
			e.notifier.Close()
		}
		if e.audit != nil {
			e.audit.Close()
		}
	})
}

// NotificationStats reports how many verification emails the notifier
// delivered and how many it failed to deliver since Build.
func (e *Engine) NotificationStats() (sent, failed uint64) {
	if e == nil || e.notifier == nil {
		return 0, 0
	}
	return e.notifier.Sent(), e.notifier.Failed()
}

// AuditDropped counts events discarded because the audit buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns the engine counters, empty when metrics are off.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Config returns a copy of the validated configuration.
func (e *Engine) Config() Config {
	return e.config
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(id, d)
}

func (e *Engine) now() time.Time {
	if e.clock != nil {
		return e.clock()
	}
	return time.Now()
}

// Authenticate resolves a cookie token to its live session. A forged,
// expired, revoked or orphaned token yields ErrUnauthenticated.
func (e *Engine) Authenticate(ctx context.Context, token string) (SessionInfo, error) {
	if e == nil || e.jwtManager == nil {
		return SessionInfo{}, ErrEngineNotReady
	}
	start := e.now()
	defer func() {
		e.metricObserve(MetricAuthenticateLatency, e.now().Sub(start))
	}()

	sess, err := e.loadSession(ctx, token)
	if err != nil {
		return SessionInfo{}, err
	}
	return sessionInfo(sess), nil
}

func (e *Engine) loadSession(ctx context.Context, token string) (*session.Session, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := e.jwtManager.Parse(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	sess, err := e.sessions.Get(ctx, claims.SID)
	if err != nil {
		if errors.Is(err, session.ErrRedisUnavailable) {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return nil, ErrUnauthenticated
	}
	if sess.UserID != claims.UID || sess.Expired(e.now()) {
		return nil, ErrUnauthenticated
	}
	return sess, nil
}

// Logout ends the session named by token and tombstones its id. Logging
// out with a missing or invalid token succeeds.
func (e *Engine) Logout(ctx context.Context, token string) error {
	if e == nil || e.jwtManager == nil {
		return ErrEngineNotReady
	}
	claims, err := e.jwtManager.Parse(token)
	if err != nil {
		return nil
	}
	if err := e.sessions.Delete(ctx, claims.SID); err != nil {
		if errors.Is(err, session.ErrRedisUnavailable) {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return nil
	}

	e.metricInc(MetricLogout)
	e.metricInc(MetricSessionInvalidated)
	e.emitAudit(ctx, auditEventLogoutSession, true, claims.UID, "", claims.SID, nil, nil)
	return nil
}

func (e *Engine) openSession(ctx context.Context, u userstore.User) (LoginResult, error) {
	sid, err := internal.NewSessionID()
	if err != nil {
		return LoginResult{}, fmt.Errorf("generate session id: %w", err)
	}

	now := e.now()
	ttl := e.config.Session.TTL
	sess := &session.Session{
		SessionID: sid.String(),
		UserID:    u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Language:  u.Language,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}

	token, err := e.jwtManager.Sign(sess.SessionID, u.ID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign session token: %w", err)
	}
	if err := e.sessions.Save(ctx, sess, ttl); err != nil {
		return LoginResult{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.metricInc(MetricSessionCreated)
	info := sessionInfo(sess)
	return LoginResult{
		Token:     token,
		ExpiresAt: info.ExpiresAt,
		Session:   info,
	}, nil
}

// endAllSessions is best effort: the account change it follows has
// already committed.
func (e *Engine) endAllSessions(ctx context.Context, userID int64, reason string) {
	if err := e.sessions.DeleteAllForUser(ctx, userID); err != nil {
		e.logger.Error(ctx, "end user sessions", "user_id", userID, "reason", reason, "error", err)
		return
	}
	e.metricInc(MetricSessionInvalidated)
	e.emitAudit(ctx, auditEventSessionsInvalidatedForUser, true, userID, "", "", nil, func() map[string]string {
		return map[string]string{"reason": reason}
	})
}

func sessionInfo(sess *session.Session) SessionInfo {
	lang, err := locale.Parse(sess.Language)
	if err != nil {
		lang = locale.Default
	}
	return SessionInfo{
		SessionID: sess.SessionID,
		UserID:    sess.UserID,
		Username:  sess.Username,
		Email:     sess.Email,
		Language:  lang,
		CreatedAt: time.Unix(sess.CreatedAt, 0),
		ExpiresAt: time.Unix(sess.ExpiresAt, 0),
	}
}

// Health pings the user store and Redis when they support it.
func (e *Engine) Health(ctx context.Context) HealthStatus {
	var h HealthStatus
	h.UserStore = true
	if p, ok := e.users.(interface{ Ping(context.Context) error }); ok {
		h.UserStore = p.Ping(ctx) == nil
	}
	if e.redis != nil {
		h.RedisEnabled = true
		start := time.Now()
		h.Redis = e.redis.Ping(ctx).Err() == nil
		h.RedisLatency = time.Since(start)
	}
	return h
}

// ledgerError maps ledger outcomes onto the public sentinels.
func ledgerError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, stores.ErrNoSuchEntry):
		return ErrNoSuchCode
	case errors.Is(err, stores.ErrCodeMismatch):
		return ErrCodeMismatch
	case errors.Is(err, stores.ErrExpired):
		return ErrCodeExpired
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}

// userStoreError maps credential store outcomes onto the public sentinels.
func userStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, userstore.ErrDuplicateUsername):
		return ErrDuplicateUsername
	case errors.Is(err, userstore.ErrDuplicateEmail):
		return ErrDuplicateEmail
	case errors.Is(err, userstore.ErrUserNotFound):
		return ErrUserNotFound
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}
