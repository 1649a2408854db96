package campusride

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/MrEthical07/campusride/internal"
	"github.com/MrEthical07/campusride/internal/rate"
	"github.com/MrEthical07/campusride/internal/stores"
	"github.com/MrEthical07/campusride/locale"
	"github.com/MrEthical07/campusride/notify"
)

const (
	maxUsernameRunes = 64
	maxEmailBytes    = 254
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validEmail(email string) bool {
	return len(email) <= maxEmailBytes && emailPattern.MatchString(email)
}

func validUsername(username string) bool {
	n := utf8.RuneCountInString(username)
	if n == 0 || n > maxUsernameRunes {
		return false
	}
	for _, r := range username {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func (e *Engine) checkPassword(pw string) error {
	if len(pw) > e.config.Password.MaxBytes {
		return ErrInvalidInput
	}
	if utf8.RuneCountInString(pw) < e.config.Password.MinLength {
		return ErrWeakPassword
	}
	return nil
}

func normalizeCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if !internal.ValidCodeFormat(code) {
		return "", ErrInvalidInput
	}
	return code, nil
}

func parseLanguage(value string) (locale.Language, error) {
	lang, err := locale.Parse(value)
	if err != nil {
		return "", ErrInvalidLanguage
	}
	return lang, nil
}

func (e *Engine) sendRule() rate.Rule {
	return rate.Rule{Max: e.config.RateLimit.MaxCodeSends, Window: e.config.RateLimit.Window}
}

func (e *Engine) confirmRule() rate.Rule {
	return rate.Rule{Max: e.config.RateLimit.MaxCodeConfirms, Window: e.config.RateLimit.Window}
}

func (e *Engine) loginRule() rate.Rule {
	return rate.Rule{Max: e.config.RateLimit.MaxLoginFailures, Window: e.config.RateLimit.Window}
}

func sendKey(purpose stores.Purpose, email string) string {
	return "send:" + purpose.String() + ":" + internal.KeyDigest(email)
}

func confirmKey(purpose stores.Purpose, email string) string {
	return "confirm:" + purpose.String() + ":" + internal.KeyDigest(email)
}

func loginKey(username string) string {
	return "login:" + internal.KeyDigest(username)
}

// limit runs one limiter call and maps its outcome. Denials are counted
// and audited under scope.
func (e *Engine) limit(ctx context.Context, scope, email string, call func() error) error {
	err := call()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rate.ErrRateLimited):
		e.emitRateLimit(ctx, scope, email, nil)
		return ErrRateLimited
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}

func (e *Engine) resetLimit(ctx context.Context, key string) {
	if err := e.limiter.Reset(ctx, key); err != nil {
		e.logger.Warn(ctx, "reset rate limit", "error", err)
	}
}

// deliverCode issues a fresh code for (email, purpose) and waits for the
// notifier. An undeliverable code is revoked.
func (e *Engine) deliverCode(ctx context.Context, email string, purpose stores.Purpose, lang locale.Language, ttl time.Duration) error {
	code, err := e.ledger.Issue(ctx, email, purpose, lang.String(), ttl)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	e.metricInc(MetricCodeIssued)

	sendCtx, cancel := context.WithTimeout(ctx, e.config.Notify.Timeout)
	defer cancel()

	start := time.Now()
	err = e.notifier.Dispatch(sendCtx, notify.Message{
		To:       email,
		Kind:     notifyKind(purpose),
		Code:     code,
		Language: lang,
		TTL:      ttl,
	})
	e.metricObserve(MetricNotificationLatency, time.Since(start))
	if err == nil {
		return nil
	}

	e.metricInc(MetricNotificationFailure)
	e.logger.Warn(ctx, "verification code not delivered", "purpose", purpose.String(), "error", err)
	if rerr := e.ledger.Revoke(context.WithoutCancel(ctx), email, purpose); rerr != nil {
		e.logger.Error(ctx, "revoke undelivered code", "purpose", purpose.String(), "error", rerr)
	}
	e.emitAudit(ctx, auditEventNotificationFailed, false, 0, email, "", ErrNotificationFailed, func() map[string]string {
		return map[string]string{"purpose": purpose.String()}
	})
	return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
}

func notifyKind(purpose stores.Purpose) notify.Kind {
	switch purpose {
	case stores.PurposeReset:
		return notify.KindReset
	case stores.PurposeDelete:
		return notify.KindDelete
	default:
		return notify.KindRegister
	}
}

// consumeCode consumes a code under the confirm budget for (purpose,
// email). Only a wrong code spends budget.
func (e *Engine) consumeCode(ctx context.Context, email string, purpose stores.Purpose, code string) error {
	key := confirmKey(purpose, email)
	if err := e.limit(ctx, "code_confirm", email, func() error {
		return e.limiter.Check(ctx, key, e.confirmRule())
	}); err != nil {
		return err
	}

	_, err := e.ledger.Consume(ctx, email, purpose, code)
	err = ledgerError(err)
	switch {
	case err == nil:
		e.resetLimit(ctx, key)
		return nil
	case errors.Is(err, ErrCodeMismatch):
		e.metricInc(MetricCodeMismatch)
		if lerr := e.limit(ctx, "code_confirm", email, func() error {
			return e.limiter.Hit(ctx, key, e.confirmRule())
		}); errors.Is(lerr, ErrStoreUnavailable) {
			e.logger.Warn(ctx, "record code mismatch", "error", lerr)
		}
	case errors.Is(err, ErrCodeExpired):
		e.metricInc(MetricCodeExpired)
	}
	return err
}
