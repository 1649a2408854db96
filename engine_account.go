package campusride

import (
	"context"
	"fmt"

	"github.com/MrEthical07/campusride/locale"
)

// CurrentUser returns the profile behind a live session.
func (e *Engine) CurrentUser(ctx context.Context, token string) (AccountView, error) {
	if e == nil || e.users == nil {
		return AccountView{}, ErrEngineNotReady
	}
	sess, err := e.loadSession(ctx, token)
	if err != nil {
		return AccountView{}, err
	}
	u, err := e.users.ByID(ctx, sess.UserID)
	if err != nil {
		return AccountView{}, userStoreError(err)
	}

	lang, err := locale.Parse(u.Language)
	if err != nil {
		lang = locale.Default
	}
	return AccountView{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Language: lang,
	}, nil
}

// ChangeLanguage stores a new interface language for the signed-in account
// and applies it to the current session.
func (e *Engine) ChangeLanguage(ctx context.Context, token, language string) (SessionInfo, error) {
	if e == nil || e.users == nil {
		return SessionInfo{}, ErrEngineNotReady
	}
	sess, err := e.loadSession(ctx, token)
	if err != nil {
		return SessionInfo{}, err
	}
	lang, err := parseLanguage(language)
	if err != nil {
		return SessionInfo{}, err
	}

	if err := e.users.UpdateLanguage(ctx, sess.UserID, lang.String()); err != nil {
		return SessionInfo{}, userStoreError(err)
	}
	sess.Language = lang.String()
	if err := e.sessions.Update(ctx, sess); err != nil {
		return SessionInfo{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	e.metricInc(MetricLanguageChanged)
	e.emitAudit(ctx, auditEventLanguageChanged, true, sess.UserID, "", sess.SessionID, nil, func() map[string]string {
		return map[string]string{"language": lang.String()}
	})
	return sessionInfo(sess), nil
}
