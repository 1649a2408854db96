package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrEthical07/campusride"
)

type sessionContextKey struct{}
type tokenContextKey struct{}

// Authenticator resolves a session token to the live session.
// *campusride.Engine satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (campusride.SessionInfo, error)
}

// SessionFromContext returns the session attached by RequireSession or
// LoadSession.
func SessionFromContext(ctx context.Context) (campusride.SessionInfo, bool) {
	info, ok := ctx.Value(sessionContextKey{}).(campusride.SessionInfo)
	return info, ok
}

// TokenFromContext returns the raw session token of an authenticated
// request.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey{}).(string)
	return token, ok
}

// RequireSession rejects requests without a live session. A backend outage
// is reported as 502 rather than 401 so clients do not drop their cookie.
func RequireSession(auth Authenticator, cookieName string) func(http.Handler) http.Handler {
	return Guard(auth, cookieName, true)
}

// Guard returns the session middleware. When required is false an
// anonymous or stale session passes through without a session in context.
func Guard(auth Authenticator, cookieName string, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth == nil {
				WriteError(w, campusride.ErrUnauthenticated)
				return
			}

			token, ok := SessionToken(r, cookieName)
			if !ok {
				if required {
					WriteError(w, campusride.ErrUnauthenticated)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			info, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if required || campusride.KindOf(err) == campusride.KindDependency {
					WriteError(w, err)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, info)
			ctx = context.WithValue(ctx, tokenContextKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionToken extracts the session token from the cookie, falling back
// to a bearer Authorization header.
func SessionToken(r *http.Request, cookieName string) (string, bool) {
	if cookieName != "" {
		if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
			return c.Value, true
		}
	}
	return bearerToken(r.Header.Get("Authorization"))
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
