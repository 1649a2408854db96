package middleware

import "net/http"

// LoadSession attaches the caller's session when the request carries a
// valid token. Requests without one pass through unchanged.
func LoadSession(auth Authenticator, cookieName string) func(http.Handler) http.Handler {
	return Guard(auth, cookieName, false)
}
