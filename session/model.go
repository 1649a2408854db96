package session

import "time"

// Session is the server-side record behind a session cookie.
type Session struct {
	SessionID string
	UserID    int64
	Username  string
	Email     string
	Language  string

	CreatedAt int64
	ExpiresAt int64
}

// Expired reports whether the session lifetime has ended at now.
func (s *Session) Expired(now time.Time) bool {
	return now.Unix() >= s.ExpiresAt
}

// Remaining returns the lifetime left at now, or zero when expired.
func (s *Session) Remaining(now time.Time) time.Duration {
	d := time.Unix(s.ExpiresAt, 0).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
