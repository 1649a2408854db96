package campusride

import (
	"time"

	"github.com/MrEthical07/campusride/locale"
)

// SessionInfo is the caller-visible view of a live session.
type SessionInfo struct {
	SessionID string
	UserID    int64
	Username  string
	Email     string
	Language  locale.Language
	CreatedAt time.Time
	ExpiresAt time.Time
}

// LoginResult carries the signed cookie token for a freshly opened session.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Session   SessionInfo
}

// RegistrationRequest is the second step of registration, submitted with
// the emailed code.
type RegistrationRequest struct {
	Email    string
	Code     string
	Username string
	Password string
	Language string
}

// PasswordResetRequest completes a password reset.
type PasswordResetRequest struct {
	Email       string
	Code        string
	NewPassword string
}

// AccountView is the public profile returned by CurrentUser.
type AccountView struct {
	ID       int64           `json:"id"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Language locale.Language `json:"language"`
}

// HealthStatus reports backend reachability.
type HealthStatus struct {
	UserStore    bool
	RedisEnabled bool
	Redis        bool
	RedisLatency time.Duration
}

// OK reports whether every configured backend answered.
func (h HealthStatus) OK() bool {
	return h.UserStore && (!h.RedisEnabled || h.Redis)
}
