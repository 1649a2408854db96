package userstore

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	// ErrDuplicateUsername is returned when a username is already taken.
	ErrDuplicateUsername = errors.New("userstore: username already exists")
	// ErrDuplicateEmail is returned when an email is already registered.
	ErrDuplicateEmail = errors.New("userstore: email already registered")
	// ErrUserNotFound is returned by lookups and mutations on a missing id,
	// username or email.
	ErrUserNotFound = errors.New("userstore: user not found")
	// ErrStorageFailure wraps any write that could not be made durable. Prior
	// state is left untouched.
	ErrStorageFailure = errors.New("userstore: storage failure")
)

// User is one durable credential record. PasswordHash is an argon2id PHC
// string, or a bcrypt hash imported from a legacy file until the next
// login rehashes it. Plaintext never reaches this package.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"password_hash"`
	Language     string    `json:"language,omitempty"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser carries the fields a caller supplies on Create. The store assigns
// ID and CreatedAt.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	Language     string
	Verified     bool
}

// Store is the credential store contract. Implementations must keep
// username and non-empty email unique across all records, assign ids that
// are never reused, and make every mutation durable before returning nil.
type Store interface {
	Create(ctx context.Context, u NewUser) (User, error)
	ByUsername(ctx context.Context, username string) (User, error)
	ByEmail(ctx context.Context, email string) (User, error)
	ByID(ctx context.Context, id int64) (User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateLanguage(ctx context.Context, id int64, language string) error
	Delete(ctx context.Context, id int64) error
}

// NormalizeEmail lower-cases and trims an address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u NewUser) normalized() NewUser {
	u.Email = NormalizeEmail(u.Email)
	return u
}
