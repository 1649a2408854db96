package stores

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Purpose scopes a verification code to one workflow.
type Purpose uint8

const (
	PurposeRegister Purpose = iota + 1
	PurposeReset
	PurposeDelete
)

func (p Purpose) String() string {
	switch p {
	case PurposeRegister:
		return "register"
	case PurposeReset:
		return "reset"
	case PurposeDelete:
		return "delete"
	default:
		return "unknown"
	}
}

func (p Purpose) valid() bool {
	return p >= PurposeRegister && p <= PurposeDelete
}

var (
	ErrNoSuchEntry       = errors.New("verification entry not found")
	ErrCodeMismatch      = errors.New("verification code mismatch")
	ErrExpired           = errors.New("verification code expired")
	ErrInvalidPurpose    = errors.New("invalid verification purpose")
	ErrLedgerUnavailable = errors.New("verification ledger unavailable")
)

// Entry is one outstanding verification code. Only the code digest is kept.
type Entry struct {
	Email     string
	Purpose   Purpose
	CodeHash  [32]byte
	IssuedAt  time.Time
	ExpiresAt time.Time
	Language  string
}

// Ledger tracks at most one live code per (email, purpose).
//
// Issue replaces any previous entry for the pair. Consume removes the entry
// on success and on expiry detection; a mismatched code leaves it in place.
type Ledger interface {
	Issue(ctx context.Context, email string, purpose Purpose, language string, ttl time.Duration) (string, error)
	Consume(ctx context.Context, email string, purpose Purpose, code string) (Entry, error)
	Revoke(ctx context.Context, email string, purpose Purpose) error
	Pending(ctx context.Context, email string, purpose Purpose) (bool, error)
}

// LedgerOption customizes ledger construction.
type LedgerOption func(*ledgerOptions)

type ledgerOptions struct {
	now         func() time.Time
	newCode     func() (string, error)
	expiryGrace time.Duration
}

// WithClock injects the time source used for issue and expiry checks.
func WithClock(now func() time.Time) LedgerOption {
	return func(o *ledgerOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithCodeSource overrides code generation. Used by tests that need a
// predictable code.
func WithCodeSource(fn func() (string, error)) LedgerOption {
	return func(o *ledgerOptions) {
		if fn != nil {
			o.newCode = fn
		}
	}
}

// WithExpiryGrace sets how long a Redis entry outlives its code TTL so that
// a late submission is still reported as expired rather than unknown.
func WithExpiryGrace(d time.Duration) LedgerOption {
	return func(o *ledgerOptions) {
		if d >= 0 {
			o.expiryGrace = d
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
