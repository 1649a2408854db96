package stores

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/MrEthical07/campusride/internal"
)

type ledgerKey struct {
	email   string
	purpose Purpose
}

// MemoryLedger is a process-local [Ledger]. Entries are lost on restart.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[ledgerKey]Entry
	opts    ledgerOptions
}

func NewMemoryLedger(opts ...LedgerOption) *MemoryLedger {
	o := ledgerOptions{now: time.Now, newCode: internal.NewVerificationCode}
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryLedger{
		entries: make(map[ledgerKey]Entry),
		opts:    o,
	}
}

func (l *MemoryLedger) Issue(_ context.Context, email string, purpose Purpose, language string, ttl time.Duration) (string, error) {
	if !purpose.valid() {
		return "", ErrInvalidPurpose
	}
	code, err := l.opts.newCode()
	if err != nil {
		return "", err
	}

	now := l.opts.now()
	email = normalizeEmail(email)
	entry := Entry{
		Email:     email,
		Purpose:   purpose,
		CodeHash:  internal.HashCode(code),
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
		Language:  language,
	}

	l.mu.Lock()
	l.entries[ledgerKey{email: email, purpose: purpose}] = entry
	l.mu.Unlock()

	return code, nil
}

func (l *MemoryLedger) Consume(_ context.Context, email string, purpose Purpose, code string) (Entry, error) {
	key := ledgerKey{email: normalizeEmail(email), purpose: purpose}
	provided := internal.HashCode(code)

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok {
		return Entry{}, ErrNoSuchEntry
	}
	if l.opts.now().After(entry.ExpiresAt) {
		delete(l.entries, key)
		return Entry{}, ErrExpired
	}
	if subtle.ConstantTimeCompare(entry.CodeHash[:], provided[:]) != 1 {
		return Entry{}, ErrCodeMismatch
	}

	delete(l.entries, key)
	return entry, nil
}

func (l *MemoryLedger) Revoke(_ context.Context, email string, purpose Purpose) error {
	l.mu.Lock()
	delete(l.entries, ledgerKey{email: normalizeEmail(email), purpose: purpose})
	l.mu.Unlock()
	return nil
}

func (l *MemoryLedger) Pending(_ context.Context, email string, purpose Purpose) (bool, error) {
	l.mu.Lock()
	_, ok := l.entries[ledgerKey{email: normalizeEmail(email), purpose: purpose}]
	l.mu.Unlock()
	return ok, nil
}
