package session

import (
	"context"
	"sync"
	"time"
)

const tombstoneSweepEvery = 64

// MemoryStore is a process-local [Store].
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	byUser   map[int64]map[string]struct{}
	revoked  map[string]time.Time
	deletes  int
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		byUser:   make(map[int64]map[string]struct{}),
		revoked:  make(map[string]time.Time),
		now:      time.Now,
	}
}

// WithClock replaces the store clock. Intended for tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Save(_ context.Context, sess *Session, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.SessionID] = *sess
	ids, ok := s.byUser[sess.UserID]
	if !ok {
		ids = make(map[string]struct{})
		s.byUser[sess.UserID] = ids
	}
	ids[sess.SessionID] = struct{}{}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if until, ok := s.revoked[sessionID]; ok && now.Before(until) {
		return nil, ErrRevoked
	}

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	if sess.Expired(now) {
		s.removeLocked(sessionID, sess.UserID)
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *MemoryStore) Update(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.sessions[sess.SessionID]
	if !ok {
		return ErrNotFound
	}
	next := *sess
	next.ExpiresAt = current.ExpiresAt
	s.sessions[sess.SessionID] = next
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	s.removeLocked(sessionID, sess.UserID)
	s.revoked[sessionID] = time.Unix(sess.ExpiresAt, 0)
	s.sweepLocked()
	return nil
}

func (s *MemoryStore) DeleteAllForUser(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for sessionID := range s.byUser[userID] {
		if sess, ok := s.sessions[sessionID]; ok {
			s.revoked[sessionID] = time.Unix(sess.ExpiresAt, 0)
		}
		delete(s.sessions, sessionID)
	}
	delete(s.byUser, userID)
	s.sweepLocked()
	return nil
}

func (s *MemoryStore) removeLocked(sessionID string, userID int64) {
	delete(s.sessions, sessionID)
	if ids, ok := s.byUser[userID]; ok {
		delete(ids, sessionID)
		if len(ids) == 0 {
			delete(s.byUser, userID)
		}
	}
}

// sweepLocked drops tombstones whose session would have expired anyway.
func (s *MemoryStore) sweepLocked() {
	s.deletes++
	if s.deletes%tombstoneSweepEvery != 0 {
		return
	}
	now := s.now()
	for id, until := range s.revoked {
		if !now.Before(until) {
			delete(s.revoked, id)
		}
	}
}
