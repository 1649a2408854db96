package userstore

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]User
	now    func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		nextID: 1,
		users:  make(map[int64]User),
		now:    time.Now,
	}
}

func (m *Memory) Create(_ context.Context, nu NewUser) (User, error) {
	nu = nu.normalized()

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == nu.Username {
			return User{}, ErrDuplicateUsername
		}
		if nu.Email != "" && u.Email == nu.Email {
			return User{}, ErrDuplicateEmail
		}
	}

	u := User{
		ID:           m.nextID,
		Username:     nu.Username,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		Language:     nu.Language,
		Verified:     nu.Verified,
		CreatedAt:    m.now().UTC(),
	}
	m.nextID++
	m.users[u.ID] = u
	return u, nil
}

func (m *Memory) ByUsername(_ context.Context, username string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (m *Memory) ByEmail(_ context.Context, email string) (User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return User{}, ErrUserNotFound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (m *Memory) ByID(_ context.Context, id int64) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (m *Memory) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	return m.update(id, func(u *User) { u.PasswordHash = passwordHash })
}

func (m *Memory) UpdateLanguage(_ context.Context, id int64, language string) error {
	return m.update(id, func(u *User) { u.Language = language })
}

func (m *Memory) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *Memory) update(id int64, fn func(*User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	fn(&u)
	m.users[id] = u
	return nil
}
