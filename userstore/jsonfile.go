package userstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// document is the on-disk layout. Legacy files holding a bare array of
// users are accepted on load and rewritten in this form on the next write.
type document struct {
	NextID int64  `json:"next_id"`
	Users  []User `json:"users"`
}

// legacyUser is a record from the bare-array layout. Those files stored
// the hash under "password" and the creation time under "createdAt", and
// had no verification step, so a record without a "verified" field is
// treated as verified.
type legacyUser struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Language  string    `json:"language"`
	Verified  *bool     `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
}

func (l legacyUser) user() User {
	u := User{
		ID:           l.ID,
		Username:     l.Username,
		Email:        l.Email,
		PasswordHash: l.Password,
		Language:     l.Language,
		Verified:     true,
		CreatedAt:    l.CreatedAt.UTC(),
	}
	if l.Verified != nil {
		u.Verified = *l.Verified
	}
	return u
}

func decodeLegacy(raw []byte) ([]User, error) {
	var records []legacyUser
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	users := make([]User, 0, len(records))
	for i, r := range records {
		if r.Password == "" {
			return nil, fmt.Errorf("record %d (id %d) has no password hash", i, r.ID)
		}
		users = append(users, r.user())
	}
	return users, nil
}

// snapshot is immutable once published.
type snapshot struct {
	nextID     int64
	users      []User
	byID       map[int64]int
	byUsername map[string]int
	byEmail    map[string]int
}

// JSONFile is a Store persisted as one JSON document. Each mutation
// rewrites the whole document to a temp file, fsyncs it, and renames it over
// the original before the in-memory snapshot is swapped. Reads never wait on
// a write in progress.
type JSONFile struct {
	path string
	now  func() time.Time

	writeMu sync.Mutex
	current atomic.Pointer[snapshot]
}

// OpenJSONFile loads path, creating an empty store when the file does not
// exist yet. The parent directory is created if needed.
func OpenJSONFile(path string) (*JSONFile, error) {
	if path == "" {
		return nil, errors.New("userstore: json file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("userstore: create data dir: %w", err)
	}

	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}

	f := &JSONFile{path: path, now: time.Now}
	f.current.Store(buildSnapshot(doc))
	return f, nil
}

// Path returns the backing file location.
func (f *JSONFile) Path() string {
	return f.path
}

func readDocument(path string) (document, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return document{NextID: 1}, nil
	}
	if err != nil {
		return document{}, fmt.Errorf("userstore: read %s: %w", path, err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return document{NextID: 1}, nil
	}

	var doc document
	if raw[0] == '[' {
		users, err := decodeLegacy(raw)
		if err != nil {
			return document{}, fmt.Errorf("userstore: decode legacy %s: %w", path, err)
		}
		doc.Users = users
	} else if err := json.Unmarshal(raw, &doc); err != nil {
		return document{}, fmt.Errorf("userstore: decode %s: %w", path, err)
	}

	for i := range doc.Users {
		doc.Users[i].Email = NormalizeEmail(doc.Users[i].Email)
		if doc.Users[i].ID >= doc.NextID {
			doc.NextID = doc.Users[i].ID + 1
		}
	}
	if doc.NextID < 1 {
		doc.NextID = 1
	}
	return doc, nil
}

func buildSnapshot(doc document) *snapshot {
	s := &snapshot{
		nextID:     doc.NextID,
		users:      doc.Users,
		byID:       make(map[int64]int, len(doc.Users)),
		byUsername: make(map[string]int, len(doc.Users)),
		byEmail:    make(map[string]int, len(doc.Users)),
	}
	for i, u := range doc.Users {
		s.byID[u.ID] = i
		s.byUsername[u.Username] = i
		if u.Email != "" {
			s.byEmail[u.Email] = i
		}
	}
	return s
}

func (s *snapshot) document() document {
	users := make([]User, len(s.users))
	copy(users, s.users)
	return document{NextID: s.nextID, Users: users}
}

func (f *JSONFile) Create(ctx context.Context, nu NewUser) (User, error) {
	nu = nu.normalized()

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	cur := f.current.Load()
	if _, ok := cur.byUsername[nu.Username]; ok {
		return User{}, ErrDuplicateUsername
	}
	if nu.Email != "" {
		if _, ok := cur.byEmail[nu.Email]; ok {
			return User{}, ErrDuplicateEmail
		}
	}

	u := User{
		ID:           cur.nextID,
		Username:     nu.Username,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		Language:     nu.Language,
		Verified:     nu.Verified,
		CreatedAt:    f.now().UTC(),
	}
	doc := cur.document()
	doc.Users = append(doc.Users, u)
	doc.NextID = u.ID + 1

	if err := f.commit(ctx, doc); err != nil {
		return User{}, err
	}
	return u, nil
}

func (f *JSONFile) ByUsername(_ context.Context, username string) (User, error) {
	cur := f.current.Load()
	i, ok := cur.byUsername[username]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return cur.users[i], nil
}

func (f *JSONFile) ByEmail(_ context.Context, email string) (User, error) {
	cur := f.current.Load()
	i, ok := cur.byEmail[NormalizeEmail(email)]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return cur.users[i], nil
}

func (f *JSONFile) ByID(_ context.Context, id int64) (User, error) {
	cur := f.current.Load()
	i, ok := cur.byID[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return cur.users[i], nil
}

func (f *JSONFile) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return f.mutate(ctx, id, func(doc *document, i int) {
		doc.Users[i].PasswordHash = passwordHash
	})
}

func (f *JSONFile) UpdateLanguage(ctx context.Context, id int64, language string) error {
	return f.mutate(ctx, id, func(doc *document, i int) {
		doc.Users[i].Language = language
	})
}

func (f *JSONFile) Delete(ctx context.Context, id int64) error {
	return f.mutate(ctx, id, func(doc *document, i int) {
		doc.Users = append(doc.Users[:i], doc.Users[i+1:]...)
	})
}

func (f *JSONFile) mutate(ctx context.Context, id int64, fn func(doc *document, i int)) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	cur := f.current.Load()
	i, ok := cur.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	doc := cur.document()
	fn(&doc, i)
	return f.commit(ctx, doc)
}

// commit writes doc durably and then publishes it. Callers hold writeMu.
func (f *JSONFile) commit(ctx context.Context, doc document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc.Users == nil {
		doc.Users = []User{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrStorageFailure, err)
	}
	if err := writeFileAtomic(f.path, data); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	f.current.Store(buildSnapshot(doc))
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}
