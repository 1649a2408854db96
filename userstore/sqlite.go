package userstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/campusride/userstore/migrations"
	"github.com/pressly/goose/v3"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var gooseMu sync.Mutex

// SQLite is a Store backed by modernc.org/sqlite. Schema changes are
// applied with goose from embedded migrations on open.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the database at path and migrates it.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("userstore: sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer keeps SQLITE_BUSY out of the request path.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLite{db: db, now: time.Now}, nil
}

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks that the database answers.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const userColumns = `id, username, email, password_hash, language, verified, created_at`

func (s *SQLite) Create(ctx context.Context, nu NewUser) (User, error) {
	nu = nu.normalized()
	createdAt := s.now().UTC()

	var email sql.NullString
	if nu.Email != "" {
		email = sql.NullString{String: nu.Email, Valid: true}
	}
	language := nu.Language
	if language == "" {
		language = "en"
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, language, verified, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		nu.Username, email, nu.PasswordHash, language, nu.Verified, createdAt.UnixMilli(),
	)
	if err != nil {
		return User{}, mapConstraintError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("%w: last insert id: %v", ErrStorageFailure, err)
	}

	return User{
		ID:           id,
		Username:     nu.Username,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		Language:     language,
		Verified:     nu.Verified,
		CreatedAt:    time.UnixMilli(createdAt.UnixMilli()).UTC(),
	}, nil
}

func (s *SQLite) ByUsername(ctx context.Context, username string) (User, error) {
	return s.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (s *SQLite) ByEmail(ctx context.Context, email string) (User, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return User{}, ErrUserNotFound
	}
	return s.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (s *SQLite) ByID(ctx context.Context, id int64) (User, error) {
	return s.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (s *SQLite) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return s.execOne(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
}

func (s *SQLite) UpdateLanguage(ctx context.Context, id int64, language string) error {
	return s.execOne(ctx, `UPDATE users SET language = ? WHERE id = ?`, language, id)
}

func (s *SQLite) Delete(ctx context.Context, id int64) error {
	return s.execOne(ctx, `DELETE FROM users WHERE id = ?`, id)
}

func (s *SQLite) queryOne(ctx context.Context, query string, arg any) (User, error) {
	var (
		u         User
		email     sql.NullString
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Username, &email, &u.PasswordHash, &u.Language, &u.Verified, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	u.Email = email.String
	u.CreatedAt = time.UnixMilli(createdAt).UTC()
	return u, nil
}

func (s *SQLite) execOne(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %v", ErrStorageFailure, err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func mapConstraintError(err error) error {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			message := strings.ToLower(err.Error())
			if strings.Contains(message, "users.email") {
				return ErrDuplicateEmail
			}
			return ErrDuplicateUsername
		}
	}
	return fmt.Errorf("%w: %v", ErrStorageFailure, err)
}
