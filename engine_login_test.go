package campusride

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/campusride/userstore"
	"golang.org/x/crypto/bcrypt"
)

func TestLoginUnverifiedAccount(t *testing.T) {
	h := newTestEngine(t, nil)
	ctx := context.Background()

	hash, err := h.engine.passwordHash.Hash("legacy-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if _, err := h.users.Create(ctx, userstore.NewUser{
		Username:     "legacy",
		Email:        "legacy@x.com",
		PasswordHash: hash,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := h.engine.Login(ctx, "legacy", "legacy-pass"); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified, got %v", err)
	}
	if _, err := h.engine.Login(ctx, "legacy", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password must not reveal verification state, got %v", err)
	}
}

func TestLoginRejectsEmptyFields(t *testing.T) {
	h := newTestEngine(t, nil)
	for _, tc := range [][2]string{{"", "pw123456"}, {"alice", ""}, {"   ", "x"}} {
		if _, err := h.engine.Login(context.Background(), tc[0], tc[1]); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%q/%q: expected ErrInvalidInput, got %v", tc[0], tc[1], err)
		}
	}
}

func TestLoginThrottledAfterFailures(t *testing.T) {
	h := newTestEngine(t, func(b *Builder) {
		cfg := testConfig()
		cfg.RateLimit.MaxLoginFailures = 3
		b.WithConfig(cfg)
	})
	h.register(t, "a@x.com", "alice", "pw123456")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := h.engine.Login(ctx, "alice", "nope-nope"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}
	if _, err := h.engine.Login(ctx, "alice", "pw123456"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	h.clock.Advance(16 * time.Minute)
	if _, err := h.engine.Login(ctx, "alice", "pw123456"); err != nil {
		t.Fatalf("login after window: %v", err)
	}
}

func TestLoginSuccessResetsFailureCount(t *testing.T) {
	h := newTestEngine(t, func(b *Builder) {
		cfg := testConfig()
		cfg.RateLimit.MaxLoginFailures = 2
		b.WithConfig(cfg)
	})
	h.register(t, "a@x.com", "alice", "pw123456")
	ctx := context.Background()

	for round := 0; round < 3; round++ {
		if _, err := h.engine.Login(ctx, "alice", "nope-nope"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("round %d: expected ErrInvalidCredentials, got %v", round, err)
		}
		if _, err := h.engine.Login(ctx, "alice", "pw123456"); err != nil {
			t.Fatalf("round %d: login: %v", round, err)
		}
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	h := newTestEngine(t, nil)
	h.register(t, "a@x.com", "alice", "pw123456")
	ctx := context.Background()

	res, err := h.engine.Login(ctx, "alice", "pw123456")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := h.engine.Authenticate(ctx, res.Token); err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	if err := h.engine.Logout(ctx, res.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := h.engine.Authenticate(ctx, res.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated after logout, got %v", err)
	}
	if err := h.engine.Logout(ctx, res.Token); err != nil {
		t.Fatalf("second logout must succeed: %v", err)
	}
	if err := h.engine.Logout(ctx, "garbage"); err != nil {
		t.Fatalf("logout with a bad token must succeed: %v", err)
	}
}

func TestLogoutLeavesOtherSessions(t *testing.T) {
	h := newTestEngine(t, nil)
	reg := h.register(t, "a@x.com", "alice", "pw123456")
	ctx := context.Background()

	other, err := h.engine.Login(ctx, "alice", "pw123456")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := h.engine.Logout(ctx, other.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := h.engine.Authenticate(ctx, reg.Token); err != nil {
		t.Fatalf("registration session must survive: %v", err)
	}
}

func TestAuthenticateRejectsForgedAndExpired(t *testing.T) {
	h := newTestEngine(t, nil)
	res := h.register(t, "a@x.com", "alice", "pw123456")
	ctx := context.Background()

	for _, token := range []string{"", "x.y.z", res.Token + "x"} {
		if _, err := h.engine.Authenticate(ctx, token); !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("token %q: expected ErrUnauthenticated, got %v", token, err)
		}
	}

	h.clock.Advance(24*time.Hour + time.Minute)
	if _, err := h.engine.Authenticate(ctx, res.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected expired session to be rejected, got %v", err)
	}
}

func TestAuthenticateRejectsTokenFromOtherEngine(t *testing.T) {
	a := newTestEngine(t, nil)
	b := newTestEngine(t, func(b *Builder) {
		cfg := testConfig()
		cfg.Session.Secret = "another-secret-with-32-bytes-ok!"
		b.WithConfig(cfg)
	})
	res := a.register(t, "a@x.com", "alice", "pw123456")

	if _, err := b.engine.Authenticate(context.Background(), res.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestLoginUpgradesWeakPasswordHash(t *testing.T) {
	old := newTestEngine(t, nil)
	ctx := context.Background()
	old.register(t, "a@x.com", "alice", "pw123456")

	before, err := old.users.ByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	stronger := testConfig()
	stronger.Password.Time = 2
	h := newTestEngine(t, func(b *Builder) {
		b.WithConfig(stronger).WithUserStore(old.users)
	})

	if _, err := h.engine.Login(ctx, "alice", "pw123456"); err != nil {
		t.Fatalf("login: %v", err)
	}
	after, err := old.users.ByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if after.PasswordHash == before.PasswordHash {
		t.Fatal("expected the stored hash to be upgraded")
	}
	if stale, _ := h.engine.passwordHash.NeedsUpgrade(after.PasswordHash); stale {
		t.Fatal("upgraded hash still reported as stale")
	}
	if _, err := h.engine.Login(ctx, "alice", "pw123456"); err != nil {
		t.Fatalf("login after upgrade: %v", err)
	}
}

func TestLoginMigratesLegacyBcryptAccount(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("pw123456"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	path := filepath.Join(t.TempDir(), "users.json")
	legacy := `[{"id":1,"username":"alice","password":"` + string(hash) + `","language":"st","createdAt":"2024-05-01T10:00:00.000Z"}]`
	if err := os.WriteFile(path, []byte(legacy), 0o600); err != nil {
		t.Fatalf("write legacy: %v", err)
	}
	store, err := userstore.OpenJSONFile(path)
	if err != nil {
		t.Fatalf("open legacy: %v", err)
	}

	h := newTestEngine(t, func(b *Builder) {
		b.WithUserStore(store)
	})

	if _, err := h.engine.Login(ctx, "alice", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	res, err := h.engine.Login(ctx, "alice", "pw123456")
	if err != nil {
		t.Fatalf("login with legacy hash: %v", err)
	}
	if string(res.Session.Language) != "st" {
		t.Fatalf("legacy language lost: %q", res.Session.Language)
	}

	reopened, err := userstore.OpenJSONFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	u, err := reopened.ByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !strings.HasPrefix(u.PasswordHash, "$argon2id$") {
		t.Fatalf("expected argon2id hash after login, got %q", u.PasswordHash)
	}
	if _, err := h.engine.Login(ctx, "alice", "pw123456"); err != nil {
		t.Fatalf("login after migration: %v", err)
	}
}
