package campusride

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/campusride/notify"
	"github.com/MrEthical07/campusride/userstore"
)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []notify.Message
	fail error
}

func (n *recordingNotifier) Send(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.msgs = append(n.msgs, msg)
	return nil
}

func (n *recordingNotifier) setFailure(err error) {
	n.mu.Lock()
	n.fail = err
	n.mu.Unlock()
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.msgs)
}

func (n *recordingNotifier) last(t *testing.T, to string, kind notify.Kind) notify.Message {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.msgs) - 1; i >= 0; i-- {
		if n.msgs[i].To == to && n.msgs[i].Kind == kind {
			return n.msgs[i]
		}
	}
	t.Fatalf("no %s message sent to %s", kind, to)
	return notify.Message{}
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Session.Secret = strings.Repeat("k", 32)
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	return cfg
}

type engineHarness struct {
	engine   *Engine
	users    *userstore.Memory
	notifier *recordingNotifier
	clock    *testClock
}

// newTestEngine builds an in-memory engine. configure may adjust the
// builder before Build; it receives a builder already holding testConfig.
func newTestEngine(t testing.TB, configure func(*Builder)) *engineHarness {
	t.Helper()

	h := &engineHarness{
		users:    userstore.NewMemory(),
		notifier: &recordingNotifier{},
		clock:    newTestClock(),
	}
	b := New().
		WithConfig(testConfig()).
		WithUserStore(h.users).
		WithNotifier(h.notifier).
		WithClock(h.clock.Now)
	if configure != nil {
		configure(b)
	}

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	t.Cleanup(engine.Close)
	h.engine = engine
	return h
}

func (h *engineHarness) register(t testing.TB, email, username, password string) LoginResult {
	t.Helper()
	ctx := context.Background()
	if err := h.engine.SendRegistrationCode(ctx, email, "en"); err != nil {
		t.Fatalf("send registration code: %v", err)
	}
	code := h.lastCode(t, email, notify.KindRegister)
	res, err := h.engine.CompleteRegistration(ctx, RegistrationRequest{
		Email:    email,
		Code:     code,
		Username: username,
		Password: password,
	})
	if err != nil {
		t.Fatalf("complete registration: %v", err)
	}
	return res
}

func (h *engineHarness) lastCode(t testing.TB, email string, kind notify.Kind) string {
	t.Helper()
	h.notifier.mu.Lock()
	defer h.notifier.mu.Unlock()
	for i := len(h.notifier.msgs) - 1; i >= 0; i-- {
		m := h.notifier.msgs[i]
		if m.To == email && m.Kind == kind {
			return m.Code
		}
	}
	t.Fatalf("no %s code sent to %s", kind, email)
	return ""
}

// wrongCode returns a well-formed code different from code.
func wrongCode(code string) string {
	if code == "123456" {
		return "654321"
	}
	return "123456"
}
