package notify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/campusride/internal/logging"
)

func TestDispatcherReturnsNotifierResult(t *testing.T) {
	boom := errors.New("smtp down")
	var calls atomic.Int32
	d := NewDispatcher(DispatcherConfig{Workers: 2}, NotifierFunc(func(_ context.Context, msg Message) error {
		calls.Add(1)
		if msg.To == "fail@x.com" {
			return boom
		}
		return nil
	}))
	defer d.Close()

	ctx := context.Background()
	if err := d.Dispatch(ctx, Message{To: "ok@x.com", Kind: KindRegister}); err != nil {
		t.Fatalf("dispatch ok: %v", err)
	}
	if err := d.Dispatch(ctx, Message{To: "fail@x.com", Kind: KindRegister}); !errors.Is(err, boom) {
		t.Fatalf("expected notifier error, got %v", err)
	}
	if d.Sent() != 1 || d.Failed() != 1 || calls.Load() != 2 {
		t.Fatalf("unexpected counters sent=%d failed=%d calls=%d", d.Sent(), d.Failed(), calls.Load())
	}
}

func TestDispatcherQueueFull(t *testing.T) {
	release := make(chan struct{})
	d := NewDispatcher(DispatcherConfig{Workers: 1, QueueSize: 1}, NotifierFunc(func(ctx context.Context, _ Message) error {
		<-release
		return nil
	}))
	defer d.Close()

	ctx, cancel := context.WithCancel(context.Background())
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() { results <- d.Dispatch(ctx, Message{Kind: KindReset}) }()
	}

	var full int
	deadline := time.After(2 * time.Second)
	for full == 0 {
		select {
		case err := <-results:
			if errors.Is(err, ErrQueueFull) {
				full++
			}
		case <-deadline:
			t.Fatal("expected at least one ErrQueueFull")
		}
	}
	close(release)
	cancel()
}

func TestDispatcherHonoursContext(t *testing.T) {
	release := make(chan struct{})
	d := NewDispatcher(DispatcherConfig{Workers: 1}, NotifierFunc(func(context.Context, Message) error {
		<-release
		return nil
	}))
	defer func() {
		close(release)
		d.Close()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := d.Dispatch(ctx, Message{Kind: KindDelete}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestDispatcherClosed(t *testing.T) {
	d := NewDispatcher(DispatcherConfig{}, NotifierFunc(func(context.Context, Message) error { return nil }))
	d.Close()
	d.Close()
	if err := d.Dispatch(context.Background(), Message{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}

	var nilDispatcher *Dispatcher
	if err := nilDispatcher.Dispatch(context.Background(), Message{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed on nil dispatcher, got %v", err)
	}
}

func TestDispatchRacingCloseNeverStrands(t *testing.T) {
	for round := 0; round < 200; round++ {
		d := NewDispatcher(DispatcherConfig{Workers: 2, QueueSize: 64}, NotifierFunc(func(context.Context, Message) error { return nil }))

		var wg sync.WaitGroup
		errs := make(chan error, 16)
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- d.Dispatch(context.Background(), Message{Kind: KindRegister})
			}()
		}
		d.Close()

		finished := make(chan struct{})
		go func() {
			wg.Wait()
			close(finished)
		}()
		select {
		case <-finished:
		case <-time.After(2 * time.Second):
			t.Fatalf("round %d: Dispatch still blocked after Close", round)
		}
		close(errs)
		for err := range errs {
			if err != nil && !errors.Is(err, ErrClosed) {
				t.Fatalf("round %d: unexpected error %v", round, err)
			}
		}
	}
}

func TestLogNotifierWritesRenderedMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	n := NewLogNotifier(logger)

	err := n.Send(context.Background(), Message{To: "a@x.com", Kind: KindRegister, Code: "654321", Language: "en", TTL: 10 * time.Minute})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"to=a@x.com", "kind=register", "code=654321", "component=notify.log"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}
