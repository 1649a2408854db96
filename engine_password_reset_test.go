package campusride

import (
	"context"
	"errors"
	"testing"

	"github.com/MrEthical07/campusride/internal/stores"
	"github.com/MrEthical07/campusride/locale"
	"github.com/MrEthical07/campusride/notify"
)

func TestForgotPasswordUnknownEmailIssuesNoCode(t *testing.T) {
	h := newTestEngine(t, nil)
	ctx := context.Background()

	for _, email := range []string{"nobody@x.com", "not-an-email", ""} {
		if err := h.engine.RequestPasswordReset(ctx, email); err != nil {
			t.Fatalf("%q: expected nil, got %v", email, err)
		}
	}
	if h.notifier.count() != 0 {
		t.Fatalf("expected no mail, got %d", h.notifier.count())
	}
	pending, err := h.engine.ledger.Pending(ctx, "nobody@x.com", stores.PurposeReset)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if pending {
		t.Fatal("unknown email must not get a code")
	}
}

func TestForgotPasswordDeliveryFailureHidden(t *testing.T) {
	h := newTestEngine(t, nil)
	h.register(t, "a@x.com", "alice", "pw123456")
	h.notifier.setFailure(errors.New("smtp down"))
	ctx := context.Background()

	if err := h.engine.RequestPasswordReset(ctx, "a@x.com"); err != nil {
		t.Fatalf("expected nil for known email with failed delivery, got %v", err)
	}
	pending, err := h.engine.ledger.Pending(ctx, "a@x.com", stores.PurposeReset)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if pending {
		t.Fatal("undelivered reset code must be revoked")
	}
	if got := h.engine.MetricsSnapshot().Counters[MetricNotificationFailure]; got != 1 {
		t.Fatalf("expected one notification failure, got %d", got)
	}
}

func TestPasswordResetUsesStoredLanguage(t *testing.T) {
	h := newTestEngine(t, nil)
	res := h.register(t, "a@x.com", "alice", "pw123456")
	ctx := context.Background()
	if _, err := h.engine.ChangeLanguage(ctx, res.Token, "st"); err != nil {
		t.Fatalf("change language: %v", err)
	}

	if err := h.engine.RequestPasswordReset(ctx, "A@x.com "); err != nil {
		t.Fatalf("request: %v", err)
	}
	msg := h.notifier.last(t, "a@x.com", notify.KindReset)
	if msg.Language != locale.Sesotho {
		t.Fatalf("expected st, got %s", msg.Language)
	}
}

func TestPasswordResetWeakPasswordKeepsCode(t *testing.T) {
	h := newTestEngine(t, nil)
	session := h.register(t, "a@x.com", "alice", "pw123456")
	ctx := context.Background()

	if err := h.engine.RequestPasswordReset(ctx, "a@x.com"); err != nil {
		t.Fatalf("request: %v", err)
	}
	code := h.lastCode(t, "a@x.com", notify.KindReset)

	err := h.engine.ResetPassword(ctx, PasswordResetRequest{Email: "a@x.com", Code: code, NewPassword: "123"})
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if KindOf(err) != KindValidation {
		t.Fatalf("expected validation kind, got %s", KindOf(err))
	}

	if err := h.engine.ResetPassword(ctx, PasswordResetRequest{Email: "a@x.com", Code: code, NewPassword: "newpass99"}); err != nil {
		t.Fatalf("reset with same code: %v", err)
	}

	if _, err := h.engine.Login(ctx, "alice", "pw123456"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, err := h.engine.Login(ctx, "alice", "newpass99"); err != nil {
		t.Fatalf("new password: %v", err)
	}
	if _, err := h.engine.Authenticate(ctx, session.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("reset must end existing sessions, got %v", err)
	}

	err = h.engine.ResetPassword(ctx, PasswordResetRequest{Email: "a@x.com", Code: code, NewPassword: "another99"})
	if !errors.Is(err, ErrNoSuchCode) {
		t.Fatalf("expected a used code to be gone, got %v", err)
	}
}

func TestPasswordResetWrongCode(t *testing.T) {
	h := newTestEngine(t, nil)
	h.register(t, "a@x.com", "alice", "pw123456")
	ctx := context.Background()

	if err := h.engine.ResetPassword(ctx, PasswordResetRequest{Email: "a@x.com", Code: "123456", NewPassword: "newpass99"}); !errors.Is(err, ErrNoSuchCode) {
		t.Fatalf("expected ErrNoSuchCode without a request, got %v", err)
	}

	if err := h.engine.RequestPasswordReset(ctx, "a@x.com"); err != nil {
		t.Fatalf("request: %v", err)
	}
	code := h.lastCode(t, "a@x.com", notify.KindReset)
	if err := h.engine.ResetPassword(ctx, PasswordResetRequest{Email: "a@x.com", Code: wrongCode(code), NewPassword: "newpass99"}); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("expected ErrCodeMismatch, got %v", err)
	}
	if _, err := h.engine.Login(ctx, "alice", "pw123456"); err != nil {
		t.Fatalf("password must be unchanged: %v", err)
	}
}

func TestRegistrationAndResetCodesAreIndependent(t *testing.T) {
	h := newTestEngine(t, nil)
	h.register(t, "a@x.com", "alice", "pw123456")
	ctx := context.Background()

	if err := h.engine.RequestPasswordReset(ctx, "a@x.com"); err != nil {
		t.Fatalf("request: %v", err)
	}
	code := h.lastCode(t, "a@x.com", notify.KindReset)

	_, err := h.engine.CompleteRegistration(ctx, RegistrationRequest{
		Email: "fresh@x.com", Code: code, Username: "fresh", Password: "pw123456",
	})
	if !errors.Is(err, ErrNoSuchCode) {
		t.Fatalf("reset code must not register another address, got %v", err)
	}
	if err := h.engine.ResetPassword(ctx, PasswordResetRequest{Email: "a@x.com", Code: code, NewPassword: "newpass99"}); err != nil {
		t.Fatalf("reset: %v", err)
	}
}
