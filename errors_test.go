package campusride

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{ErrInvalidEmail, KindValidation},
		{ErrWeakPassword, KindValidation},
		{ErrDuplicateUsername, KindConflict},
		{ErrNotVerified, KindAuth},
		{ErrEmailMismatch, KindAuth},
		{ErrCodeExpired, KindExpired},
		{ErrNoSuchCode, KindCodeMismatch},
		{ErrRouteNotFound, KindNotFound},
		{ErrRateLimited, KindRateLimited},
		{fmt.Errorf("%w: dial tcp: refused", ErrStoreUnavailable), KindDependency},
		{errors.New("boom"), KindInternal},
		{nil, KindInternal},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Fatalf("KindOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestPublicMessageHidesWrappedDetail(t *testing.T) {
	err := fmt.Errorf("%w: redis: connection refused at 10.0.0.5:6379", ErrStoreUnavailable)
	if got := PublicMessage(err); got != ErrStoreUnavailable.Error() {
		t.Fatalf("unexpected message %q", got)
	}
	if got := PublicMessage(errors.New("secret detail")); got != "internal error" {
		t.Fatalf("unexpected message %q", got)
	}
	if PublicMessage(nil) != "" {
		t.Fatal("expected empty message for nil")
	}
}
