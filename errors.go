package campusride

import (
	"errors"
)

// ErrorKind groups sentinel errors by how a caller should react to them.
// The HTTP layer maps each kind to one status code.
type ErrorKind uint8

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindConflict
	KindAuth
	KindExpired
	KindCodeMismatch
	KindNotFound
	KindRateLimited
	KindDependency
)

// String returns the lower-case kind name used in logs.
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindExpired:
		return "expired"
	case KindCodeMismatch:
		return "code_mismatch"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindDependency:
		return "dependency"
	default:
		return "internal"
	}
}

var (
	// ErrInvalidEmail is returned for addresses that do not look like user@host.tld.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrInvalidInput is returned for missing or oversized request fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrWeakPassword is returned for passwords shorter than the configured minimum.
	ErrWeakPassword = errors.New("password too short")
	// ErrInvalidLanguage is returned for language codes outside the supported set.
	ErrInvalidLanguage = errors.New("unsupported language")

	// ErrDuplicateUsername is returned when the username is already taken.
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrDuplicateEmail is returned when the email already belongs to an account.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials never distinguishes an unknown username from a wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrNotVerified is returned by Login for accounts whose email was never verified.
	ErrNotVerified = errors.New("account email not verified")
	// ErrUnauthenticated is returned for missing, forged, expired or revoked session tokens.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrEmailMismatch is returned when a deletion confirmation names another account's email.
	ErrEmailMismatch = errors.New("email does not match the signed-in account")

	// ErrCodeExpired is returned once for a code submitted after its lifetime.
	ErrCodeExpired = errors.New("verification code expired")
	// ErrCodeMismatch is returned for a wrong code; the live code stays valid.
	ErrCodeMismatch = errors.New("verification code incorrect")
	// ErrNoSuchCode is returned when no live code exists for the email and purpose.
	ErrNoSuchCode = errors.New("no verification code pending")

	// ErrUserNotFound is returned when a session outlives its account.
	ErrUserNotFound = errors.New("user not found")
	// ErrRouteNotFound is returned for unknown catalogue route ids.
	ErrRouteNotFound = errors.New("route not found")

	// ErrRateLimited is returned when a per-email or per-username limit is exhausted.
	ErrRateLimited = errors.New("too many attempts")

	// ErrNotificationFailed is returned when the verification email could not be handed off.
	ErrNotificationFailed = errors.New("verification email could not be sent")
	// ErrStoreUnavailable wraps failures of the user, session or ledger backends.
	ErrStoreUnavailable = errors.New("storage backend unavailable")

	// ErrEngineNotReady is returned by methods called on a nil or closed Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

var errorKinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrInvalidEmail, KindValidation},
	{ErrInvalidInput, KindValidation},
	{ErrWeakPassword, KindValidation},
	{ErrInvalidLanguage, KindValidation},
	{ErrDuplicateUsername, KindConflict},
	{ErrDuplicateEmail, KindConflict},
	{ErrInvalidCredentials, KindAuth},
	{ErrNotVerified, KindAuth},
	{ErrUnauthenticated, KindAuth},
	{ErrEmailMismatch, KindAuth},
	{ErrCodeExpired, KindExpired},
	{ErrCodeMismatch, KindCodeMismatch},
	{ErrNoSuchCode, KindCodeMismatch},
	{ErrUserNotFound, KindNotFound},
	{ErrRouteNotFound, KindNotFound},
	{ErrRateLimited, KindRateLimited},
	{ErrNotificationFailed, KindDependency},
	{ErrStoreUnavailable, KindDependency},
}

// KindOf returns the kind of the first known sentinel err wraps, or
// KindInternal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindInternal
	}
	for _, ek := range errorKinds {
		if errors.Is(err, ek.err) {
			return ek.kind
		}
	}
	return KindInternal
}

// PublicMessage returns text that is safe to show a client. Wrapped
// backend details are never included.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	for _, ek := range errorKinds {
		if errors.Is(err, ek.err) {
			return ek.err.Error()
		}
	}
	return "internal error"
}
