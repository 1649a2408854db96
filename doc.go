// Package campusride implements the account workflows of a student
// transport information service: registration with email verification,
// session login and logout, password reset, account deletion and language
// preference, plus session-gated access to the route catalogue.
//
// Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// campusride is the public surface. It exposes [Engine], [Builder],
// [Config] and value types (SessionInfo, LoginResult, MetricsSnapshot).
// The credential store lives in userstore, sessions in session, and the
// verification ledger, rate limiter and audit dispatcher under internal/.
// Stores are injected; with a Redis client every piece of ephemeral state
// moves to Redis so several processes can share it.
//
// # State machines
//
// Registration: a code is sent to an unregistered address; submitting the
// code with a username and password creates a verified account and a
// session. No account exists before the code is verified.
//
// Password reset: requesting a code never reveals whether the address is
// registered. A successful reset ends every session of the account.
//
// Account deletion: only a signed-in user can request a code, and only for
// their own address. Deletion ends every session of the account.
package campusride
