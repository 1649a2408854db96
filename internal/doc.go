// Package internal contains helpers private to campusride: session id and
// verification code generation plus storage key digests.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - httpapi: chi router and JSON handlers
//   - logging: slog-backed context-aware logger
//   - rate: fixed-window rate limiters (memory and Redis)
//   - security: startup security posture report
//   - stores: verification ledger (memory and Redis)
package internal
