// Package rate provides fixed-window rate limiting for code sends, code
// confirmations, and failed logins.
//
// # Window semantics
//
// Fixed-window counters: INCR + EXPIRE on the first hit (Redis) or an
// in-process map with the same rules (memory). Callers build keys; this
// package only prefixes them.
//
// # What this package must NOT do
//
//   - Implement domain-specific policies (those live in the Engine).
//   - Be imported outside the campusride module.
package rate
