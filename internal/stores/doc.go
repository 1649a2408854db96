// Package stores implements the verification ledger: short-lived six digit
// codes keyed by (email, purpose) for registration, password reset and
// account deletion.
//
// # Design
//
// [MemoryLedger] keeps entries in a mutex-guarded map. [RedisLedger]
// persists a versioned binary record per key with a TTL and consumes it
// through a Lua script (GET→expiry→compare→DEL), so the check and the
// delete are one atomic step. Only a SHA-256 digest of the code is stored
// and the final comparison is constant-time.
//
// Expiry is lazy: an expired entry is removed and reported as [ErrExpired]
// the first time it is presented, and is unknown afterwards.
//
// # What this package must NOT do
//
//   - Log or expose plaintext codes.
//   - Make account decisions; callers decide what a consumed code unlocks.
package stores
