// Package session provides session persistence for cookie-based logins and
// the compact binary session encoding used by the Redis store.
//
// Two [Store] implementations are provided: [MemoryStore] for a single
// process and [RedisStore] for deployments that share sessions between
// processes. Both keep revocation tombstones so that an id ended by logout
// can never authenticate again, even if a stale copy survives elsewhere.
//
// This package does not interpret cookies or tokens and does not decide who
// may log in; those responsibilities belong to the campusride engine.
package session
