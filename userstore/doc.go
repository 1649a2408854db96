// Package userstore holds the durable credential records.
//
// Three implementations satisfy Store:
//
//   - Memory keeps records in process and is meant for tests and demos.
//   - JSONFile rewrites one JSON document per mutation (temp file, fsync,
//     rename) and serves reads from an immutable snapshot.
//   - SQLite uses modernc.org/sqlite with goose migrations; UNIQUE
//     constraints enforce the username and email invariants.
//
// Usernames compare case-sensitively. Emails are normalised to lower case.
package userstore
