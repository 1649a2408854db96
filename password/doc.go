// Package password implements password hashing and verification with Argon2id.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// [Argon2.NeedsUpgrade] reports hashes produced with weaker parameters so the
// caller can re-hash after the next successful login. Bcrypt hashes left by
// earlier deployments still verify and are always reported as stale.
//
// Length policy (the six character minimum) is enforced by the campusride
// engine. This package only bounds input size and never logs plaintext.
package password
