package internal

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashCode digests a verification code for storage.
func HashCode(code string) [32]byte {
	return sha256.Sum256([]byte(code))
}

// KeyDigest returns a hex sha256 of v for use inside storage keys, so
// emails and usernames never appear verbatim in Redis.
func KeyDigest(v string) string {
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:16])
}
