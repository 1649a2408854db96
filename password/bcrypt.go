package password

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt hashes written by earlier deployments are accepted for
// verification only. NeedsUpgrade always reports them, so a successful
// login migrates the record to argon2id.
var bcryptPrefixes = [...]string{"$2a$", "$2b$", "$2y$"}

// IsBcrypt reports whether encodedHash is a bcrypt modular-crypt string.
func IsBcrypt(encodedHash string) bool {
	for _, p := range bcryptPrefixes {
		if strings.HasPrefix(encodedHash, p) {
			return true
		}
	}
	return false
}

func verifyBcrypt(password, encodedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
