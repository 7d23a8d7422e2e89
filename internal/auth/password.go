package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt only considers the first 72 bytes of input. Longer passwords are
// cut to that length on both the hash and verify paths so they stay
// consistent with each other.
const maxPasswordBytes = 72

// HashPassword hashes a plaintext password with a per-call random salt.
// Output differs between calls for the same input.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(truncatePassword(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored hash. A malformed
// stored hash counts as a mismatch, not an error.
func CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncatePassword(plain)) == nil
}

func truncatePassword(plain string) []byte {
	b := []byte(plain)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}
