package auth

import (
	"strings"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("pw123")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "pw123" {
		t.Fatal("hash must not equal plaintext")
	}
	if !CheckPassword("pw123", hash) {
		t.Fatal("expected matching password to verify")
	}
	if CheckPassword("pw124", hash) {
		t.Fatal("expected non-matching password to fail")
	}
}

func TestHashPassword_NonDeterministic(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("same-input")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	h2, err := HashPassword("same-input")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if h1 == h2 {
		t.Fatal("expected distinct salts to produce distinct hashes")
	}
}

func TestCheckPassword_TruncationConsistency(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 100)
	hash, err := HashPassword(long)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}

	// Anything sharing the first 72 bytes verifies against the same hash.
	if !CheckPassword(long, hash) {
		t.Fatal("long password failed to verify against its own hash")
	}
	if !CheckPassword(strings.Repeat("a", 72)+"zzz", hash) {
		t.Fatal("expected passwords equal after truncation to verify")
	}
	if CheckPassword(strings.Repeat("a", 71)+"b", hash) {
		t.Fatal("expected password differing within first 72 bytes to fail")
	}
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	t.Parallel()

	if CheckPassword("anything", "not-a-bcrypt-hash") {
		t.Fatal("malformed stored hash must fail verification")
	}
}
