package security_test

import (
	"testing"

	"github.com/quizhub/accounts/internal/security"
)

func TestHashAndVerifyRoundTrip(t *testing.T) {
	passwords := []string{"p@ss1234", "", "correct horse battery staple", "日本語パスワード"}

	for _, pw := range passwords {
		hash, err := security.HashPassword(pw)

		if err != nil {
			t.Fatalf("HashPassword(%q) returned error: %v", pw, err)
		}

		if hash == pw {
			t.Fatalf("hash must not equal plaintext")
		}

		if !security.VerifyPassword(pw, hash) {
			t.Fatalf("VerifyPassword(%q, hash) = false, want true", pw)
		}
	}
}

func TestVerifyRejectsWrongPassword(t *testing.T) {
	hash, err := security.HashPassword("p@ss1234")

	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if security.VerifyPassword("p@ss12345", hash) {
		t.Fatalf("expected mismatch for a different password")
	}
}

func TestVerifyMalformedHashIsFalseNotPanic(t *testing.T) {
	malformed := []string{"", "not-a-bcrypt-hash", "$2a$xx$garbage", "plaintext"}

	for _, h := range malformed {
		if security.VerifyPassword("anything", h) {
			t.Fatalf("VerifyPassword with malformed hash %q = true, want false", h)
		}
	}
}

func TestHashesAreSalted(t *testing.T) {
	h1, err := security.HashPassword("same-password")

	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	h2, err := security.HashPassword("same-password")

	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if h1 == h2 {
		t.Fatalf("two hashes of the same password must differ (salt)")
	}
}
