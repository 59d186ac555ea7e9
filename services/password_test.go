package services

import (
	"strings"
	"testing"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	password := "Str0ng!pass"

	hashed, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hashed == password {
		t.Fatal("hash must not equal the plain password")
	}
	if !strings.Contains(hashed, "$") {
		t.Fatalf("unexpected hash format: %q", hashed)
	}

	ok, err := VerifyPassword(hashed, password)
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if !ok {
		t.Error("correct password should verify")
	}

	ok, err = VerifyPassword(hashed, "Wr0ng!pass")
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if ok {
		t.Error("wrong password should not verify")
	}
}

func TestHashPasswordRejectsWeakPasswords(t *testing.T) {
	for _, password := range []string{"short", "nonumbers!", "nospecial1"} {
		t.Run(password, func(t *testing.T) {
			if _, err := HashPassword(password); err == nil {
				t.Errorf("expected rejection of %q", password)
			}
		})
	}
}

func TestVerifyPasswordBadStoredFormat(t *testing.T) {
	if _, err := VerifyPassword("not-a-valid-hash", "whatever1!"); err == nil {
		t.Error("expected error for malformed stored hash")
	}
}
