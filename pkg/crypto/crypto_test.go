package crypto

import (
	"bytes"
	"testing"
)

func TestPasswordHashing(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("salt error: %v", err)
	}

	digest, err := HashPassword("secret", salt)
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}

	if !VerifyPassword("secret", salt, digest) {
		t.Fatal("expected password verification to succeed")
	}
	if VerifyPassword("incorrect", salt, digest) {
		t.Fatal("expected password verification to fail")
	}
}

func TestHashPasswordSaltMatters(t *testing.T) {
	saltA, _ := GenerateSalt()
	saltB, _ := GenerateSalt()
	if bytes.Equal(saltA, saltB) {
		t.Fatal("expected distinct salts")
	}

	digestA, err := HashPassword("secret", saltA)
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	digestB, err := HashPassword("secret", saltB)
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}

	if bytes.Equal(digestA, digestB) {
		t.Fatal("expected different salts to produce different digests")
	}
}

func TestHashPasswordRejectsShortSalt(t *testing.T) {
	if _, err := HashPassword("secret", []byte("short")); err == nil {
		t.Fatal("expected short salt to be rejected")
	}
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(32)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	other, err := GenerateToken(32)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if token == other {
		t.Fatal("expected tokens to differ")
	}

	if _, err := GenerateToken(0); err == nil {
		t.Fatal("expected zero length to be rejected")
	}
}
