package auth

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestOperatorVerifier(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("front-desk")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	verifier, err := NewOperatorVerifier(hash, hasher)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verifier.Enabled() {
		t.Fatal("expected verifier to be enabled")
	}
	if err := verifier.Verify("front-desk"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := verifier.Verify("wrong"); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if err := verifier.Verify(""); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey for empty key, got %v", err)
	}
}

func TestOperatorVerifierDisabled(t *testing.T) {
	verifier, err := NewOperatorVerifier("", NewBcryptHasher(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := verifier.Verify(""); err != nil {
		t.Fatalf("disabled verifier must accept any key, got %v", err)
	}
}

func TestNewOperatorVerifierRejectsMalformedHash(t *testing.T) {
	if _, err := NewOperatorVerifier("not-a-bcrypt-hash", NewBcryptHasher(0)); err == nil {
		t.Fatal("expected error")
	}
}
