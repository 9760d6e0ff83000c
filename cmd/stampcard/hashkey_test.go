package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/polkiloo/stampcard/internal/pkg/auth"
)

func TestHashKeyPrintsVerifiableHash(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := hashKey([]string{"counter-key"}, &stdout, &stderr); code != 0 {
		t.Fatalf("expected exit 0, got %d (%s)", code, stderr.String())
	}
	hash := strings.TrimSpace(stdout.String())
	verifier, err := auth.NewOperatorVerifier(hash, auth.NewBcryptHasher(0))
	if err != nil {
		t.Fatalf("printed hash rejected: %v", err)
	}
	if err := verifier.Verify("counter-key"); err != nil {
		t.Fatalf("expected key to verify: %v", err)
	}
}

func TestHashKeyUsage(t *testing.T) {
	for _, args := range [][]string{nil, {""}, {"a", "b"}} {
		var stdout, stderr bytes.Buffer
		if code := hashKey(args, &stdout, &stderr); code != 2 {
			t.Fatalf("%v: expected exit 2, got %d", args, code)
		}
		if !strings.Contains(stderr.String(), "usage") {
			t.Fatalf("%v: expected usage message, got %q", args, stderr.String())
		}
	}
}
