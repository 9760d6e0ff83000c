package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidKey = errors.New("invalid operator key")

// OperatorVerifier gates the staff-facing HTTP surface behind a shared key.
// A verifier without a hash accepts every request.
type OperatorVerifier struct {
	hash   string
	hasher KeyHasher
}

// NewOperatorVerifier validates hash and builds the verifier.
func NewOperatorVerifier(hash string, hasher KeyHasher) (*OperatorVerifier, error) {
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("operator key hash: %w", err)
		}
	}
	return &OperatorVerifier{hash: hash, hasher: hasher}, nil
}

// Enabled reports whether a key is required.
func (v *OperatorVerifier) Enabled() bool {
	return v.hash != ""
}

// Verify checks the presented key.
func (v *OperatorVerifier) Verify(key string) error {
	if !v.Enabled() {
		return nil
	}
	if key == "" {
		return ErrInvalidKey
	}
	if err := v.hasher.Compare(v.hash, key); err != nil {
		return ErrInvalidKey
	}
	return nil
}
