package service

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/authgate/internal/errors"
)

// credentialService implements CredentialService using Argon2id.
type credentialService struct {
	hasher *pwdhash.PasswordHasher
}

// NewCredentialService creates a CredentialService using Argon2id hashing.
// Uses the Interactive policy, tuned for login-path latency.
func NewCredentialService() (CredentialService, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create password hasher")
	}

	return &credentialService{
		hasher: hasher,
	}, nil
}

// HashPassword hashes a plain text password using Argon2id.
func (s *credentialService) HashPassword(plainPassword string) (string, error) {
	hashed, err := s.hasher.Hash([]byte(plainPassword))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return hashed, nil
}

// ComparePassword performs a constant-time comparison between a plain
// password and its stored hash.
func (s *credentialService) ComparePassword(plainPassword string, hashedPassword string) bool {
	ok, err := s.hasher.Verify([]byte(plainPassword), hashedPassword)
	if err != nil {
		return false
	}
	return ok
}
