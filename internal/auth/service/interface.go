// Package service provides technical services for token issuance and credential handling.
//
// This package implements the HS256 token issuer/verifier shared by the auth
// API and the gateway, Argon2id password hashing, and signing-key loading.
package service

import (
	principalDomain "github.com/allisson/authgate/internal/principal/domain"
)

// TokenIssuer defines operations for issuing and verifying signed bearer tokens.
// Verification is purely local: signature and expiry checks only, no network
// and no principal-store access. Key material is immutable after startup, so
// the issuing service and the gateway derive the identical key from shared
// configuration.
type TokenIssuer interface {
	// IssueAccessToken creates a short-lived access token for the principal.
	IssueAccessToken(principal *principalDomain.Principal, plan principalDomain.Plan) (string, error)

	// IssueRefreshToken creates a long-lived refresh token for the principal.
	IssueRefreshToken(principal *principalDomain.Principal, plan principalDomain.Plan) (string, error)

	// Verify parses the token, checks signature and expiry, and returns the
	// embedded claims. Returns ErrInvalidToken on any failure.
	Verify(token string) (*Claims, error)
}

// CredentialService defines operations for password hashing and comparison.
// Implementations must use a memory-hard hashing algorithm (Argon2id) and
// constant-time comparison.
type CredentialService interface {
	// HashPassword hashes a plain text password for storage.
	HashPassword(plainPassword string) (string, error)

	// ComparePassword compares a plain text password against a stored hash.
	// Returns true only on a match; hashing errors read as a mismatch.
	ComparePassword(plainPassword string, hashedPassword string) bool
}
