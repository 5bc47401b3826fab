// Package domain defines the token ledger entities and authentication errors.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/authgate/internal/errors"
)

// TokenKind distinguishes short-lived access tokens from long-lived refresh tokens.
type TokenKind string

// Supported token kinds.
const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// TokenRecord is one row of the token ledger. Rows are never deleted, only
// flipped to revoked/expired, so the ledger doubles as an audit trail.
type TokenRecord struct {
	ID          uuid.UUID
	Token       string
	Kind        TokenKind
	Revoked     bool
	Expired     bool
	PrincipalID uuid.UUID
	CreatedAt   time.Time
}

// Active reports whether the record still authorizes requests.
func (t *TokenRecord) Active() bool {
	return !t.Revoked && !t.Expired
}

// TokenPair is the access/refresh pair returned by login, register and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Domain-specific errors for authentication operations.
var (
	// ErrInvalidCredentials indicates the username/password pair did not match.
	// Deliberately generic so callers cannot distinguish unknown users from
	// wrong passwords.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrMalformedToken indicates the Authorization header is missing or not
	// in Bearer form.
	ErrMalformedToken = errors.Wrap(errors.ErrUnauthorized, "malformed authorization header")

	// ErrInvalidToken indicates the token failed signature or expiry checks.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid token")

	// ErrRevokedToken indicates the token is no longer active in the ledger,
	// or its revocation status could not be confirmed.
	ErrRevokedToken = errors.Wrap(errors.ErrUnauthorized, "token is revoked")

	// ErrAuthorizationDenied indicates the authenticated principal lacks the
	// role or module the route requires.
	ErrAuthorizationDenied = errors.Wrap(errors.ErrForbidden, "authorization denied")

	// ErrDuplicateToken indicates a ledger insert collided on the token
	// string. Treated as an internal fault, never surfaced to clients.
	ErrDuplicateToken = errors.Wrap(errors.ErrConflict, "token already recorded")
)
