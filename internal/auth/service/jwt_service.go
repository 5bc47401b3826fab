package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
	principalDomain "github.com/allisson/authgate/internal/principal/domain"

	apperrors "github.com/allisson/authgate/internal/errors"
)

// signingKeySize is the HMAC key length in bytes (256 bits for HS256).
const signingKeySize = 32

// Claims is the fixed claim schema carried by every issued token. The JSON
// names match the wire format consumed by downstream services, so changing
// them is a breaking change.
type Claims struct {
	jwt.RegisteredClaims

	// Kind is "access" or "refresh".
	Kind string `json:"type"`
	// Role is the principal's authorization role.
	Role string `json:"role"`
	// Module is the service area the principal is scoped to.
	Module string `json:"module"`
	// PrincipalID is the principal's UUID.
	PrincipalID string `json:"userId"`
	// AccountID is the owning account's UUID.
	AccountID string `json:"accountId"`
	// AccountPlan is the account's subscription tier.
	AccountPlan string `json:"userPlan"`
}

// jwtService implements TokenIssuer using HS256.
type jwtService struct {
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewJWTService creates a TokenIssuer signing with HS256. The signing key
// must be exactly 32 bytes; derive it with LoadSigningKey so issuer and
// verifier always agree.
func NewJWTService(signingKey []byte, accessTTL, refreshTTL time.Duration) (TokenIssuer, error) {
	if len(signingKey) != signingKeySize {
		return nil, apperrors.New("signing key must be 32 bytes")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, apperrors.New("token TTLs must be positive")
	}

	return &jwtService{
		signingKey: signingKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// IssueAccessToken creates a short-lived access token for the principal.
func (s *jwtService) IssueAccessToken(principal *principalDomain.Principal, plan principalDomain.Plan) (string, error) {
	return s.issue(principal, plan, authDomain.TokenKindAccess, s.accessTTL)
}

// IssueRefreshToken creates a long-lived refresh token for the principal.
func (s *jwtService) IssueRefreshToken(principal *principalDomain.Principal, plan principalDomain.Plan) (string, error) {
	return s.issue(principal, plan, authDomain.TokenKindRefresh, s.refreshTTL)
}

func (s *jwtService) issue(
	principal *principalDomain.Principal,
	plan principalDomain.Plan,
	kind authDomain.TokenKind,
	ttl time.Duration,
) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind:        string(kind),
		Role:        string(principal.Role),
		Module:      string(principal.Module),
		PrincipalID: principal.ID.String(),
		AccountID:   principal.AccountID.String(),
		AccountPlan: string(plan),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

// Verify parses the token and checks signature and expiry. Any failure maps
// to ErrInvalidToken so callers cannot probe for the reason.
func (s *jwtService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, authDomain.ErrInvalidToken
	}
	if !token.Valid {
		return nil, authDomain.ErrInvalidToken
	}

	return claims, nil
}
