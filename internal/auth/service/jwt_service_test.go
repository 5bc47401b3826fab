package service

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
	apperrors "github.com/allisson/authgate/internal/errors"
	principalDomain "github.com/allisson/authgate/internal/principal/domain"
)

func testSigningKey() []byte {
	return bytes.Repeat([]byte{0xAB}, 32)
}

func testPrincipal() *principalDomain.Principal {
	return &principalDomain.Principal{
		ID:        uuid.Must(uuid.NewV7()),
		Username:  "alice",
		Role:      principalDomain.RoleAdmin,
		Module:    principalDomain.ModuleMedical,
		State:     principalDomain.StateActive,
		AccountID: uuid.Must(uuid.NewV7()),
	}
}

func TestNewJWTService(t *testing.T) {
	t.Run("Success_ValidKey", func(t *testing.T) {
		issuer, err := NewJWTService(testSigningKey(), 15*time.Minute, 7*24*time.Hour)

		require.NoError(t, err)
		assert.NotNil(t, issuer)
	})

	t.Run("Error_ShortKey", func(t *testing.T) {
		issuer, err := NewJWTService([]byte("too-short"), 15*time.Minute, time.Hour)

		assert.Error(t, err)
		assert.Nil(t, issuer)
	})

	t.Run("Error_NonPositiveTTL", func(t *testing.T) {
		issuer, err := NewJWTService(testSigningKey(), 0, time.Hour)

		assert.Error(t, err)
		assert.Nil(t, issuer)
	})
}

func TestJWTService_IssueAndVerify(t *testing.T) {
	issuer, err := NewJWTService(testSigningKey(), 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)

	principal := testPrincipal()

	t.Run("Success_AccessTokenRoundTrip", func(t *testing.T) {
		token, err := issuer.IssueAccessToken(principal, principalDomain.PlanPremium)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := issuer.Verify(token)
		require.NoError(t, err)

		assert.Equal(t, "access", claims.Kind)
		assert.Equal(t, "alice", claims.Subject)
		assert.Equal(t, "ADMIN", claims.Role)
		assert.Equal(t, "MEDICAL", claims.Module)
		assert.Equal(t, principal.ID.String(), claims.PrincipalID)
		assert.Equal(t, principal.AccountID.String(), claims.AccountID)
		assert.Equal(t, "PREMIUM", claims.AccountPlan)
		assert.NotNil(t, claims.IssuedAt)
		assert.NotNil(t, claims.ExpiresAt)
	})

	t.Run("Success_RefreshTokenKind", func(t *testing.T) {
		token, err := issuer.IssueRefreshToken(principal, principalDomain.PlanBasic)
		require.NoError(t, err)

		claims, err := issuer.Verify(token)
		require.NoError(t, err)

		assert.Equal(t, "refresh", claims.Kind)
	})

	t.Run("Success_RefreshOutlivesAccess", func(t *testing.T) {
		accessToken, err := issuer.IssueAccessToken(principal, principalDomain.PlanBasic)
		require.NoError(t, err)
		refreshToken, err := issuer.IssueRefreshToken(principal, principalDomain.PlanBasic)
		require.NoError(t, err)

		accessClaims, err := issuer.Verify(accessToken)
		require.NoError(t, err)
		refreshClaims, err := issuer.Verify(refreshToken)
		require.NoError(t, err)

		assert.True(t, refreshClaims.ExpiresAt.After(accessClaims.ExpiresAt.Time))
	})
}

func TestJWTService_Verify(t *testing.T) {
	issuer, err := NewJWTService(testSigningKey(), 15*time.Minute, time.Hour)
	require.NoError(t, err)

	principal := testPrincipal()

	t.Run("Error_GarbageToken", func(t *testing.T) {
		claims, err := issuer.Verify("not-a-token")

		assert.Nil(t, claims)
		assert.True(t, apperrors.Is(err, authDomain.ErrInvalidToken))
		assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
	})

	t.Run("Error_WrongKey", func(t *testing.T) {
		otherIssuer, err := NewJWTService(bytes.Repeat([]byte{0xCD}, 32), 15*time.Minute, time.Hour)
		require.NoError(t, err)

		token, err := otherIssuer.IssueAccessToken(principal, principalDomain.PlanBasic)
		require.NoError(t, err)

		claims, err := issuer.Verify(token)

		assert.Nil(t, claims)
		assert.True(t, apperrors.Is(err, authDomain.ErrInvalidToken))
	})

	t.Run("Error_ExpiredToken", func(t *testing.T) {
		shortIssuer, err := NewJWTService(testSigningKey(), time.Nanosecond, time.Nanosecond)
		require.NoError(t, err)

		token, err := shortIssuer.IssueAccessToken(principal, principalDomain.PlanBasic)
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)
		claims, err := issuer.Verify(token)

		assert.Nil(t, claims)
		assert.True(t, apperrors.Is(err, authDomain.ErrInvalidToken))
	})

	t.Run("Error_TamperedPayload", func(t *testing.T) {
		token, err := issuer.IssueAccessToken(principal, principalDomain.PlanBasic)
		require.NoError(t, err)

		tampered := token[:len(token)-4] + "AAAA"
		claims, err := issuer.Verify(tampered)

		assert.Nil(t, claims)
		assert.True(t, apperrors.Is(err, authDomain.ErrInvalidToken))
	})
}
