package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/authgate/internal/auth/domain"
	"github.com/allisson/authgate/internal/testutil"
)

// Ledger round trip against a live database. Skipped when the test database
// is not running.
func TestPostgreSQLTokenRepository_Integration(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLTokenRepository(db)
	ctx := context.Background()

	accountID := testutil.CreateTestAccount(t, db, "postgres", "integration-account")
	principalID := testutil.CreateTestPrincipal(t, db, "postgres", accountID, "integration-user")

	record := &domain.TokenRecord{
		ID:          uuid.Must(uuid.NewV7()),
		Token:       "integration-token",
		Kind:        domain.TokenKindAccess,
		PrincipalID: principalID,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, record))

	active, err := repo.IsActive(ctx, record.Token)
	require.NoError(t, err)
	assert.True(t, active)

	// Duplicate token strings are rejected by the unique constraint.
	duplicate := &domain.TokenRecord{
		ID:          uuid.Must(uuid.NewV7()),
		Token:       record.Token,
		Kind:        domain.TokenKindRefresh,
		PrincipalID: principalID,
		CreatedAt:   time.Now().UTC(),
	}
	err = repo.Create(ctx, duplicate)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateToken)

	require.NoError(t, repo.RevokeAllActiveForPrincipal(ctx, principalID))

	active, err = repo.IsActive(ctx, record.Token)
	require.NoError(t, err)
	assert.False(t, active)

	stored, err := repo.GetByToken(ctx, record.Token)
	require.NoError(t, err)
	assert.True(t, stored.Revoked)
	assert.True(t, stored.Expired)
}

func TestMySQLTokenRepository_Integration(t *testing.T) {
	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLTokenRepository(db)
	ctx := context.Background()

	accountID := testutil.CreateTestAccount(t, db, "mysql", "integration-account")
	principalID := testutil.CreateTestPrincipal(t, db, "mysql", accountID, "integration-user")

	record := &domain.TokenRecord{
		ID:          uuid.Must(uuid.NewV7()),
		Token:       "integration-token",
		Kind:        domain.TokenKindAccess,
		PrincipalID: principalID,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, record))

	active, err := repo.IsActive(ctx, record.Token)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, repo.RevokeAllActiveForPrincipal(ctx, principalID))

	active, err = repo.IsActive(ctx, record.Token)
	require.NoError(t, err)
	assert.False(t, active)
}
