package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/authgate/internal/auth/domain"
	apperrors "github.com/allisson/authgate/internal/errors"
)

func newMockTokenRepo(t *testing.T) (*PostgreSQLTokenRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewPostgreSQLTokenRepository(db), mock
}

// pqDuplicateError mimics lib/pq's unique violation message.
type pqDuplicateError struct{}

func (e *pqDuplicateError) Error() string {
	return `pq: duplicate key value violates unique constraint "tokens_token_key"`
}

func TestPostgreSQLTokenRepository_Create(t *testing.T) {
	record := &domain.TokenRecord{
		ID:          uuid.Must(uuid.NewV7()),
		Token:       "eyJhbGciOiJIUzI1NiJ9.test",
		Kind:        domain.TokenKindAccess,
		PrincipalID: uuid.Must(uuid.NewV7()),
	}

	t.Run("Success_RecordIssuance", func(t *testing.T) {
		repo, mock := newMockTokenRepo(t)

		mock.ExpectExec("INSERT INTO tokens").
			WithArgs(record.ID, record.Token, record.Kind, false, false, record.PrincipalID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(context.Background(), record)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_DuplicateTokenString", func(t *testing.T) {
		repo, mock := newMockTokenRepo(t)

		mock.ExpectExec("INSERT INTO tokens").
			WillReturnError(&pqDuplicateError{})

		err := repo.Create(context.Background(), record)

		assert.True(t, apperrors.Is(err, domain.ErrDuplicateToken))
		assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	})

	t.Run("Error_DatabaseFailure", func(t *testing.T) {
		repo, mock := newMockTokenRepo(t)

		mock.ExpectExec("INSERT INTO tokens").
			WillReturnError(assert.AnError)

		err := repo.Create(context.Background(), record)

		assert.Error(t, err)
		assert.False(t, apperrors.Is(err, domain.ErrDuplicateToken))
	})
}

func TestPostgreSQLTokenRepository_RevokeAllActiveForPrincipal(t *testing.T) {
	principalID := uuid.Must(uuid.NewV7())

	t.Run("Success_RevokesLiveRows", func(t *testing.T) {
		repo, mock := newMockTokenRepo(t)

		mock.ExpectExec("UPDATE tokens SET revoked = true, expired = true").
			WithArgs(principalID).
			WillReturnResult(sqlmock.NewResult(0, 2))

		err := repo.RevokeAllActiveForPrincipal(context.Background(), principalID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_NoLiveRowsIsNoOp", func(t *testing.T) {
		repo, mock := newMockTokenRepo(t)

		mock.ExpectExec("UPDATE tokens SET revoked = true, expired = true").
			WithArgs(principalID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.RevokeAllActiveForPrincipal(context.Background(), principalID)

		assert.NoError(t, err)
	})

	t.Run("Error_DatabaseFailure", func(t *testing.T) {
		repo, mock := newMockTokenRepo(t)

		mock.ExpectExec("UPDATE tokens SET revoked = true, expired = true").
			WillReturnError(assert.AnError)

		err := repo.RevokeAllActiveForPrincipal(context.Background(), principalID)

		assert.Error(t, err)
	})
}

func TestPostgreSQLTokenRepository_IsActive(t *testing.T) {
	t.Run("Success_LiveToken", func(t *testing.T) {
		repo, mock := newMockTokenRepo(t)

		mock.ExpectQuery("SELECT revoked, expired FROM tokens WHERE token").
			WithArgs("live-token").
			WillReturnRows(sqlmock.NewRows([]string{"revoked", "expired"}).AddRow(false, false))

		active, err := repo.IsActive(context.Background(), "live-token")

		require.NoError(t, err)
		assert.True(t, active)
	})

	t.Run("Success_RevokedToken", func(t *testing.T) {
		repo, mock := newMockTokenRepo(t)

		mock.ExpectQuery("SELECT revoked, expired FROM tokens WHERE token").
			WithArgs("revoked-token").
			WillReturnRows(sqlmock.NewRows([]string{"revoked", "expired"}).AddRow(true, true))

		active, err := repo.IsActive(context.Background(), "revoked-token")

		require.NoError(t, err)
		assert.False(t, active)
	})

	t.Run("Success_UnknownTokenIsInactiveNotError", func(t *testing.T) {
		repo, mock := newMockTokenRepo(t)

		mock.ExpectQuery("SELECT revoked, expired FROM tokens WHERE token").
			WithArgs("unknown-token").
			WillReturnRows(sqlmock.NewRows([]string{"revoked", "expired"}))

		active, err := repo.IsActive(context.Background(), "unknown-token")

		require.NoError(t, err)
		assert.False(t, active)
	})

	t.Run("Error_DatabaseFailureReportsInactive", func(t *testing.T) {
		repo, mock := newMockTokenRepo(t)

		mock.ExpectQuery("SELECT revoked, expired FROM tokens WHERE token").
			WillReturnError(assert.AnError)

		active, err := repo.IsActive(context.Background(), "any-token")

		assert.Error(t, err)
		assert.False(t, active)
	})
}

func TestPostgreSQLTokenRepository_GetByToken(t *testing.T) {
	t.Run("Success_Found", func(t *testing.T) {
		repo, mock := newMockTokenRepo(t)

		id := uuid.Must(uuid.NewV7())
		principalID := uuid.Must(uuid.NewV7())
		rows := sqlmock.NewRows([]string{"id", "token", "kind", "revoked", "expired", "principal_id", "created_at"}).
			AddRow(id, "stored-token", "refresh", false, false, principalID, time.Now())
		mock.ExpectQuery("SELECT (.+) FROM tokens WHERE token").
			WithArgs("stored-token").
			WillReturnRows(rows)

		record, err := repo.GetByToken(context.Background(), "stored-token")

		require.NoError(t, err)
		assert.Equal(t, domain.TokenKindRefresh, record.Kind)
		assert.True(t, record.Active())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		repo, mock := newMockTokenRepo(t)

		mock.ExpectQuery("SELECT (.+) FROM tokens WHERE token").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		record, err := repo.GetByToken(context.Background(), "missing")

		assert.Nil(t, record)
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	})
}
