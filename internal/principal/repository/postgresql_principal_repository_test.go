package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/authgate/internal/errors"
	"github.com/allisson/authgate/internal/principal/domain"
)

func newMockDB(t *testing.T) (*PostgreSQLPrincipalRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewPostgreSQLPrincipalRepository(db), mock
}

func principalRows(p *domain.Principal) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "password", "role", "module", "state", "account_id", "created_at", "updated_at",
	}).AddRow(
		p.ID, p.Username, p.Password, string(p.Role), string(p.Module), string(p.State),
		p.AccountID, time.Now(), time.Now(),
	)
}

func TestPostgreSQLPrincipalRepository_Create(t *testing.T) {
	principal := &domain.Principal{
		ID:        uuid.Must(uuid.NewV7()),
		Username:  "alice",
		Password:  "argon2id-hash",
		Role:      domain.RoleUser,
		Module:    domain.ModuleGeneral,
		State:     domain.StateActive,
		AccountID: uuid.Must(uuid.NewV7()),
	}

	t.Run("Success_InsertPrincipal", func(t *testing.T) {
		repo, mock := newMockDB(t)

		mock.ExpectExec("INSERT INTO principals").
			WithArgs(
				principal.ID, principal.Username, principal.Password,
				principal.Role, principal.Module, principal.State, principal.AccountID,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Create(context.Background(), principal)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_DuplicateUsername", func(t *testing.T) {
		repo, mock := newMockDB(t)

		mock.ExpectExec("INSERT INTO principals").
			WillReturnError(&mockDuplicateError{})

		err := repo.Create(context.Background(), principal)

		assert.True(t, apperrors.Is(err, domain.ErrPrincipalAlreadyExists))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_DatabaseFailure", func(t *testing.T) {
		repo, mock := newMockDB(t)

		mock.ExpectExec("INSERT INTO principals").
			WillReturnError(assert.AnError)

		err := repo.Create(context.Background(), principal)

		assert.Error(t, err)
		assert.False(t, apperrors.Is(err, domain.ErrPrincipalAlreadyExists))
	})
}

// mockDuplicateError mimics lib/pq's unique violation message.
type mockDuplicateError struct{}

func (e *mockDuplicateError) Error() string {
	return `pq: duplicate key value violates unique constraint "principals_username_key"`
}

func TestPostgreSQLPrincipalRepository_GetByUsername(t *testing.T) {
	principal := &domain.Principal{
		ID:        uuid.Must(uuid.NewV7()),
		Username:  "alice",
		Password:  "argon2id-hash",
		Role:      domain.RoleAdmin,
		Module:    domain.ModuleMedical,
		State:     domain.StateActive,
		AccountID: uuid.Must(uuid.NewV7()),
	}

	t.Run("Success_FoundByUsername", func(t *testing.T) {
		repo, mock := newMockDB(t)

		mock.ExpectQuery("SELECT (.+) FROM principals WHERE username").
			WithArgs("alice").
			WillReturnRows(principalRows(principal))

		got, err := repo.GetByUsername(context.Background(), "alice")

		require.NoError(t, err)
		assert.Equal(t, principal.ID, got.ID)
		assert.Equal(t, domain.RoleAdmin, got.Role)
		assert.Equal(t, domain.ModuleMedical, got.Module)
		assert.Equal(t, domain.StateActive, got.State)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		repo, mock := newMockDB(t)

		mock.ExpectQuery("SELECT (.+) FROM principals WHERE username").
			WithArgs("nobody").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		got, err := repo.GetByUsername(context.Background(), "nobody")

		assert.Nil(t, got)
		assert.True(t, apperrors.Is(err, domain.ErrPrincipalNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgreSQLPrincipalRepository_GetByID(t *testing.T) {
	principal := &domain.Principal{
		ID:        uuid.Must(uuid.NewV7()),
		Username:  "bob",
		Password:  "argon2id-hash",
		Role:      domain.RoleUser,
		Module:    domain.ModuleGeneral,
		State:     domain.StateDisabled,
		AccountID: uuid.Must(uuid.NewV7()),
	}

	t.Run("Success_FoundByID", func(t *testing.T) {
		repo, mock := newMockDB(t)

		mock.ExpectQuery("SELECT (.+) FROM principals WHERE id").
			WithArgs(principal.ID).
			WillReturnRows(principalRows(principal))

		got, err := repo.GetByID(context.Background(), principal.ID)

		require.NoError(t, err)
		assert.Equal(t, "bob", got.Username)
		assert.False(t, got.Active())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		repo, mock := newMockDB(t)

		missing := uuid.Must(uuid.NewV7())
		mock.ExpectQuery("SELECT (.+) FROM principals WHERE id").
			WithArgs(missing).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		got, err := repo.GetByID(context.Background(), missing)

		assert.Nil(t, got)
		assert.True(t, apperrors.Is(err, domain.ErrPrincipalNotFound))
	})
}

func TestPostgreSQLPrincipalRepository_Accounts(t *testing.T) {
	account := &domain.Account{
		ID:   uuid.Must(uuid.NewV7()),
		Name: "acme",
		Plan: domain.PlanPremium,
	}

	t.Run("Success_CreateAccount", func(t *testing.T) {
		repo, mock := newMockDB(t)

		mock.ExpectExec("INSERT INTO accounts").
			WithArgs(account.ID, account.Name, account.Plan).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.CreateAccount(context.Background(), account)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success_GetAccountByID", func(t *testing.T) {
		repo, mock := newMockDB(t)

		rows := sqlmock.NewRows([]string{"id", "name", "plan", "created_at", "updated_at"}).
			AddRow(account.ID, account.Name, string(account.Plan), time.Now(), time.Now())
		mock.ExpectQuery("SELECT (.+) FROM accounts WHERE id").
			WithArgs(account.ID).
			WillReturnRows(rows)

		got, err := repo.GetAccountByID(context.Background(), account.ID)

		require.NoError(t, err)
		assert.Equal(t, domain.PlanPremium, got.Plan)
	})

	t.Run("Error_AccountNotFound", func(t *testing.T) {
		repo, mock := newMockDB(t)

		missing := uuid.Must(uuid.NewV7())
		mock.ExpectQuery("SELECT (.+) FROM accounts WHERE id").
			WithArgs(missing).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		got, err := repo.GetAccountByID(context.Background(), missing)

		assert.Nil(t, got)
		assert.True(t, apperrors.Is(err, domain.ErrAccountNotFound))
	})
}
