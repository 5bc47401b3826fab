// Package repository provides data persistence implementations for principal and account entities.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/authgate/internal/database"
	"github.com/allisson/authgate/internal/principal/domain"

	apperrors "github.com/allisson/authgate/internal/errors"
)

// PostgreSQLPrincipalRepository handles principal persistence for PostgreSQL
type PostgreSQLPrincipalRepository struct {
	db *sql.DB
}

// NewPostgreSQLPrincipalRepository creates a new PostgreSQLPrincipalRepository
func NewPostgreSQLPrincipalRepository(db *sql.DB) *PostgreSQLPrincipalRepository {
	return &PostgreSQLPrincipalRepository{
		db: db,
	}
}

// Create inserts a new principal
func (r *PostgreSQLPrincipalRepository) Create(ctx context.Context, principal *domain.Principal) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO principals (id, username, password, role, module, state, account_id, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query,
		principal.ID, principal.Username, principal.Password,
		principal.Role, principal.Module, principal.State, principal.AccountID,
	)
	if err != nil {
		// Check for unique constraint violation (duplicate username)
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrPrincipalAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create principal")
	}
	return nil
}

// GetByID retrieves a principal by ID
func (r *PostgreSQLPrincipalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Principal, error) {
	var principal domain.Principal
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, username, password, role, module, state, account_id, created_at, updated_at
			  FROM principals WHERE id = $1`

	err := querier.QueryRowContext(ctx, query, id).Scan(
		&principal.ID, &principal.Username, &principal.Password,
		&principal.Role, &principal.Module, &principal.State, &principal.AccountID,
		&principal.CreatedAt, &principal.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get principal by id")
	}

	return &principal, nil
}

// GetByUsername retrieves a principal by username
func (r *PostgreSQLPrincipalRepository) GetByUsername(ctx context.Context, username string) (*domain.Principal, error) {
	var principal domain.Principal
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, username, password, role, module, state, account_id, created_at, updated_at
			  FROM principals WHERE username = $1`

	err := querier.QueryRowContext(ctx, query, username).Scan(
		&principal.ID, &principal.Username, &principal.Password,
		&principal.Role, &principal.Module, &principal.State, &principal.AccountID,
		&principal.CreatedAt, &principal.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPrincipalNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get principal by username")
	}

	return &principal, nil
}

// CreateAccount inserts a new account
func (r *PostgreSQLPrincipalRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO accounts (id, name, plan, created_at, updated_at)
			  VALUES ($1, $2, $3, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query, account.ID, account.Name, account.Plan)
	if err != nil {
		return apperrors.Wrap(err, "failed to create account")
	}
	return nil
}

// GetAccountByID retrieves an account by ID
func (r *PostgreSQLPrincipalRepository) GetAccountByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var account domain.Account
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, plan, created_at, updated_at
			  FROM accounts WHERE id = $1`

	err := querier.QueryRowContext(ctx, query, id).Scan(
		&account.ID, &account.Name, &account.Plan, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get account by id")
	}

	return &account, nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" or "pq: duplicate key"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}
