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

// MySQLPrincipalRepository handles principal persistence for MySQL
type MySQLPrincipalRepository struct {
	db *sql.DB
}

// NewMySQLPrincipalRepository creates a new MySQLPrincipalRepository
func NewMySQLPrincipalRepository(db *sql.DB) *MySQLPrincipalRepository {
	return &MySQLPrincipalRepository{
		db: db,
	}
}

// Create inserts a new principal
func (r *MySQLPrincipalRepository) Create(ctx context.Context, principal *domain.Principal) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO principals (id, username, password, role, module, state, account_id, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`

	// Convert UUIDs to bytes for MySQL BINARY(16)
	idBytes, err := principal.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	accountIDBytes, err := principal.AccountID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal account UUID")
	}

	_, err = querier.ExecContext(ctx, query,
		idBytes, principal.Username, principal.Password,
		principal.Role, principal.Module, principal.State, accountIDBytes,
	)
	if err != nil {
		// Check for unique constraint violation (duplicate username)
		if isMySQLUniqueViolation(err) {
			return domain.ErrPrincipalAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create principal")
	}
	return nil
}

// GetByID retrieves a principal by ID
func (r *MySQLPrincipalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Principal, error) {
	var principal domain.Principal
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, username, password, role, module, state, account_id, created_at, updated_at
			  FROM principals WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	err = querier.QueryRowContext(ctx, query, idBytes).Scan(
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
func (r *MySQLPrincipalRepository) GetByUsername(ctx context.Context, username string) (*domain.Principal, error) {
	var principal domain.Principal
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, username, password, role, module, state, account_id, created_at, updated_at
			  FROM principals WHERE username = ?`

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
func (r *MySQLPrincipalRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO accounts (id, name, plan, created_at, updated_at)
			  VALUES (?, ?, ?, NOW(), NOW())`

	idBytes, err := account.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	_, err = querier.ExecContext(ctx, query, idBytes, account.Name, account.Plan)
	if err != nil {
		return apperrors.Wrap(err, "failed to create account")
	}
	return nil
}

// GetAccountByID retrieves an account by ID
func (r *MySQLPrincipalRepository) GetAccountByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	var account domain.Account
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, plan, created_at, updated_at
			  FROM accounts WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	err = querier.QueryRowContext(ctx, query, idBytes).Scan(
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

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}
