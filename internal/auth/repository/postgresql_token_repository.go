// Package repository provides data persistence implementations for the token ledger.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/authgate/internal/auth/domain"
	"github.com/allisson/authgate/internal/database"

	apperrors "github.com/allisson/authgate/internal/errors"
)

// PostgreSQLTokenRepository handles token ledger persistence for PostgreSQL
type PostgreSQLTokenRepository struct {
	db *sql.DB
}

// NewPostgreSQLTokenRepository creates a new PostgreSQLTokenRepository
func NewPostgreSQLTokenRepository(db *sql.DB) *PostgreSQLTokenRepository {
	return &PostgreSQLTokenRepository{
		db: db,
	}
}

// Create records a newly issued token
func (r *PostgreSQLTokenRepository) Create(ctx context.Context, record *domain.TokenRecord) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO tokens (id, token, kind, revoked, expired, principal_id, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NOW())`

	_, err := querier.ExecContext(ctx, query,
		record.ID, record.Token, record.Kind, record.Revoked, record.Expired, record.PrincipalID,
	)
	if err != nil {
		// Check for unique constraint violation (duplicate token string)
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrDuplicateToken
		}
		return apperrors.Wrap(err, "failed to create token record")
	}
	return nil
}

// RevokeAllActiveForPrincipal invalidates every live token for the principal.
// A single UPDATE keeps each row transition atomic; running it again is a no-op.
func (r *PostgreSQLTokenRepository) RevokeAllActiveForPrincipal(ctx context.Context, principalID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE tokens SET revoked = true, expired = true
			  WHERE principal_id = $1 AND revoked = false`

	_, err := querier.ExecContext(ctx, query, principalID)
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke tokens for principal")
	}
	return nil
}

// IsActive reports whether the token string maps to a live ledger row.
// An unknown token is simply inactive, not an error.
func (r *PostgreSQLTokenRepository) IsActive(ctx context.Context, token string) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT revoked, expired FROM tokens WHERE token = $1`

	var revoked, expired bool
	err := querier.QueryRowContext(ctx, query, token).Scan(&revoked, &expired)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, apperrors.Wrap(err, "failed to check token status")
	}

	return !revoked && !expired, nil
}

// GetByToken retrieves a ledger row by its token string
func (r *PostgreSQLTokenRepository) GetByToken(ctx context.Context, token string) (*domain.TokenRecord, error) {
	var record domain.TokenRecord
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, token, kind, revoked, expired, principal_id, created_at
			  FROM tokens WHERE token = $1`

	err := querier.QueryRowContext(ctx, query, token).Scan(
		&record.ID, &record.Token, &record.Kind, &record.Revoked, &record.Expired,
		&record.PrincipalID, &record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Wrap(apperrors.ErrNotFound, "token record not found")
		}
		return nil, apperrors.Wrap(err, "failed to get token record")
	}

	return &record, nil
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
