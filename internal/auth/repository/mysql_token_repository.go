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

// MySQLTokenRepository handles token ledger persistence for MySQL
type MySQLTokenRepository struct {
	db *sql.DB
}

// NewMySQLTokenRepository creates a new MySQLTokenRepository
func NewMySQLTokenRepository(db *sql.DB) *MySQLTokenRepository {
	return &MySQLTokenRepository{
		db: db,
	}
}

// Create records a newly issued token
func (r *MySQLTokenRepository) Create(ctx context.Context, record *domain.TokenRecord) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO tokens (id, token, kind, revoked, expired, principal_id, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, NOW())`

	// Convert UUIDs to bytes for MySQL BINARY(16)
	idBytes, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}
	principalIDBytes, err := record.PrincipalID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal principal UUID")
	}

	_, err = querier.ExecContext(ctx, query,
		idBytes, record.Token, record.Kind, record.Revoked, record.Expired, principalIDBytes,
	)
	if err != nil {
		// Check for unique constraint violation (duplicate token string)
		if isMySQLUniqueViolation(err) {
			return domain.ErrDuplicateToken
		}
		return apperrors.Wrap(err, "failed to create token record")
	}
	return nil
}

// RevokeAllActiveForPrincipal invalidates every live token for the principal.
// A single UPDATE keeps each row transition atomic; running it again is a no-op.
func (r *MySQLTokenRepository) RevokeAllActiveForPrincipal(ctx context.Context, principalID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE tokens SET revoked = true, expired = true
			  WHERE principal_id = ? AND revoked = false`

	principalIDBytes, err := principalID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal principal UUID")
	}

	_, err = querier.ExecContext(ctx, query, principalIDBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke tokens for principal")
	}
	return nil
}

// IsActive reports whether the token string maps to a live ledger row.
// An unknown token is simply inactive, not an error.
func (r *MySQLTokenRepository) IsActive(ctx context.Context, token string) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT revoked, expired FROM tokens WHERE token = ?`

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
func (r *MySQLTokenRepository) GetByToken(ctx context.Context, token string) (*domain.TokenRecord, error) {
	var record domain.TokenRecord
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, token, kind, revoked, expired, principal_id, created_at
			  FROM tokens WHERE token = ?`

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

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}
