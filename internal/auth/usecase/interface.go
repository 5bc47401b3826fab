// Package usecase implements business logic orchestration for authentication operations.
package usecase

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
	outboxDomain "github.com/allisson/authgate/internal/outbox/domain"
	principalDomain "github.com/allisson/authgate/internal/principal/domain"
)

// LoginInput contains the credentials presented at login
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterInput contains the data for registering a new principal. AccountID,
// when set, attaches the principal to an existing account instead of
// provisioning one.
type RegisterInput struct {
	Username    string     `json:"username"`
	Password    string     `json:"password"`
	Role        string     `json:"role"`
	Module      string     `json:"module"`
	AccountID   *uuid.UUID `json:"account_id"`
	AccountName string     `json:"account_name"`
	Plan        string     `json:"plan"`
}

// UseCase defines the interface for authentication business logic operations
type UseCase interface {
	// Login authenticates the credentials, revokes every live token for the
	// principal and issues a fresh access/refresh pair.
	Login(ctx context.Context, input LoginInput) (*authDomain.TokenPair, error)

	// Register provisions a principal (and optionally an account), emits a
	// principal.created outbox event and issues the initial token pair.
	Register(ctx context.Context, input RegisterInput) (*authDomain.TokenPair, error)

	// Refresh rotates the token pair presented in an Authorization header
	// value ("Bearer <refresh token>").
	Refresh(ctx context.Context, bearerValue string) (*authDomain.TokenPair, error)

	// CheckToken reports whether the token string is live in the ledger.
	CheckToken(ctx context.Context, token string) (bool, error)
}

// PrincipalRepository defines principal repository operations
type PrincipalRepository interface {
	Create(ctx context.Context, principal *principalDomain.Principal) error
	GetByID(ctx context.Context, id uuid.UUID) (*principalDomain.Principal, error)
	GetByUsername(ctx context.Context, username string) (*principalDomain.Principal, error)
	CreateAccount(ctx context.Context, account *principalDomain.Account) error
	GetAccountByID(ctx context.Context, id uuid.UUID) (*principalDomain.Account, error)
}

// TokenRepository defines token ledger operations
type TokenRepository interface {
	Create(ctx context.Context, record *authDomain.TokenRecord) error
	RevokeAllActiveForPrincipal(ctx context.Context, principalID uuid.UUID) error
	IsActive(ctx context.Context, token string) (bool, error)
}

// OutboxEventRepository defines outbox event repository operations
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}
