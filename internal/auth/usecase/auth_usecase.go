package usecase

import (
	"context"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	authDomain "github.com/allisson/authgate/internal/auth/domain"
	authService "github.com/allisson/authgate/internal/auth/service"
	"github.com/allisson/authgate/internal/database"
	principalDomain "github.com/allisson/authgate/internal/principal/domain"

	apperrors "github.com/allisson/authgate/internal/errors"
	outboxDomain "github.com/allisson/authgate/internal/outbox/domain"
	appValidation "github.com/allisson/authgate/internal/validation"
)

// bearerPrefix is the expected Authorization scheme for refresh requests.
const bearerPrefix = "Bearer "

// AuthUseCase handles authentication business logic: credential checks,
// registration, and the revoke-then-issue token rotation that backs login
// and refresh.
type AuthUseCase struct {
	txManager         database.TxManager
	principalRepo     PrincipalRepository
	tokenRepo         TokenRepository
	outboxRepo        OutboxEventRepository
	tokenIssuer       authService.TokenIssuer
	credentialService authService.CredentialService
}

// NewAuthUseCase creates a new AuthUseCase
func NewAuthUseCase(
	txManager database.TxManager,
	principalRepo PrincipalRepository,
	tokenRepo TokenRepository,
	outboxRepo OutboxEventRepository,
	tokenIssuer authService.TokenIssuer,
	credentialService authService.CredentialService,
) UseCase {
	return &AuthUseCase{
		txManager:         txManager,
		principalRepo:     principalRepo,
		tokenRepo:         tokenRepo,
		outboxRepo:        outboxRepo,
		tokenIssuer:       tokenIssuer,
		credentialService: credentialService,
	}
}

// Login authenticates the credentials and rotates the principal's tokens.
//
// Security notes:
//   - Unknown usernames and wrong passwords both return ErrInvalidCredentials
//     to prevent user enumeration.
//   - A disabled principal is reported separately (403) because the caller
//     proved knowledge of valid credentials.
//   - The revoke-all and the recording of the fresh pair run in one
//     transaction, so a crash can never leave the ledger half rotated.
func (uc *AuthUseCase) Login(ctx context.Context, input LoginInput) (*authDomain.TokenPair, error) {
	principal, err := uc.principalRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if apperrors.Is(err, principalDomain.ErrPrincipalNotFound) {
			return nil, authDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !uc.credentialService.ComparePassword(input.Password, principal.Password) {
		return nil, authDomain.ErrInvalidCredentials
	}

	if !principal.Active() {
		return nil, principalDomain.ErrPrincipalDisabled
	}

	return uc.rotate(ctx, principal)
}

// Register provisions a principal and issues its initial token pair.
// Account creation, principal creation, the outbox event and the token
// records all commit in one transaction.
func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*authDomain.TokenPair, error) {
	if err := uc.validateRegisterInput(input); err != nil {
		return nil, err
	}

	hashedPassword, err := uc.credentialService.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	role := principalDomain.Role(input.Role)
	if input.Role == "" {
		role = principalDomain.RoleUser
	}
	module := principalDomain.Module(input.Module)
	if input.Module == "" {
		module = principalDomain.ModuleGeneral
	}
	plan := principalDomain.Plan(input.Plan)
	if input.Plan == "" {
		plan = principalDomain.PlanBasic
	}

	principal := &principalDomain.Principal{
		ID:       uuid.Must(uuid.NewV7()),
		Username: strings.TrimSpace(input.Username),
		Password: hashedPassword,
		Role:     role,
		Module:   module,
		State:    principalDomain.StateActive,
	}

	var pair *authDomain.TokenPair
	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		accountPlan, err := uc.resolveAccount(ctx, principal, input, plan)
		if err != nil {
			return err
		}

		if err := uc.principalRepo.Create(ctx, principal); err != nil {
			return err
		}

		event, err := outboxDomain.NewPrincipalCreatedEvent(principal, accountPlan)
		if err != nil {
			return err
		}
		if err := uc.outboxRepo.Create(ctx, event); err != nil {
			return apperrors.Wrap(err, "failed to create outbox event")
		}

		pair, err = uc.issueAndRecord(ctx, principal, accountPlan)
		return err
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}

// Refresh rotates the token pair presented as an Authorization header value.
// The token is verified locally (signature + expiry); the ledger is not
// consulted for the presented token, revocation takes effect through the
// revoke-all that precedes the new issuance.
func (uc *AuthUseCase) Refresh(ctx context.Context, bearerValue string) (*authDomain.TokenPair, error) {
	if !strings.HasPrefix(bearerValue, bearerPrefix) {
		return nil, authDomain.ErrMalformedToken
	}
	token := strings.TrimPrefix(bearerValue, bearerPrefix)

	claims, err := uc.tokenIssuer.Verify(token)
	if err != nil {
		return nil, err
	}

	principal, err := uc.principalRepo.GetByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	if !principal.Active() {
		return nil, principalDomain.ErrPrincipalDisabled
	}

	return uc.rotate(ctx, principal)
}

// CheckToken reports whether the token is live in the ledger. Errors read as
// inactive at the gateway, so this only distinguishes "known live" from
// everything else.
func (uc *AuthUseCase) CheckToken(ctx context.Context, token string) (bool, error) {
	return uc.tokenRepo.IsActive(ctx, token)
}

// rotate revokes every live token for the principal and issues a fresh pair,
// all inside one transaction. Concurrent rotations for the same principal
// serialize on the ledger rows.
func (uc *AuthUseCase) rotate(ctx context.Context, principal *principalDomain.Principal) (*authDomain.TokenPair, error) {
	account, err := uc.principalRepo.GetAccountByID(ctx, principal.AccountID)
	if err != nil {
		return nil, err
	}

	var pair *authDomain.TokenPair
	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.tokenRepo.RevokeAllActiveForPrincipal(ctx, principal.ID); err != nil {
			return err
		}

		pair, err = uc.issueAndRecord(ctx, principal, account.Plan)
		return err
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}

// issueAndRecord signs an access/refresh pair and appends both rows to the
// ledger. A token-string collision means the signer misbehaved; it is
// reported as an internal fault, never as a client conflict.
func (uc *AuthUseCase) issueAndRecord(
	ctx context.Context,
	principal *principalDomain.Principal,
	plan principalDomain.Plan,
) (*authDomain.TokenPair, error) {
	accessToken, err := uc.tokenIssuer.IssueAccessToken(principal, plan)
	if err != nil {
		return nil, err
	}
	refreshToken, err := uc.tokenIssuer.IssueRefreshToken(principal, plan)
	if err != nil {
		return nil, err
	}

	records := []*authDomain.TokenRecord{
		{
			ID:          uuid.Must(uuid.NewV7()),
			Token:       accessToken,
			Kind:        authDomain.TokenKindAccess,
			PrincipalID: principal.ID,
		},
		{
			ID:          uuid.Must(uuid.NewV7()),
			Token:       refreshToken,
			Kind:        authDomain.TokenKindRefresh,
			PrincipalID: principal.ID,
		},
	}

	for _, record := range records {
		if err := uc.tokenRepo.Create(ctx, record); err != nil {
			if apperrors.Is(err, authDomain.ErrDuplicateToken) {
				return nil, apperrors.Wrap(apperrors.ErrInternal, "token string collision during issuance")
			}
			return nil, err
		}
	}

	return &authDomain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// resolveAccount attaches the principal to an existing account or provisions
// a fresh one, returning the plan that goes into the token claims.
func (uc *AuthUseCase) resolveAccount(
	ctx context.Context,
	principal *principalDomain.Principal,
	input RegisterInput,
	plan principalDomain.Plan,
) (principalDomain.Plan, error) {
	if input.AccountID != nil {
		account, err := uc.principalRepo.GetAccountByID(ctx, *input.AccountID)
		if err != nil {
			return "", err
		}
		principal.AccountID = account.ID
		return account.Plan, nil
	}

	accountName := strings.TrimSpace(input.AccountName)
	if accountName == "" {
		accountName = principal.Username
	}

	account := &principalDomain.Account{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      accountName,
		Plan:      plan,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.principalRepo.CreateAccount(ctx, account); err != nil {
		return "", err
	}

	principal.AccountID = account.ID
	return account.Plan, nil
}

// validateRegisterInput validates the registration input using jellydator/validation.
// Covers username shape, password strength, and enum membership for the
// optional role/module/plan fields.
func (uc *AuthUseCase) validateRegisterInput(input RegisterInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Username,
			validation.Required.Error("username is required"),
			appValidation.NotBlank,
			appValidation.Username,
			validation.Length(3, 255).Error("username must be between 3 and 255 characters"),
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
			appValidation.PasswordStrength{
				MinLength:      8,
				RequireUpper:   true,
				RequireLower:   true,
				RequireNumber:  true,
				RequireSpecial: true,
			},
		),
		validation.Field(&input.Role,
			validation.In("", "USER", "ADMIN", "MODERATOR").Error("role must be USER, ADMIN or MODERATOR"),
		),
		validation.Field(&input.Module,
			validation.In("", "GENERAL", "MEDICAL", "FINANCE").Error("module must be GENERAL, MEDICAL or FINANCE"),
		),
		validation.Field(&input.Plan,
			validation.In("", "BASIC", "STANDARD", "PREMIUM").Error("plan must be BASIC, STANDARD or PREMIUM"),
		),
	)
	return appValidation.WrapValidationError(err)
}
