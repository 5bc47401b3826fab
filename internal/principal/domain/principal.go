// Package domain defines the principal and account domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/authgate/internal/errors"
)

// Role is the coarse authorization role carried in token claims.
type Role string

// Supported roles.
const (
	RoleUser      Role = "USER"
	RoleAdmin     Role = "ADMIN"
	RoleModerator Role = "MODERATOR"
)

// IsValid returns true when the role is one of the supported values.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleModerator:
		return true
	}
	return false
}

// Module identifies the service area a principal is scoped to. Some routes
// are gated on module membership in addition to role.
type Module string

// Supported modules.
const (
	ModuleGeneral Module = "GENERAL"
	ModuleMedical Module = "MEDICAL"
	ModuleFinance Module = "FINANCE"
)

// IsValid returns true when the module is one of the supported values.
func (m Module) IsValid() bool {
	switch m {
	case ModuleGeneral, ModuleMedical, ModuleFinance:
		return true
	}
	return false
}

// State controls whether a principal may authenticate.
type State string

// Supported states.
const (
	StateActive   State = "ACTIVE"
	StateDisabled State = "DISABLED"
)

// Plan is the subscription tier of the owning account.
type Plan string

// Supported plans.
const (
	PlanBasic    Plan = "BASIC"
	PlanStandard Plan = "STANDARD"
	PlanPremium  Plan = "PREMIUM"
)

// IsValid returns true when the plan is one of the supported values.
func (p Plan) IsValid() bool {
	switch p {
	case PlanBasic, PlanStandard, PlanPremium:
		return true
	}
	return false
}

// Account groups principals under a single subscription.
type Account struct {
	ID        uuid.UUID
	Name      string
	Plan      Plan
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Principal is an authenticatable identity. Password holds the Argon2id
// encoded hash, never the plaintext.
type Principal struct {
	ID        uuid.UUID
	Username  string
	Password  string
	Role      Role
	Module    Module
	State     State
	AccountID uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active returns true when the principal may authenticate.
func (p *Principal) Active() bool {
	return p.State == StateActive
}

// Domain-specific errors for principal operations.
var (
	// ErrPrincipalNotFound indicates the requested principal does not exist.
	ErrPrincipalNotFound = errors.Wrap(errors.ErrUnauthorized, "principal not found")

	// ErrPrincipalAlreadyExists indicates a principal with the same username already exists.
	ErrPrincipalAlreadyExists = errors.Wrap(errors.ErrConflict, "principal already exists")

	// ErrPrincipalDisabled indicates the principal is not allowed to authenticate.
	ErrPrincipalDisabled = errors.Wrap(errors.ErrForbidden, "principal is disabled")

	// ErrAccountNotFound indicates the referenced account does not exist.
	ErrAccountNotFound = errors.Wrap(errors.ErrNotFound, "account not found")
)
