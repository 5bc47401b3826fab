// Package dto provides data transfer objects for the auth HTTP layer.
package dto

import (
	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	appValidation "github.com/allisson/authgate/internal/validation"
)

// LoginRequest represents the API request for credential login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate validates the LoginRequest. Only presence is checked here; the
// credential comparison happens in the use case and always fails generically.
func (r *LoginRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Username,
			validation.Required.Error("username is required"),
			appValidation.NotBlank,
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// RegisterRequest represents the API request for principal registration.
// AccountID, when present, attaches the principal to an existing account.
type RegisterRequest struct {
	Username    string     `json:"username"`
	Password    string     `json:"password"`
	Role        string     `json:"role"`
	Module      string     `json:"module"`
	AccountID   *uuid.UUID `json:"account_id"`
	AccountName string     `json:"account_name"`
	Plan        string     `json:"plan"`
}

// Validate validates the RegisterRequest using the jellydator/validation library.
// Field-shape checks only; enum membership and password strength are enforced
// again by the use case.
func (r *RegisterRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Username,
			validation.Required.Error("username is required"),
			appValidation.NotBlank,
			appValidation.Username,
			validation.Length(3, 255).Error("username must be between 3 and 255 characters"),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
		),
		validation.Field(&r.AccountName,
			validation.Length(0, 255).Error("account_name must be at most 255 characters"),
		),
	)
	return appValidation.WrapValidationError(err)
}
