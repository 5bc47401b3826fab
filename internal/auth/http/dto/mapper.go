// Package dto provides data transfer objects for the auth HTTP layer.
package dto

import (
	authDomain "github.com/allisson/authgate/internal/auth/domain"
	"github.com/allisson/authgate/internal/auth/usecase"
)

// ToLoginInput converts a LoginRequest DTO to a LoginInput use case input
func ToLoginInput(req LoginRequest) usecase.LoginInput {
	return usecase.LoginInput{
		Username: req.Username,
		Password: req.Password,
	}
}

// ToRegisterInput converts a RegisterRequest DTO to a RegisterInput use case input
func ToRegisterInput(req RegisterRequest) usecase.RegisterInput {
	return usecase.RegisterInput{
		Username:    req.Username,
		Password:    req.Password,
		Role:        req.Role,
		Module:      req.Module,
		AccountID:   req.AccountID,
		AccountName: req.AccountName,
		Plan:        req.Plan,
	}
}

// ToTokenPairResponse converts a domain TokenPair to its API representation
func ToTokenPairResponse(pair *authDomain.TokenPair) TokenPairResponse {
	return TokenPairResponse{
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}
}
