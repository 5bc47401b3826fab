// Package dto provides data transfer objects for the auth HTTP layer.
package dto

// TokenPairResponse represents the API response carrying a freshly issued
// access/refresh pair.
type TokenPairResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}
