// Package dto contains Data Transfer Objects for API request and response structures
package dto

// LoginRequest represents the request payload for user login
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,min=3,max=255" example:"maria@lojista.com.br or 52998224725"`
	Password   string `json:"password" validate:"required,min=8,max=100" example:"SecurePass123!"`
}

// AuthAccountDTO represents account information returned in authentication responses
type AuthAccountDTO struct {
	ID             uint    `json:"id" example:"123"`
	UUID           string  `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Email          *string `json:"email,omitempty" example:"maria@lojista.com.br"`
	CPF            *string `json:"cpf,omitempty" example:"52998224725"`
	FirstName      string  `json:"first_name" example:"Maria"`
	LastName       string  `json:"last_name" example:"Silva"`
	Role           string  `json:"role" example:"seller"`
	IsActive       *bool   `json:"is_active" example:"true"`
	CommissionRate *string `json:"commission_rate,omitempty" example:"5.00"`
	CreatedAt      string  `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// AccountSessionDTO represents session tokens returned after authentication
type AccountSessionDTO struct {
	SessionToken string  `json:"access_token"`
	RefreshToken *string `json:"refresh_token,omitempty"`
	ExpiresIn    int     `json:"expires_in" example:"86400"`
	TokenType    string  `json:"token_type" example:"Bearer"`
	CreatedAt    string  `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// LoginResponse represents the successful login response
type LoginResponse struct {
	Account    AuthAccountDTO    `json:"account"`
	Session    AccountSessionDTO `json:"session"`
	RedirectTo string            `json:"redirect_to" example:"/dashboard/seller"`
}

// LogoutResponse represents the response after a session is terminated
type LogoutResponse struct {
	LoggedOut bool `json:"logged_out" example:"true"`
}

// RefreshTokenRequest represents the request to rotate tokens
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Common error codes for authentication operations
const (
	ErrorAccountNotFound   = "ACCOUNT_NOT_FOUND"
	ErrorIncorrectPassword = "INCORRECT_PASSWORD"
	ErrorAccountInactive   = "ACCOUNT_INACTIVE"
	ErrorTokenInvalid      = "TOKEN_INVALID"
)
