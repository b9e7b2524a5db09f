package dto

import "github.com/shopspring/decimal"

// CreateSellerRequest represents the payload for registering a new seller
type CreateSellerRequest struct {
	FirstName      string           `json:"first_name" validate:"required,min=2,max=30" example:"Maria"`
	LastName       string           `json:"last_name" validate:"required,min=2,max=30" example:"Silva"`
	CPF            string           `json:"cpf" validate:"required,min=11,max=14" example:"529.982.247-25"`
	Email          *string          `json:"email,omitempty" validate:"omitempty,email,max=255" example:"maria@lojista.com.br"`
	Password       string           `json:"password" validate:"required,min=8,max=100" example:"SecurePass123!"`
	CommissionRate *decimal.Decimal `json:"commission_rate,omitempty" example:"5.00"`
}

// UpdateSellerRequest represents the payload for updating a seller. Nil
// fields are left untouched.
type UpdateSellerRequest struct {
	FirstName      *string          `json:"first_name,omitempty" validate:"omitempty,min=2,max=30"`
	LastName       *string          `json:"last_name,omitempty" validate:"omitempty,min=2,max=30"`
	Email          *string          `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Password       *string          `json:"password,omitempty" validate:"omitempty,min=8,max=100"`
	CommissionRate *decimal.Decimal `json:"commission_rate,omitempty"`
}

// SellerDTO represents a seller in API responses
type SellerDTO struct {
	ID             uint    `json:"id" example:"7"`
	UUID           string  `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	FirstName      string  `json:"first_name" example:"Maria"`
	LastName       string  `json:"last_name" example:"Silva"`
	FullName       string  `json:"full_name" example:"Maria Silva"`
	CPF            *string `json:"cpf,omitempty" example:"52998224725"`
	Email          *string `json:"email,omitempty" example:"maria@lojista.com.br"`
	IsActive       *bool   `json:"is_active" example:"true"`
	CommissionRate *string `json:"commission_rate,omitempty" example:"5.00"`
	CreatedAt      string  `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// ListSellersResponse represents the seller listing
type ListSellersResponse struct {
	Sellers []SellerDTO `json:"sellers"`
	Total   int64       `json:"total" example:"42"`
}

// ToggleSellerStatusResponse reports the new activation state of a seller
type ToggleSellerStatusResponse struct {
	SellerID uint `json:"seller_id" example:"7"`
	IsActive bool `json:"is_active" example:"false"`
}
