package dto

import "github.com/shopspring/decimal"

// CreateSaleRequest represents the payload for registering a daily sale.
// The seller is taken from the authenticated session, not from the payload.
type CreateSaleRequest struct {
	Date        string          `json:"date" validate:"required,datetime=2006-01-02" example:"2024-01-15"`
	TotalAmount decimal.Decimal `json:"total_amount" validate:"required" example:"200.00"`
}

// UpdateSaleRequest represents the payload for correcting a sale amount
type UpdateSaleRequest struct {
	TotalAmount decimal.Decimal `json:"total_amount" validate:"required" example:"250.00"`
}

// SaleDTO represents a sale in API responses
type SaleDTO struct {
	ID          uint           `json:"id" example:"31"`
	UUID        string         `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	SellerID    uint           `json:"seller_id" example:"7"`
	SellerName  string         `json:"seller_name,omitempty" example:"Maria Silva"`
	Date        string         `json:"date" example:"2024-01-15"`
	TotalAmount string         `json:"total_amount" example:"200.00"`
	Commission  *CommissionDTO `json:"commission,omitempty"`
	CreatedAt   string         `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// CommissionDTO represents the commission attached to a sale
type CommissionDTO struct {
	ID         uint    `json:"id" example:"12"`
	Percentage string  `json:"percentage" example:"5.00"`
	Value      string  `json:"value" example:"10.00"`
	Paid       bool    `json:"paid" example:"false"`
	PaidAt     *string `json:"paid_at,omitempty" example:"2024-02-05T12:00:00Z"`
}

// ListSalesRequest represents filter options for the sale listing
type ListSalesRequest struct {
	SellerID *uint `query:"seller_id"`
	Year     *int  `query:"year" validate:"omitempty,min=2000,max=2100"`
	Month    *int  `query:"month" validate:"omitempty,min=1,max=12"`
	Day      *int  `query:"day" validate:"omitempty,min=1,max=31"`
	Page     int   `query:"page" validate:"omitempty,min=1"`
	PageSize int   `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// ListSalesResponse represents the sale listing with filtered totals
type ListSalesResponse struct {
	Sales           []SaleDTO `json:"sales"`
	Total           int64     `json:"total" example:"120"`
	TotalAmount     string    `json:"total_amount" example:"3250.00"`
	TotalCommission string    `json:"total_commission" example:"162.50"`
}
