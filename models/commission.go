package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Commission is the amount owed to a seller for a single sale. One row per
// sale; the percentage is captured from the seller's rate when the sale is
// first reconciled and is never rewritten afterwards, so historical rows stay
// audit-correct when the seller's rate changes.
type Commission struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_commissions_uuid" json:"uuid"`

	SellerID uint    `gorm:"not null;index:idx_commissions_seller_id" json:"seller_id"`
	Seller   Account `gorm:"foreignKey:SellerID;references:ID;constraint:OnDelete:CASCADE" json:"seller,omitempty"`

	SaleID uint `gorm:"not null;uniqueIndex:uk_commissions_sale_id" json:"sale_id"`
	Sale   Sale `gorm:"foreignKey:SaleID;references:ID;constraint:OnDelete:CASCADE" json:"sale,omitempty"`

	Percentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"percentage"`
	Value      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"value"`

	Paid   bool       `gorm:"not null;default:false;index:idx_commissions_paid" json:"paid"`
	PaidAt *time.Time `gorm:"index:idx_commissions_paid_at" json:"paid_at,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Commission) TableName() string {
	return "commissions"
}

// BeforeCreate ensures UUID is set
func (c *Commission) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	return nil
}

// CommissionValue computes round(amount × percentage / 100, 2) with
// half-up rounding. Deterministic: the stored Value column must always equal
// this for the row's own amount and percentage.
func CommissionValue(amount, percentage decimal.Decimal) decimal.Decimal {
	return amount.Mul(percentage).Div(decimal.NewFromInt(100)).Round(2)
}

// Recalculate refreshes Value from the given sale amount and the stored
// percentage.
func (c *Commission) Recalculate(saleAmount decimal.Decimal) {
	c.Value = CommissionValue(saleAmount, c.Percentage)
}

// ApplyPaidTransition moves the row between paid states. The transition is
// idempotent: re-marking an already-paid row keeps the original PaidAt.
func (c *Commission) ApplyPaidTransition(paid bool, now time.Time) {
	switch {
	case paid && c.PaidAt == nil:
		c.PaidAt = &now
	case !paid && c.PaidAt != nil:
		c.PaidAt = nil
	}
	c.Paid = paid
}

// CommissionFilter represents filter criteria for commission queries
type CommissionFilter struct {
	ID         *uint
	UUID       *uuid.UUID
	SellerID   *uint
	SaleID     *uint
	Paid       *bool
	PaidAfter  *time.Time
	PaidBefore *time.Time
}
