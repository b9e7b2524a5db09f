package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale is one seller's total for one calendar day. The composite unique index
// enforces at most one row per (seller, date) even under concurrent inserts.
type Sale struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_sales_uuid" json:"uuid"`

	SellerID uint    `gorm:"not null;index:idx_sales_seller_id;uniqueIndex:uk_sales_seller_date" json:"seller_id"`
	Seller   Account `gorm:"foreignKey:SellerID;references:ID;constraint:OnDelete:CASCADE" json:"seller,omitempty"`

	Date        time.Time       `gorm:"type:date;not null;index:idx_sales_date;uniqueIndex:uk_sales_seller_date" json:"date"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total_amount"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_sales_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	Commission *Commission `gorm:"foreignKey:SaleID" json:"commission,omitempty"`
}

func (Sale) TableName() string {
	return "sales"
}

// BeforeCreate ensures UUID is set
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.UUID == uuid.Nil {
		s.UUID = uuid.New()
	}
	return nil
}

// SaleFilter represents filter criteria for sale queries
type SaleFilter struct {
	ID         *uint
	UUID       *uuid.UUID
	SellerID   *uint
	Date       *time.Time
	Year       *int
	Month      *int
	Day        *int
	DateAfter  *time.Time
	DateBefore *time.Time
}
