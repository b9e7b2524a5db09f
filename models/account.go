// Package models contains domain entities and business models for the sales administration system
package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

var nonDigits = regexp.MustCompile(`\D`)

type Account struct {
	ID   uint      `gorm:"primaryKey" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_accounts_uuid" json:"uuid"`

	// Identity: at least one of CPF/email must be present
	CPF   *string `gorm:"size:14;uniqueIndex:uk_accounts_cpf" json:"cpf,omitempty"`
	Email *string `gorm:"size:255;uniqueIndex:uk_accounts_email" json:"email,omitempty"`

	FirstName    string `gorm:"size:30" json:"first_name"`
	LastName     string `gorm:"size:30" json:"last_name"`
	PasswordHash string `gorm:"size:255;not null" json:"-"` // Never serialize password hash

	Role     Role  `gorm:"type:varchar(20);not null;default:'seller';index:idx_accounts_role" json:"role"`
	IsActive *bool `gorm:"default:true;index:idx_accounts_is_active" json:"is_active"`

	// Commission percentage over the seller's sales; null for non-seller roles
	CommissionRate *decimal.Decimal `gorm:"type:decimal(5,2)" json:"commission_rate,omitempty"`

	CreatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_accounts_created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	// Relations
	Sales       []Sale           `gorm:"foreignKey:SellerID" json:"-"`
	Commissions []Commission     `gorm:"foreignKey:SellerID" json:"-"`
	Sessions    []AccountSession `gorm:"foreignKey:AccountID" json:"-"`
	AuditLogs   []AuditLog       `gorm:"foreignKey:AccountID" json:"-"`
}

func (Account) TableName() string {
	return "accounts"
}

// BeforeSave normalizes the CPF to digits only, mirroring what the
// registration form accepts (dots and dashes).
func (a *Account) BeforeSave(tx *gorm.DB) error {
	if a.CPF != nil {
		normalized := nonDigits.ReplaceAllString(*a.CPF, "")
		a.CPF = &normalized
	}
	return nil
}

func (a *Account) IsSeller() bool {
	return a.Role == RoleSeller
}

func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// FullName joins first and last name, skipping empty parts.
func (a *Account) FullName() string {
	return strings.TrimSpace(strings.Join([]string{a.FirstName, a.LastName}, " "))
}

// ShortName returns the first name, falling back to the email local part and
// then the CPF.
func (a *Account) ShortName() string {
	if a.FirstName != "" {
		return a.FirstName
	}
	if a.Email != nil {
		return strings.SplitN(*a.Email, "@", 2)[0]
	}
	if a.CPF != nil {
		return *a.CPF
	}
	return ""
}

// EffectiveCommissionRate returns the configured rate or zero when unset.
func (a *Account) EffectiveCommissionRate() decimal.Decimal {
	if a.CommissionRate == nil {
		return decimal.Zero
	}
	return *a.CommissionRate
}

// TitleCaseName normalizes a name part the way account creation does.
func TitleCaseName(s string) string {
	return cases.Title(language.BrazilianPortuguese).String(strings.ToLower(strings.TrimSpace(s)))
}

// AccountFilter represents filter criteria for account queries
type AccountFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	CPF           *string
	Email         *string
	Role          *Role
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
