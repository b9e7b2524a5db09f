// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/painel-vendas/backend/models"
	"github.com/shopspring/decimal"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Update(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// AccountRepository defines operations for accounts (sellers, admins and box operators)
type AccountRepository interface {
	Repository[models.Account, models.AccountFilter]
	ByEmail(ctx context.Context, email string) (*models.Account, error)
	ByCPF(ctx context.Context, cpf string) (*models.Account, error)
	ByUUID(ctx context.Context, uuid string) (*models.Account, error)
	ListSellers(ctx context.Context, onlyActive bool, limit, offset int) ([]*models.Account, error)
	UpdatePassword(ctx context.Context, accountID uint, passwordHash string) error
	UpdateLastLogin(ctx context.Context, accountID uint, at time.Time) error
	SetActive(ctx context.Context, accountID uint, active bool) error
}

// SaleAggregate carries the sum and count of a set of sales
type SaleAggregate struct {
	Total decimal.Decimal
	Count int64
}

// SellerSalesAggregate carries one seller's share of a period's sales
type SellerSalesAggregate struct {
	SellerID   uint
	SellerName string
	Total      decimal.Decimal
	Count      int64
}

// SaleRepository defines operations for daily sale records
type SaleRepository interface {
	Repository[models.Sale, models.SaleFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Sale, error)
	BySellerAndDate(ctx context.Context, sellerID uint, date time.Time) (*models.Sale, error)
	Delete(ctx context.Context, id uint) error
	AggregateBetween(ctx context.Context, sellerID *uint, from, to time.Time) (*SaleAggregate, error)
	AggregateBySellerBetween(ctx context.Context, from, to time.Time) ([]*SellerSalesAggregate, error)
	ListRecent(ctx context.Context, sellerID *uint, limit, offset int) ([]*models.Sale, error)
}

// CommissionTotals summarizes commission value grouped by payment state
type CommissionTotals struct {
	Total   decimal.Decimal
	Pending decimal.Decimal
	Paid    decimal.Decimal
}

// PendingGroup is the per-seller rollup of unpaid commissions
type PendingGroup struct {
	SellerID      uint
	SellerName    string
	Total         decimal.Decimal
	SalesTotal    decimal.Decimal
	Count         int64
	CommissionIDs []uint
}

// PaidHistoryRow is the per-seller, per-month rollup of paid commissions
type PaidHistoryRow struct {
	SellerID   uint
	SellerName string
	Year       int
	Month      int
	Total      decimal.Decimal
	SalesTotal decimal.Decimal
	Count      int64
}

// CommissionRepository defines operations for commission rows
type CommissionRepository interface {
	Repository[models.Commission, models.CommissionFilter]
	BySaleID(ctx context.Context, saleID uint) (*models.Commission, error)
	Totals(ctx context.Context, sellerID *uint) (*CommissionTotals, error)
	SumPaidBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	SumBySaleDate(ctx context.Context, sellerID *uint, from, to time.Time) (decimal.Decimal, error)
	PendingGroups(ctx context.Context) ([]*PendingGroup, error)
	MarkPaidByIDs(ctx context.Context, ids []uint, paidAt time.Time) (int64, error)
	PaidHistory(ctx context.Context, sellerID *uint, start, end *time.Time) ([]*PaidHistoryRow, error)
}

// AccountSessionRepository defines operations for account sessions
type AccountSessionRepository interface {
	Repository[models.AccountSession, models.AccountSessionFilter]
	BySessionToken(ctx context.Context, token string) (*models.AccountSession, error)
	ByRefreshToken(ctx context.Context, token string) (*models.AccountSession, error)
	ListActiveSessionsByAccount(ctx context.Context, accountID uint) ([]*models.AccountSession, error)
	ExpireSession(ctx context.Context, sessionID uint) error
	ExpireAllAccountSessions(ctx context.Context, accountID uint) error
	CleanupExpiredSessions(ctx context.Context) error
	GetLatestByCorrelationID(ctx context.Context, correlationID uuid.UUID) (*models.AccountSession, error)
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByAccount(ctx context.Context, accountID uint, limit, offset int) ([]*models.AuditLog, error)
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
	ListFailedActions(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
	ListSecurityEvents(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}
