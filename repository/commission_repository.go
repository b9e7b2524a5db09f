package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/painel-vendas/backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CommissionRepositoryImpl implements CommissionRepository interface
type CommissionRepositoryImpl struct {
	*BaseRepository[models.Commission, models.CommissionFilter]
}

// NewCommissionRepository creates a new commission repository
func NewCommissionRepository(db *gorm.DB) CommissionRepository {
	return &CommissionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Commission, models.CommissionFilter](db),
	}
}

// BySaleID retrieves the commission row attached to a sale
func (r *CommissionRepositoryImpl) BySaleID(ctx context.Context, saleID uint) (*models.Commission, error) {
	db := r.getDB(ctx)

	var commission models.Commission
	err := db.Where("sale_id = ?", saleID).Last(&commission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find commission by sale: %w", err)
	}

	return &commission, nil
}

// Totals sums commission values grouped by payment state. A nil sellerID
// aggregates across all sellers.
func (r *CommissionRepositoryImpl) Totals(ctx context.Context, sellerID *uint) (*CommissionTotals, error) {
	db := r.getDB(ctx)

	var row struct {
		Total   decimal.Decimal
		Pending decimal.Decimal
		Paid    decimal.Decimal
	}

	query := db.Model(&models.Commission{}).
		Select("COALESCE(SUM(value), 0) AS total, " +
			"COALESCE(SUM(value) FILTER (WHERE NOT paid), 0) AS pending, " +
			"COALESCE(SUM(value) FILTER (WHERE paid), 0) AS paid")
	if sellerID != nil {
		query = query.Where("seller_id = ?", *sellerID)
	}

	err := query.Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to total commissions: %w", err)
	}

	return &CommissionTotals{
		Total:   row.Total,
		Pending: row.Pending,
		Paid:    row.Paid,
	}, nil
}

// SumPaidBetween sums commission values whose paid_at falls in [from, to)
func (r *CommissionRepositoryImpl) SumPaidBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	db := r.getDB(ctx)

	var row struct {
		Total decimal.Decimal
	}

	err := db.Model(&models.Commission{}).
		Select("COALESCE(SUM(value), 0) AS total").
		Where("paid = ? AND paid_at >= ? AND paid_at < ?", true, from, to).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum paid commissions: %w", err)
	}

	return row.Total, nil
}

// SumBySaleDate sums commission values over the sale dates [from, to]
// inclusive. A nil sellerID aggregates across all sellers.
func (r *CommissionRepositoryImpl) SumBySaleDate(ctx context.Context, sellerID *uint, from, to time.Time) (decimal.Decimal, error) {
	db := r.getDB(ctx)

	var row struct {
		Total decimal.Decimal
	}

	query := db.Model(&models.Commission{}).
		Select("COALESCE(SUM(commissions.value), 0) AS total").
		Joins("JOIN sales ON sales.id = commissions.sale_id").
		Where("sales.date >= ? AND sales.date <= ?", from.Format("2006-01-02"), to.Format("2006-01-02"))
	if sellerID != nil {
		query = query.Where("commissions.seller_id = ?", *sellerID)
	}

	err := query.Scan(&row).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum commissions by sale date: %w", err)
	}

	return row.Total, nil
}

// PendingGroups rolls up unpaid commissions per seller, biggest total first.
// Each group carries the ids of the rows it summarizes so a payout batch can
// mark exactly what it reported.
func (r *CommissionRepositoryImpl) PendingGroups(ctx context.Context) ([]*PendingGroup, error) {
	db := r.getDB(ctx)

	var rows []struct {
		SellerID      uint
		SellerName    string
		Total         decimal.Decimal
		SalesTotal    decimal.Decimal
		Count         int64
		CommissionIDs pq.Int64Array `gorm:"type:bigint[]"`
	}

	err := db.Model(&models.Commission{}).
		Select("commissions.seller_id AS seller_id, "+
			"TRIM(accounts.first_name || ' ' || accounts.last_name) AS seller_name, "+
			"COALESCE(SUM(commissions.value), 0) AS total, "+
			"COALESCE(SUM(sales.total_amount), 0) AS sales_total, COUNT(*) AS count, "+
			"ARRAY_AGG(commissions.id ORDER BY commissions.id) AS commission_ids").
		Joins("JOIN accounts ON accounts.id = commissions.seller_id").
		Joins("JOIN sales ON sales.id = commissions.sale_id").
		Where("commissions.paid = ?", false).
		Group("commissions.seller_id, accounts.first_name, accounts.last_name").
		Order("total DESC, seller_name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group pending commissions: %w", err)
	}

	groups := make([]*PendingGroup, 0, len(rows))
	for _, row := range rows {
		ids := make([]uint, 0, len(row.CommissionIDs))
		for _, id := range row.CommissionIDs {
			ids = append(ids, uint(id))
		}
		groups = append(groups, &PendingGroup{
			SellerID:      row.SellerID,
			SellerName:    row.SellerName,
			Total:         row.Total,
			SalesTotal:    row.SalesTotal,
			Count:         row.Count,
			CommissionIDs: ids,
		})
	}

	return groups, nil
}

// MarkPaidByIDs marks the given commission rows as paid in a single UPDATE.
// All affected rows share the same paidAt stamp. Rows already paid are left
// untouched; the returned count is the number of rows actually updated.
func (r *CommissionRepositoryImpl) MarkPaidByIDs(ctx context.Context, ids []uint, paidAt time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return 0, err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	result := db.Model(&models.Commission{}).
		Where("id IN ? AND paid = ?", ids, false).
		Updates(map[string]any{
			"paid":       true,
			"paid_at":    paidAt,
			"updated_at": paidAt,
		})
	if result.Error != nil {
		err = fmt.Errorf("failed to mark commissions paid: %w", result.Error)
		return 0, err
	}

	return result.RowsAffected, nil
}

// PaidHistory rolls up paid commissions per seller and payment month, newest
// month first. Optional seller and paid_at range filters.
func (r *CommissionRepositoryImpl) PaidHistory(ctx context.Context, sellerID *uint, start, end *time.Time) ([]*PaidHistoryRow, error) {
	db := r.getDB(ctx)

	var rows []struct {
		SellerID   uint
		SellerName string
		Year       int
		Month      int
		Total      decimal.Decimal
		SalesTotal decimal.Decimal
		Count      int64
	}

	query := db.Model(&models.Commission{}).
		Select("commissions.seller_id AS seller_id, "+
			"TRIM(accounts.first_name || ' ' || accounts.last_name) AS seller_name, "+
			"EXTRACT(YEAR FROM commissions.paid_at)::int AS year, "+
			"EXTRACT(MONTH FROM commissions.paid_at)::int AS month, "+
			"COALESCE(SUM(commissions.value), 0) AS total, "+
			"COALESCE(SUM(sales.total_amount), 0) AS sales_total, COUNT(*) AS count").
		Joins("JOIN accounts ON accounts.id = commissions.seller_id").
		Joins("JOIN sales ON sales.id = commissions.sale_id").
		Where("commissions.paid = ? AND commissions.paid_at IS NOT NULL", true)
	if sellerID != nil {
		query = query.Where("commissions.seller_id = ?", *sellerID)
	}
	if start != nil {
		query = query.Where("commissions.paid_at >= ?", *start)
	}
	if end != nil {
		query = query.Where("commissions.paid_at <= ?", *end)
	}

	err := query.
		Group("commissions.seller_id, accounts.first_name, accounts.last_name, year, month").
		Order("year DESC, month DESC, seller_name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to roll up paid history: %w", err)
	}

	history := make([]*PaidHistoryRow, 0, len(rows))
	for _, row := range rows {
		history = append(history, &PaidHistoryRow{
			SellerID:   row.SellerID,
			SellerName: row.SellerName,
			Year:       row.Year,
			Month:      row.Month,
			Total:      row.Total,
			SalesTotal: row.SalesTotal,
			Count:      row.Count,
		})
	}

	return history, nil
}

// ByFilter retrieves commissions based on filter criteria
func (r *CommissionRepositoryImpl) ByFilter(ctx context.Context, filter models.CommissionFilter, orderBy string, limit, offset int) ([]*models.Commission, error) {
	db := r.getDB(ctx)

	query := db.Model(&models.Commission{})
	query = r.applyFilter(query, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	} else {
		query = query.Order("id")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var commissions []*models.Commission
	err := query.Find(&commissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find commissions by filter: %w", err)
	}

	return commissions, nil
}

// Count returns the number of commissions matching the filter
func (r *CommissionRepositoryImpl) Count(ctx context.Context, filter models.CommissionFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64

	query := db.Model(&models.Commission{})
	query = r.applyFilter(query, filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count commissions: %w", err)
	}

	return count, nil
}

// Exists checks if any commission matching the filter exists
func (r *CommissionRepositoryImpl) Exists(ctx context.Context, filter models.CommissionFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies the filter to the query
func (r *CommissionRepositoryImpl) applyFilter(query *gorm.DB, filter models.CommissionFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.SaleID != nil {
		query = query.Where("sale_id = ?", *filter.SaleID)
	}
	if filter.Paid != nil {
		query = query.Where("paid = ?", *filter.Paid)
	}
	if filter.PaidAfter != nil {
		query = query.Where("paid_at >= ?", *filter.PaidAfter)
	}
	if filter.PaidBefore != nil {
		query = query.Where("paid_at <= ?", *filter.PaidBefore)
	}
	return query
}
