package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/painel-vendas/backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// SaleRepositoryImpl implements SaleRepository interface
type SaleRepositoryImpl struct {
	*BaseRepository[models.Sale, models.SaleFilter]
}

// NewSaleRepository creates a new sale repository
func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &SaleRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Sale, models.SaleFilter](db),
	}
}

// ByUUID retrieves a sale by UUID
func (r *SaleRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.Sale, error) {
	db := r.getDB(ctx)

	var sale models.Sale
	err := db.Where("uuid = ?", uuid).Preload("Seller").Last(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find sale by uuid: %w", err)
	}

	return &sale, nil
}

// BySellerAndDate retrieves the single sale a seller registered for a day
func (r *SaleRepositoryImpl) BySellerAndDate(ctx context.Context, sellerID uint, date time.Time) (*models.Sale, error) {
	db := r.getDB(ctx)

	var sale models.Sale
	err := db.Where("seller_id = ? AND date = ?", sellerID, date.Format("2006-01-02")).Last(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find sale by seller and date: %w", err)
	}

	return &sale, nil
}

// AggregateBetween sums sale amounts over [from, to] inclusive. A nil
// sellerID aggregates across all sellers.
func (r *SaleRepositoryImpl) AggregateBetween(ctx context.Context, sellerID *uint, from, to time.Time) (*SaleAggregate, error) {
	db := r.getDB(ctx)

	var row struct {
		Total decimal.Decimal
		Count int64
	}

	query := db.Model(&models.Sale{}).
		Select("COALESCE(SUM(total_amount), 0) AS total, COUNT(*) AS count").
		Where("date >= ? AND date <= ?", from.Format("2006-01-02"), to.Format("2006-01-02"))
	if sellerID != nil {
		query = query.Where("seller_id = ?", *sellerID)
	}

	err := query.Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}

	return &SaleAggregate{Total: row.Total, Count: row.Count}, nil
}

// AggregateBySellerBetween rolls up a period's sales per seller, biggest
// total first.
func (r *SaleRepositoryImpl) AggregateBySellerBetween(ctx context.Context, from, to time.Time) ([]*SellerSalesAggregate, error) {
	db := r.getDB(ctx)

	var rows []struct {
		SellerID   uint
		SellerName string
		Total      decimal.Decimal
		Count      int64
	}

	err := db.Model(&models.Sale{}).
		Select("sales.seller_id AS seller_id, "+
			"TRIM(accounts.first_name || ' ' || accounts.last_name) AS seller_name, "+
			"COALESCE(SUM(sales.total_amount), 0) AS total, COUNT(*) AS count").
		Joins("JOIN accounts ON accounts.id = sales.seller_id").
		Where("sales.date >= ? AND sales.date <= ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Group("sales.seller_id, accounts.first_name, accounts.last_name").
		Order("total DESC, seller_name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales per seller: %w", err)
	}

	aggregates := make([]*SellerSalesAggregate, 0, len(rows))
	for _, row := range rows {
		aggregates = append(aggregates, &SellerSalesAggregate{
			SellerID:   row.SellerID,
			SellerName: row.SellerName,
			Total:      row.Total,
			Count:      row.Count,
		})
	}

	return aggregates, nil
}

// ListRecent retrieves sales ordered by date descending
func (r *SaleRepositoryImpl) ListRecent(ctx context.Context, sellerID *uint, limit, offset int) ([]*models.Sale, error) {
	db := r.getDB(ctx)

	query := db.Model(&models.Sale{}).Order("date DESC, id DESC").Preload("Seller").Preload("Commission")
	if sellerID != nil {
		query = query.Where("seller_id = ?", *sellerID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var sales []*models.Sale
	err := query.Find(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent sales: %w", err)
	}

	return sales, nil
}

// ByFilter retrieves sales based on filter criteria with their seller and
// commission preloaded
func (r *SaleRepositoryImpl) ByFilter(ctx context.Context, filter models.SaleFilter, orderBy string, limit, offset int) ([]*models.Sale, error) {
	db := r.getDB(ctx)

	query := db.Model(&models.Sale{}).Preload("Seller").Preload("Commission")
	query = r.applyFilter(query, filter)

	if orderBy != "" {
		query = query.Order(orderBy)
	} else {
		query = query.Order("date DESC, id DESC")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var sales []*models.Sale
	err := query.Find(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find sales by filter: %w", err)
	}

	return sales, nil
}

// Count returns the number of sales matching the filter
func (r *SaleRepositoryImpl) Count(ctx context.Context, filter models.SaleFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64

	query := db.Model(&models.Sale{})
	query = r.applyFilter(query, filter)

	err := query.Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count sales: %w", err)
	}

	return count, nil
}

// Exists checks if any sale matching the filter exists
func (r *SaleRepositoryImpl) Exists(ctx context.Context, filter models.SaleFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies the filter to the query
func (r *SaleRepositoryImpl) applyFilter(query *gorm.DB, filter models.SaleFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.SellerID != nil {
		query = query.Where("seller_id = ?", *filter.SellerID)
	}
	if filter.Date != nil {
		query = query.Where("date = ?", filter.Date.Format("2006-01-02"))
	}
	if filter.Year != nil {
		query = query.Where("EXTRACT(YEAR FROM date) = ?", *filter.Year)
	}
	if filter.Month != nil {
		query = query.Where("EXTRACT(MONTH FROM date) = ?", *filter.Month)
	}
	if filter.Day != nil {
		query = query.Where("EXTRACT(DAY FROM date) = ?", *filter.Day)
	}
	if filter.DateAfter != nil {
		query = query.Where("date >= ?", filter.DateAfter.Format("2006-01-02"))
	}
	if filter.DateBefore != nil {
		query = query.Where("date <= ?", filter.DateBefore.Format("2006-01-02"))
	}
	return query
}
