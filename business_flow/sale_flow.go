// Package businessflow contains the business logic for the daily sale ledger
package businessflow

import (
	"context"
	"fmt"
	"time"

	"github.com/painel-vendas/backend/app/dto"
	"github.com/painel-vendas/backend/models"
	"github.com/painel-vendas/backend/repository"
	"github.com/painel-vendas/backend/utils"
	"gorm.io/gorm"
)

// SaleFlow handles registration and maintenance of daily sales
type SaleFlow interface {
	CreateSale(ctx context.Context, sellerID uint, request *dto.CreateSaleRequest, metadata *ClientMetadata) (*dto.SaleDTO, error)
	UpdateSale(ctx context.Context, actorID, saleID uint, request *dto.UpdateSaleRequest, metadata *ClientMetadata) (*dto.SaleDTO, error)
	DeleteSale(ctx context.Context, actorID, saleID uint, metadata *ClientMetadata) error
	ListSales(ctx context.Context, sellerID *uint, request *dto.ListSalesRequest) (*dto.ListSalesResponse, error)
}

// SaleFlowImpl implements the sale ledger business flow
type SaleFlowImpl struct {
	saleRepo       repository.SaleRepository
	accountRepo    repository.AccountRepository
	commissionRepo repository.CommissionRepository
	auditRepo      repository.AuditLogRepository
	reconciler     CommissionReconciler
	db             *gorm.DB
}

// NewSaleFlow creates a new sale flow instance
func NewSaleFlow(
	saleRepo repository.SaleRepository,
	accountRepo repository.AccountRepository,
	commissionRepo repository.CommissionRepository,
	auditRepo repository.AuditLogRepository,
	reconciler CommissionReconciler,
	db *gorm.DB,
) SaleFlow {
	return &SaleFlowImpl{
		saleRepo:       saleRepo,
		accountRepo:    accountRepo,
		commissionRepo: commissionRepo,
		auditRepo:      auditRepo,
		reconciler:     reconciler,
		db:             db,
	}
}

// CreateSale registers the seller's total for one calendar day. At most one
// sale per (seller, date) exists; the pre-check gives a friendly error and
// the unique constraint covers concurrent inserts. The commission is
// reconciled inside the same transaction.
func (sf *SaleFlowImpl) CreateSale(ctx context.Context, sellerID uint, request *dto.CreateSaleRequest, metadata *ClientMetadata) (*dto.SaleDTO, error) {
	date, err := sf.validateSaleInput(request.Date, request)
	if err != nil {
		return nil, NewBusinessError("SALE_VALIDATION_FAILED", "Sale validation failed", err)
	}

	var sale *models.Sale

	resp, err := sf.WithSaleTransaction(ctx, func(ctx context.Context) (*dto.SaleDTO, error) {
		seller, err := sf.accountRepo.ByID(ctx, sellerID)
		if err != nil {
			return nil, err
		}
		if seller == nil || !seller.IsSeller() {
			return nil, ErrSellerNotFound
		}
		if !utils.IsTrue(seller.IsActive) {
			return nil, ErrSellerInactive
		}

		existing, err := sf.saleRepo.BySellerAndDate(ctx, sellerID, date)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrDuplicateSale
		}

		sale = &models.Sale{
			SellerID:    sellerID,
			Date:        date,
			TotalAmount: request.TotalAmount,
		}
		if err := sf.saleRepo.Save(ctx, sale); err != nil {
			if repository.IsUniqueViolation(err) {
				return nil, ErrDuplicateSale
			}
			return nil, err
		}

		if err := sf.reconciler.Reconcile(ctx, sale); err != nil {
			return nil, err
		}

		return sf.loadSaleDTO(ctx, sale.ID)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Sale creation failed: %s", err.Error())
		_ = sf.LogSaleAction(ctx, sellerID, models.AuditActionSaleCreated, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("SALE_CREATION_FAILED", "Sale creation failed", err)
	}

	msg := fmt.Sprintf("Sale created: %d (%s)", resp.ID, resp.Date)
	_ = sf.LogSaleAction(ctx, sellerID, models.AuditActionSaleCreated, msg, true, nil, metadata)

	return resp, nil
}

// UpdateSale corrects the amount of a sale. Only the owning seller may touch
// it; non-owners get the same not-found error as a missing sale. The
// commission value is recomputed in-transaction with the captured percentage.
func (sf *SaleFlowImpl) UpdateSale(ctx context.Context, actorID, saleID uint, request *dto.UpdateSaleRequest, metadata *ClientMetadata) (*dto.SaleDTO, error) {
	if request.TotalAmount.IsNegative() {
		return nil, NewBusinessError("SALE_VALIDATION_FAILED", "Sale validation failed", ErrInvalidAmount)
	}

	resp, err := sf.WithSaleTransaction(ctx, func(ctx context.Context) (*dto.SaleDTO, error) {
		sale, err := sf.saleRepo.ByID(ctx, saleID)
		if err != nil {
			return nil, err
		}
		if sale == nil || sale.SellerID != actorID {
			return nil, ErrSaleNotFound
		}

		sale.TotalAmount = request.TotalAmount
		if err := sf.saleRepo.Update(ctx, sale); err != nil {
			return nil, err
		}

		if err := sf.reconciler.Reconcile(ctx, sale); err != nil {
			return nil, err
		}

		return sf.loadSaleDTO(ctx, sale.ID)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Sale update failed: %s", err.Error())
		_ = sf.LogSaleAction(ctx, actorID, models.AuditActionSaleUpdated, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("SALE_UPDATE_FAILED", "Sale update failed", err)
	}

	msg := fmt.Sprintf("Sale updated: %d", resp.ID)
	_ = sf.LogSaleAction(ctx, actorID, models.AuditActionSaleUpdated, msg, true, nil, metadata)

	return resp, nil
}

// DeleteSale removes a sale; the commission row goes with it via cascade
func (sf *SaleFlowImpl) DeleteSale(ctx context.Context, actorID, saleID uint, metadata *ClientMetadata) error {
	err := repository.WithTransaction(ctx, sf.db, func(ctx context.Context) error {
		sale, err := sf.saleRepo.ByID(ctx, saleID)
		if err != nil {
			return err
		}
		if sale == nil || sale.SellerID != actorID {
			return ErrSaleNotFound
		}

		return sf.saleRepo.Delete(ctx, sale.ID)
	})

	if err != nil {
		errMsg := fmt.Sprintf("Sale deletion failed: %s", err.Error())
		_ = sf.LogSaleAction(ctx, actorID, models.AuditActionSaleDeleted, errMsg, false, &errMsg, metadata)

		return NewBusinessError("SALE_DELETION_FAILED", "Sale deletion failed", err)
	}

	msg := fmt.Sprintf("Sale deleted: %d", saleID)
	_ = sf.LogSaleAction(ctx, actorID, models.AuditActionSaleDeleted, msg, true, nil, metadata)

	return nil
}

// ListSales returns sales newest first with their commission values and the
// filtered totals of sale amounts and commission values.
func (sf *SaleFlowImpl) ListSales(ctx context.Context, sellerID *uint, request *dto.ListSalesRequest) (*dto.ListSalesResponse, error) {
	page, pageSize, err := NormalizePagination(request.Page, request.PageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_SALES_VALIDATION_FAILED", "Sale listing validation failed", err)
	}

	filter := models.SaleFilter{
		SellerID: sellerID,
		Year:     request.Year,
		Month:    request.Month,
		Day:      request.Day,
	}

	sales, err := sf.saleRepo.ByFilter(ctx, filter, "date DESC, id DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_SALES_FAILED", "Failed to list sales", err)
	}

	total, err := sf.saleRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_SALES_FAILED", "Failed to count sales", err)
	}

	from, to := SaleDateRange(request.Year, request.Month, request.Day)
	aggregate, err := sf.saleRepo.AggregateBetween(ctx, sellerID, from, to)
	if err != nil {
		return nil, NewBusinessError("LIST_SALES_FAILED", "Failed to total sales", err)
	}
	commissionSum, err := sf.commissionRepo.SumBySaleDate(ctx, sellerID, from, to)
	if err != nil {
		return nil, NewBusinessError("LIST_SALES_FAILED", "Failed to total commissions", err)
	}

	out := make([]dto.SaleDTO, 0, len(sales))
	for _, sale := range sales {
		out = append(out, ToSaleDTO(*sale))
	}

	return &dto.ListSalesResponse{
		Sales:           out,
		Total:           total,
		TotalAmount:     aggregate.Total.StringFixed(2),
		TotalCommission: commissionSum.StringFixed(2),
	}, nil
}

// Private helper methods

// SaleDateRange translates optional year/month/day filters into an inclusive
// date range. An absent year means all time.
func SaleDateRange(year, month, day *int) (time.Time, time.Time) {
	if year == nil {
		return time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	}

	if month == nil {
		from := time.Date(*year, 1, 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(1, 0, -1)
	}

	if day == nil {
		from := time.Date(*year, time.Month(*month), 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 1, -1)
	}

	d := time.Date(*year, time.Month(*month), *day, 0, 0, 0, 0, time.UTC)
	return d, d
}

func (sf *SaleFlowImpl) validateSaleInput(rawDate string, request *dto.CreateSaleRequest) (time.Time, error) {
	if rawDate == "" {
		return time.Time{}, ErrMissingDate
	}
	date, err := time.Parse("2006-01-02", rawDate)
	if err != nil {
		return time.Time{}, ErrMissingDate
	}
	if request.TotalAmount.IsNegative() {
		return time.Time{}, ErrInvalidAmount
	}
	return date, nil
}

// loadSaleDTO re-reads the sale with its relations so the response carries
// the reconciled commission.
func (sf *SaleFlowImpl) loadSaleDTO(ctx context.Context, saleID uint) (*dto.SaleDTO, error) {
	sales, err := sf.saleRepo.ByFilter(ctx, models.SaleFilter{ID: &saleID}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return nil, ErrSaleNotFound
	}

	out := ToSaleDTO(*sales[0])
	return &out, nil
}

func (sf *SaleFlowImpl) LogSaleAction(ctx context.Context, accountID uint, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		AccountID:    &accountID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errMsg,
	}

	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return sf.auditRepo.Save(ctx, audit)
}

func (sf *SaleFlowImpl) WithSaleTransaction(ctx context.Context, fn func(context.Context) (*dto.SaleDTO, error)) (*dto.SaleDTO, error) {
	var result *dto.SaleDTO
	var fnErr error

	err := repository.WithTransaction(ctx, sf.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}
