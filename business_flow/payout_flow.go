// Package businessflow contains the business logic for commission tracking and payout batches
package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/painel-vendas/backend/app/dto"
	"github.com/painel-vendas/backend/config"
	"github.com/painel-vendas/backend/models"
	"github.com/painel-vendas/backend/repository"
	"github.com/painel-vendas/backend/utils"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// PayoutFlow handles the commission tracking board and payout batch execution
type PayoutFlow interface {
	TrackingSummary(ctx context.Context) (*dto.TrackingSummaryResponse, error)
	ExecutePayoutBatch(ctx context.Context, actorID uint, request *dto.ExecutePayoutRequest, metadata *ClientMetadata) (*dto.PayoutResultDTO, []byte, error)
	PaidHistory(ctx context.Context, request *dto.PaidHistoryRequest) (*dto.PaidHistoryResponse, error)
	ExportPaidHistory(ctx context.Context, request *dto.PaidHistoryRequest, metadata *ClientMetadata) (string, []byte, error)
}

// PayoutFlowImpl implements the payout business flow
type PayoutFlowImpl struct {
	commissionRepo repository.CommissionRepository
	accountRepo    repository.AccountRepository
	auditRepo      repository.AuditLogRepository
	rc             *redis.Client
	cacheConfig    *config.CacheConfig
	db             *gorm.DB
}

// NewPayoutFlow creates a new payout flow instance
func NewPayoutFlow(
	commissionRepo repository.CommissionRepository,
	accountRepo repository.AccountRepository,
	auditRepo repository.AuditLogRepository,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
	db *gorm.DB,
) PayoutFlow {
	return &PayoutFlowImpl{
		commissionRepo: commissionRepo,
		accountRepo:    accountRepo,
		auditRepo:      auditRepo,
		rc:             rc,
		cacheConfig:    cacheConfig,
		db:             db,
	}
}

// TrackingSummary returns how much commission is ready to pay out, what was
// paid during the current calendar month, and the per-seller pending groups.
func (pf *PayoutFlowImpl) TrackingSummary(ctx context.Context) (*dto.TrackingSummaryResponse, error) {
	totals, err := pf.commissionRepo.Totals(ctx, nil)
	if err != nil {
		return nil, NewBusinessError("TRACKING_SUMMARY_FAILED", "Failed to total commissions", err)
	}

	now, err := utils.BusinessNow()
	if err != nil {
		return nil, NewBusinessError("TRACKING_SUMMARY_FAILED", "Failed to resolve business time", err)
	}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	paidMonth, err := pf.commissionRepo.SumPaidBetween(ctx, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, NewBusinessError("TRACKING_SUMMARY_FAILED", "Failed to total month payouts", err)
	}

	groups, err := pf.commissionRepo.PendingGroups(ctx)
	if err != nil {
		return nil, NewBusinessError("TRACKING_SUMMARY_FAILED", "Failed to group pending commissions", err)
	}

	out := make([]dto.PendingGroupDTO, 0, len(groups))
	for _, group := range groups {
		out = append(out, dto.PendingGroupDTO{
			SellerID:      group.SellerID,
			SellerName:    group.SellerName,
			Total:         group.Total.StringFixed(2),
			SalesTotal:    group.SalesTotal.StringFixed(2),
			Count:         group.Count,
			CommissionIDs: group.CommissionIDs,
		})
	}

	return &dto.TrackingSummaryResponse{
		ReadyTotal:     totals.Pending.StringFixed(2),
		PaidMonthTotal: paidMonth.StringFixed(2),
		PendingGroups:  out,
	}, nil
}

// ExecutePayoutBatch marks every pending commission of the selected sellers
// as paid with one shared timestamp and emits the payment report CSV. A redis
// lock guards against double-submission; the batch is not undoable here.
func (pf *PayoutFlowImpl) ExecutePayoutBatch(ctx context.Context, actorID uint, request *dto.ExecutePayoutRequest, metadata *ClientMetadata) (*dto.PayoutResultDTO, []byte, error) {
	if len(request.SellerIDs) == 0 {
		return nil, nil, NewBusinessError("PAYOUT_VALIDATION_FAILED", "Payout validation failed", ErrNoSelection)
	}

	// Acquire distributed lock (SETNX with TTL). When the cache is disabled
	// the deployment runs a single instance and the database transaction is
	// the only guard.
	if pf.rc != nil {
		lockKey := redisKey(*pf.cacheConfig, utils.PayoutLockKey)
		ok, err := pf.rc.SetNX(ctx, lockKey, "1", utils.PayoutLockTTL).Result()
		if err != nil {
			return nil, nil, NewBusinessError("PAYOUT_LOCK_FAILED", "Failed to acquire payout lock", err)
		}
		if !ok {
			return nil, nil, NewBusinessError("PAYOUT_LOCK_BUSY", "Payout batch already running", ErrPayoutAlreadyRunning)
		}
		defer func() {
			_ = pf.rc.Del(context.Background(), lockKey).Err()
		}()
	}

	var err error

	var result *dto.PayoutResultDTO

	err = repository.WithTransaction(ctx, pf.db, func(ctx context.Context) error {
		groups, err := pf.commissionRepo.PendingGroups(ctx)
		if err != nil {
			return err
		}

		selected := make(map[uint]bool, len(request.SellerIDs))
		for _, id := range request.SellerIDs {
			selected[id] = true
		}

		report := make([]dto.PayoutRowDTO, 0, len(request.SellerIDs))
		totalPaid := decimal.Zero
		var commissionIDs []uint
		for _, group := range groups {
			if !selected[group.SellerID] {
				continue
			}
			report = append(report, dto.PayoutRowDTO{
				SellerID:   group.SellerID,
				SellerName: group.SellerName,
				Total:      group.Total.StringFixed(2),
			})
			totalPaid = totalPaid.Add(group.Total)
			commissionIDs = append(commissionIDs, group.CommissionIDs...)
		}
		if len(report) == 0 {
			return ErrNoPendingCommissions
		}

		// Mark exactly the rows that went into the report. A commission
		// registered after the rollup stays pending for the next batch.
		paidAt := utils.UTCNow()
		paidCount, err := pf.commissionRepo.MarkPaidByIDs(ctx, commissionIDs, paidAt)
		if err != nil {
			return err
		}
		if paidCount != int64(len(commissionIDs)) {
			return ErrPaidStateInconsistency
		}

		result = &dto.PayoutResultDTO{
			SellersPaid:     len(report),
			CommissionsPaid: paidCount,
			TotalPaid:       totalPaid.StringFixed(2),
			PaidAt:          paidAt.Format(time.RFC3339),
			Report:          report,
			ReportFilename:  fmt.Sprintf("%s%s.csv", utils.PayoutReportFilenamePrefix, paidAt.Format("2006-01-02")),
		}
		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Payout batch failed: %s", err.Error())
		_ = pf.LogPayoutAction(ctx, actorID, models.AuditActionPayoutExecuted, errMsg, false, &errMsg, metadata)

		return nil, nil, NewBusinessError("PAYOUT_FAILED", "Payout batch failed", err)
	}

	csvBytes, err := pf.buildPayoutCSV(result.Report)
	if err != nil {
		return nil, nil, err
	}

	msg := fmt.Sprintf("Payout executed: %d sellers, %d commissions, total %s", result.SellersPaid, result.CommissionsPaid, result.TotalPaid)
	_ = pf.LogPayoutAction(ctx, actorID, models.AuditActionPayoutExecuted, msg, true, nil, metadata)

	return result, csvBytes, nil
}

// PaidHistory returns paid commissions grouped by seller and payment month
func (pf *PayoutFlowImpl) PaidHistory(ctx context.Context, request *dto.PaidHistoryRequest) (*dto.PaidHistoryResponse, error) {
	start, end, err := parsePaidRange(request)
	if err != nil {
		return nil, NewBusinessError("PAID_HISTORY_VALIDATION_FAILED", "Paid history validation failed", err)
	}

	rows, err := pf.commissionRepo.PaidHistory(ctx, request.SellerID, start, end)
	if err != nil {
		return nil, NewBusinessError("PAID_HISTORY_FAILED", "Failed to load paid history", err)
	}

	entries := make([]dto.PaidHistoryEntryDTO, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, dto.PaidHistoryEntryDTO{
			SellerID:   row.SellerID,
			SellerName: row.SellerName,
			Year:       row.Year,
			Month:      row.Month,
			Total:      row.Total.StringFixed(2),
			SalesTotal: row.SalesTotal.StringFixed(2),
			Count:      row.Count,
		})
	}

	return &dto.PaidHistoryResponse{Entries: entries}, nil
}

// ExportPaidHistory builds an XLSX workbook of the paid-commission history
func (pf *PayoutFlowImpl) ExportPaidHistory(ctx context.Context, request *dto.PaidHistoryRequest, metadata *ClientMetadata) (string, []byte, error) {
	history, err := pf.PaidHistory(ctx, request)
	if err != nil {
		return "", nil, err
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "Historico"
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{"ID_Vendedor", "Nome_Vendedor", "Ano", "Mes", "Total_Comissao", "Total_Vendas", "Quantidade"}
	if err := xl.SetSheetRow(sheet, "A1", &header); err != nil {
		return "", nil, NewBusinessError("XLSX_WRITE_ERROR", "Failed to write workbook header", err)
	}

	for i, entry := range history.Entries {
		row := []any{entry.SellerID, entry.SellerName, entry.Year, entry.Month, entry.Total, entry.SalesTotal, entry.Count}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", nil, NewBusinessError("XLSX_WRITE_ERROR", "Failed to address workbook row", err)
		}
		if err := xl.SetSheetRow(sheet, cell, &row); err != nil {
			return "", nil, NewBusinessError("XLSX_WRITE_ERROR", "Failed to write workbook row", err)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("XLSX_WRITE_ERROR", "Failed to serialize workbook", err)
	}

	filename := fmt.Sprintf("historico_pagamentos_%s.xlsx", utils.UTCNowFormat("2006-01-02"))

	msg := fmt.Sprintf("Paid history exported: %d entries", len(history.Entries))
	_ = pf.LogPayoutAction(ctx, 0, models.AuditActionPayoutExportIssued, msg, true, nil, metadata)

	return filename, buf.Bytes(), nil
}

// Private helper methods

func (pf *PayoutFlowImpl) buildPayoutCSV(report []dto.PayoutRowDTO) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{"ID_Vendedor", "Nome_Vendedor", "Valor_Total_Pagar"}
	if err := w.Write(header); err != nil {
		return nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to write CSV header", err)
	}

	for _, row := range report {
		record := []string{
			fmt.Sprintf("%d", row.SellerID),
			row.SellerName,
			row.Total,
		}
		if err := w.Write(record); err != nil {
			return nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to write CSV row", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to flush CSV", err)
	}
	return buf.Bytes(), nil
}

// parsePaidRange validates the optional paid_at window. The end date is
// inclusive: it extends to the end of that day.
func parsePaidRange(request *dto.PaidHistoryRequest) (*time.Time, *time.Time, error) {
	var start, end *time.Time

	if request.StartDate != nil {
		parsed, err := time.Parse("2006-01-02", *request.StartDate)
		if err != nil {
			return nil, nil, err
		}
		start = &parsed
	}
	if request.EndDate != nil {
		parsed, err := time.Parse("2006-01-02", *request.EndDate)
		if err != nil {
			return nil, nil, err
		}
		endOfDay := parsed.AddDate(0, 0, 1).Add(-time.Second)
		end = &endOfDay
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, nil, ErrStartDateAfterEndDate
	}

	return start, end, nil
}

func redisKey(cfg config.CacheConfig, key string) string {
	if cfg.RedisPrefix != "" {
		return fmt.Sprintf("%s:%s", cfg.RedisPrefix, key)
	}
	return key
}

func (pf *PayoutFlowImpl) LogPayoutAction(ctx context.Context, accountID uint, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	var accountIDPtr *uint
	if accountID != 0 {
		accountIDPtr = &accountID
	}

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		AccountID:    accountIDPtr,
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

	return pf.auditRepo.Save(ctx, audit)
}
