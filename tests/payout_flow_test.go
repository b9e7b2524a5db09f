package tests

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/painel-vendas/backend/app/dto"
	businessflow "github.com/painel-vendas/backend/business_flow"
	"github.com/painel-vendas/backend/config"
	"github.com/painel-vendas/backend/models"
	"github.com/painel-vendas/backend/repository"
	testingutil "github.com/painel-vendas/backend/testing"
	"github.com/painel-vendas/backend/utils"
)

func TestPayoutFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		accountRepo := repository.NewAccountRepository(testDB.DB)
		commissionRepo := repository.NewCommissionRepository(testDB.DB)
		auditRepo := repository.NewAuditLogRepository(testDB.DB)

		// No redis in the test environment; the flow falls back to the
		// database transaction as the only guard
		payoutFlow := businessflow.NewPayoutFlow(commissionRepo, accountRepo, auditRepo, nil, &config.CacheConfig{}, testDB.DB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")

		day := func(offset int) time.Time {
			return time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
		}

		seedCommission := func(t *testing.T, sellerID uint, date time.Time, amount string, paid bool) {
			sale, err := fixtures.CreateTestSale(sellerID, date, decimal.RequireFromString(amount))
			require.NoError(t, err)
			_, err = fixtures.CreateTestCommission(sellerID, sale.ID, sale.TotalAmount, decimal.NewFromInt(5), paid)
			require.NoError(t, err)
		}

		t.Run("TrackingSummary", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			seedCommission(t, seller.ID, day(0), "200.00", false)
			seedCommission(t, seller.ID, day(1), "400.00", false)
			seedCommission(t, seller.ID, day(2), "100.00", true)

			summary, err := payoutFlow.TrackingSummary(ctx)
			require.NoError(t, err)

			assert.Equal(t, "30.00", summary.ReadyTotal)
			require.Len(t, summary.PendingGroups, 1)
			group := summary.PendingGroups[0]
			assert.Equal(t, seller.ID, group.SellerID)
			assert.Equal(t, "Maria Silva", group.SellerName)
			assert.Equal(t, "30.00", group.Total)
			assert.Equal(t, "600.00", group.SalesTotal)
			assert.Equal(t, int64(2), group.Count)
			assert.Len(t, group.CommissionIDs, 2)
			// Fixture payments happen now, inside the current month
			assert.Equal(t, "5.00", summary.PaidMonthTotal)
		})

		t.Run("ExecutePayoutBatch", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			admin, err := fixtures.CreateTestAdmin()
			require.NoError(t, err)
			first, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)
			second, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)
			excluded, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			seedCommission(t, first.ID, day(0), "200.00", false)  // 10.00
			seedCommission(t, first.ID, day(1), "400.00", false)  // 20.00
			seedCommission(t, second.ID, day(0), "300.00", false) // 15.00
			seedCommission(t, excluded.ID, day(0), "500.00", false)

			result, csvBytes, err := payoutFlow.ExecutePayoutBatch(ctx, admin.ID, &dto.ExecutePayoutRequest{
				SellerIDs: []uint{first.ID, second.ID},
			}, metadata)
			require.NoError(t, err)

			assert.Equal(t, 2, result.SellersPaid)
			assert.Equal(t, int64(3), result.CommissionsPaid)
			assert.Equal(t, "45.00", result.TotalPaid)
			assert.True(t, strings.HasPrefix(result.ReportFilename, utils.PayoutReportFilenamePrefix))
			require.Len(t, result.Report, 2)

			// One shared timestamp across the whole batch
			paidAt, err := time.Parse(time.RFC3339, result.PaidAt)
			require.NoError(t, err)
			paid := true
			rows, err := commissionRepo.ByFilter(ctx, models.CommissionFilter{Paid: &paid}, "id", 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 3)
			for _, row := range rows {
				require.NotNil(t, row.PaidAt)
				assert.WithinDuration(t, paidAt, *row.PaidAt, time.Second)
			}

			// CSV report carries the fixed header and one line per seller
			lines := strings.Split(strings.TrimSpace(string(csvBytes)), "\n")
			require.Len(t, lines, 3)
			assert.Equal(t, "ID_Vendedor,Nome_Vendedor,Valor_Total_Pagar", strings.TrimSpace(lines[0]))
			assert.Contains(t, string(csvBytes), "30.00")
			assert.Contains(t, string(csvBytes), "15.00")

			// The excluded seller still shows up as pending
			summary, err := payoutFlow.TrackingSummary(ctx)
			require.NoError(t, err)
			require.Len(t, summary.PendingGroups, 1)
			assert.Equal(t, excluded.ID, summary.PendingGroups[0].SellerID)
		})

		t.Run("RerunWithoutPendingCommissions", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			admin, err := fixtures.CreateTestAdmin()
			require.NoError(t, err)
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)
			seedCommission(t, seller.ID, day(0), "200.00", false)

			_, _, err = payoutFlow.ExecutePayoutBatch(ctx, admin.ID, &dto.ExecutePayoutRequest{
				SellerIDs: []uint{seller.ID},
			}, metadata)
			require.NoError(t, err)

			_, _, err = payoutFlow.ExecutePayoutBatch(ctx, admin.ID, &dto.ExecutePayoutRequest{
				SellerIDs: []uint{seller.ID},
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsNoPendingCommissions(err))
		})

		t.Run("EmptySelectionRejected", func(t *testing.T) {
			_, _, err := payoutFlow.ExecutePayoutBatch(ctx, 1, &dto.ExecutePayoutRequest{}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsNoSelection(err))
		})

		t.Run("PaidHistory", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			admin, err := fixtures.CreateTestAdmin()
			require.NoError(t, err)
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			seedCommission(t, seller.ID, day(0), "200.00", false)
			seedCommission(t, seller.ID, day(1), "400.00", false)
			_, _, err = payoutFlow.ExecutePayoutBatch(ctx, admin.ID, &dto.ExecutePayoutRequest{
				SellerIDs: []uint{seller.ID},
			}, metadata)
			require.NoError(t, err)

			history, err := payoutFlow.PaidHistory(ctx, &dto.PaidHistoryRequest{SellerID: &seller.ID})
			require.NoError(t, err)
			require.Len(t, history.Entries, 1)

			entry := history.Entries[0]
			assert.Equal(t, seller.ID, entry.SellerID)
			assert.Equal(t, "30.00", entry.Total)
			assert.Equal(t, "600.00", entry.SalesTotal)
			assert.Equal(t, int64(2), entry.Count)
		})

		t.Run("PaidHistoryRejectsInvertedRange", func(t *testing.T) {
			start := "2024-06-01"
			end := "2024-05-01"
			_, err := payoutFlow.PaidHistory(ctx, &dto.PaidHistoryRequest{
				StartDate: &start,
				EndDate:   &end,
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsStartDateAfterEndDate(err))
		})

		t.Run("ExportPaidHistoryAsWorkbook", func(t *testing.T) {
			filename, content, err := payoutFlow.ExportPaidHistory(ctx, &dto.PaidHistoryRequest{}, metadata)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(filename, "historico_pagamentos_"))
			assert.True(t, strings.HasSuffix(filename, ".xlsx"))
			// XLSX files are zip archives
			assert.True(t, bytes.HasPrefix(content, []byte("PK")))
		})

		return nil
	})
	require.NoError(t, err)
}
