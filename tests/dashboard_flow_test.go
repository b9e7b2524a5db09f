package tests

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/painel-vendas/backend/app/dto"
	businessflow "github.com/painel-vendas/backend/business_flow"
	"github.com/painel-vendas/backend/repository"
	testingutil "github.com/painel-vendas/backend/testing"
	"github.com/painel-vendas/backend/utils"
)

func TestDashboardFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		accountRepo := repository.NewAccountRepository(testDB.DB)
		saleRepo := repository.NewSaleRepository(testDB.DB)
		commissionRepo := repository.NewCommissionRepository(testDB.DB)

		dashboardFlow := businessflow.NewDashboardFlow(saleRepo, accountRepo, commissionRepo)
		ctx := testingutil.CreateTestContext()

		now, err := utils.BusinessNow()
		require.NoError(t, err)
		today := utils.DateOnly(now)
		yesterday := today.AddDate(0, 0, -1)
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

		seedCommission := func(t *testing.T, sellerID uint, date time.Time, amount string) {
			sale, err := fixtures.CreateTestSale(sellerID, date, decimal.RequireFromString(amount))
			require.NoError(t, err)
			_, err = fixtures.CreateTestCommission(sellerID, sale.ID, sale.TotalAmount, decimal.NewFromInt(5), false)
			require.NoError(t, err)
		}

		t.Run("SellerDashboardCurrentMonth", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			seedCommission(t, seller.ID, today, "200.00")
			if yesterday.Month() == today.Month() {
				seedCommission(t, seller.ID, yesterday, "100.00")
			}

			response, err := dashboardFlow.SellerDashboard(ctx, seller.ID, &dto.SellerDashboardRequest{})
			require.NoError(t, err)

			assert.Equal(t, seller.ID, response.SellerID)
			assert.Equal(t, "Maria Silva", response.SellerName)
			assert.Equal(t, now.Year(), response.Year)
			assert.Equal(t, int(now.Month()), response.Month)

			assert.Equal(t, "200.00", response.Today.Total)
			assert.Equal(t, int64(1), response.Today.Count)
			assert.Equal(t, "200.00", response.Today.AverageTicket)

			if yesterday.Month() == today.Month() {
				assert.Equal(t, "100.00", response.Yesterday.Total)
				assert.Equal(t, "300.00", response.MonthStats.Total)
				assert.Equal(t, "15.00", response.MonthCommission)
			} else {
				assert.Equal(t, "200.00", response.MonthStats.Total)
				assert.Equal(t, "10.00", response.MonthCommission)
			}

			// Viewing the current month offers no forward navigation
			assert.Nil(t, response.NextMonth)
			prev := monthStart.AddDate(0, -1, 0)
			assert.Equal(t, prev.Year(), response.PreviousMonth.Year)
			assert.Equal(t, int(prev.Month()), response.PreviousMonth.Month)
			assert.NotEmpty(t, response.RecentSales)
		})

		t.Run("SellerDashboardPastMonthNavigation", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			past := monthStart.AddDate(0, -2, 0)
			response, err := dashboardFlow.SellerDashboard(ctx, seller.ID, &dto.SellerDashboardRequest{
				Year:  utils.ToPtr(past.Year()),
				Month: utils.ToPtr(int(past.Month())),
			})
			require.NoError(t, err)

			assert.Equal(t, past.Year(), response.Year)
			assert.Equal(t, int(past.Month()), response.Month)
			require.NotNil(t, response.NextMonth)
			next := past.AddDate(0, 1, 0)
			assert.Equal(t, int(next.Month()), response.NextMonth.Month)
		})

		t.Run("SellerDashboardNeverBrowsesFuture", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			future := monthStart.AddDate(0, 3, 0)
			response, err := dashboardFlow.SellerDashboard(ctx, seller.ID, &dto.SellerDashboardRequest{
				Year:  utils.ToPtr(future.Year()),
				Month: utils.ToPtr(int(future.Month())),
			})
			require.NoError(t, err)

			// Clamped back to the current month
			assert.Equal(t, now.Year(), response.Year)
			assert.Equal(t, int(now.Month()), response.Month)
			assert.Nil(t, response.NextMonth)
		})

		t.Run("SellerDashboardRejectsNonSeller", func(t *testing.T) {
			admin, err := fixtures.CreateTestAdmin()
			require.NoError(t, err)

			_, err = dashboardFlow.SellerDashboard(ctx, admin.ID, &dto.SellerDashboardRequest{})
			require.Error(t, err)
			assert.True(t, businessflow.IsSellerNotFound(err))
		})

		t.Run("AdminOverviewToday", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			first, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)
			second, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			seedCommission(t, first.ID, today, "300.00")
			seedCommission(t, second.ID, today, "100.00")
			seedCommission(t, first.ID, yesterday, "200.00")

			response, err := dashboardFlow.AdminOverview(ctx, &dto.AdminOverviewRequest{Period: "today"})
			require.NoError(t, err)

			assert.Equal(t, "today", response.Period)
			assert.Equal(t, int64(2), response.SalesCount)
			assert.Equal(t, "400.00", response.SalesTotal)
			assert.Equal(t, "200.00", response.AverageSale)
			assert.Equal(t, "400.00", response.DailyAverage)
			assert.Equal(t, "20.00", response.CommissionTotal)
			// Today 400 vs yesterday 200
			assert.Equal(t, "100.00", response.SalesVariation)

			require.Len(t, response.SellerBreakdown, 2)
			assert.Equal(t, first.ID, response.SellerBreakdown[0].SellerID)
			assert.Equal(t, "300.00", response.SellerBreakdown[0].Total)

			assert.Equal(t, int64(2), response.TotalSellers)
			assert.Len(t, response.ActiveSellers, 2)
			assert.Equal(t, "40.00", response.UnpaidTotal)
		})

		t.Run("AdminOverviewVariationWithEmptyPreceding", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)
			seedCommission(t, seller.ID, today, "150.00")

			response, err := dashboardFlow.AdminOverview(ctx, &dto.AdminOverviewRequest{Period: "today"})
			require.NoError(t, err)
			assert.Equal(t, "100.00", response.SalesVariation)

			require.NoError(t, testDB.ClearAllTables())
			response, err = dashboardFlow.AdminOverview(ctx, &dto.AdminOverviewRequest{Period: "today"})
			require.NoError(t, err)
			assert.Equal(t, "0.00", response.SalesVariation)
		})

		t.Run("AdminOverviewCustomPeriod", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
			seedCommission(t, seller.ID, start, "100.00")
			seedCommission(t, seller.ID, start.AddDate(0, 0, 9), "300.00")

			startStr := "2024-05-01"
			endStr := "2024-05-10"
			response, err := dashboardFlow.AdminOverview(ctx, &dto.AdminOverviewRequest{
				Period:    "custom",
				StartDate: &startStr,
				EndDate:   &endStr,
			})
			require.NoError(t, err)

			assert.Equal(t, "2024-05-01", response.StartDate)
			assert.Equal(t, "2024-05-10", response.EndDate)
			assert.Equal(t, "400.00", response.SalesTotal)
			// 400.00 over an inclusive ten day span
			assert.Equal(t, "40.00", response.DailyAverage)
		})

		t.Run("AdminOverviewCustomRequiresBothDates", func(t *testing.T) {
			startStr := "2024-05-01"
			_, err := dashboardFlow.AdminOverview(ctx, &dto.AdminOverviewRequest{
				Period:    "custom",
				StartDate: &startStr,
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsMissingDate(err))
		})

		t.Run("AdminOverviewRejectsUnknownPeriod", func(t *testing.T) {
			_, err := dashboardFlow.AdminOverview(ctx, &dto.AdminOverviewRequest{Period: "fortnight"})
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidPeriod(err))
		})

		return nil
	})
	require.NoError(t, err)
}
