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

func TestSaleFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		accountRepo := repository.NewAccountRepository(testDB.DB)
		saleRepo := repository.NewSaleRepository(testDB.DB)
		commissionRepo := repository.NewCommissionRepository(testDB.DB)
		auditRepo := repository.NewAuditLogRepository(testDB.DB)
		reconciler := businessflow.NewCommissionReconciler(accountRepo, commissionRepo)

		saleFlow := businessflow.NewSaleFlow(saleRepo, accountRepo, commissionRepo, auditRepo, reconciler, testDB.DB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")

		t.Run("CreateSaleReconcilesCommission", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			sale, err := saleFlow.CreateSale(ctx, seller.ID, &dto.CreateSaleRequest{
				Date:        "2024-05-10",
				TotalAmount: decimal.RequireFromString("200.00"),
			}, metadata)
			require.NoError(t, err)

			assert.Equal(t, seller.ID, sale.SellerID)
			assert.Equal(t, "2024-05-10", sale.Date)
			assert.Equal(t, "200.00", sale.TotalAmount)
			require.NotNil(t, sale.Commission)
			assert.Equal(t, "5.00", sale.Commission.Percentage)
			assert.Equal(t, "10.00", sale.Commission.Value)
			assert.False(t, sale.Commission.Paid)
		})

		t.Run("SellerWithoutRateGetsNoCommission", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)
			seller.CommissionRate = nil
			require.NoError(t, testDB.DB.Model(seller).Update("commission_rate", nil).Error)

			sale, err := saleFlow.CreateSale(ctx, seller.ID, &dto.CreateSaleRequest{
				Date:        "2024-05-10",
				TotalAmount: decimal.RequireFromString("200.00"),
			}, metadata)
			require.NoError(t, err)
			assert.Nil(t, sale.Commission)
		})

		t.Run("ZeroAmountAccepted", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			// A day without sales is a legitimate record
			sale, err := saleFlow.CreateSale(ctx, seller.ID, &dto.CreateSaleRequest{
				Date:        "2024-05-10",
				TotalAmount: decimal.Zero,
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "0.00", sale.TotalAmount)
		})

		t.Run("NegativeAmountRejected", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			_, err = saleFlow.CreateSale(ctx, seller.ID, &dto.CreateSaleRequest{
				Date:        "2024-05-10",
				TotalAmount: decimal.RequireFromString("-10.00"),
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidAmount(err))
		})

		t.Run("DuplicateDateRejected", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			_, err = saleFlow.CreateSale(ctx, seller.ID, &dto.CreateSaleRequest{
				Date:        "2024-05-10",
				TotalAmount: decimal.NewFromInt(100),
			}, metadata)
			require.NoError(t, err)

			_, err = saleFlow.CreateSale(ctx, seller.ID, &dto.CreateSaleRequest{
				Date:        "2024-05-10",
				TotalAmount: decimal.NewFromInt(150),
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsDuplicateSale(err))
		})

		t.Run("InactiveSellerCannotRegister", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)
			require.NoError(t, accountRepo.SetActive(ctx, seller.ID, false))

			_, err = saleFlow.CreateSale(ctx, seller.ID, &dto.CreateSaleRequest{
				Date:        "2024-05-10",
				TotalAmount: decimal.NewFromInt(100),
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsSellerInactive(err))
		})

		t.Run("UpdatePreservesCapturedPercentage", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			created, err := saleFlow.CreateSale(ctx, seller.ID, &dto.CreateSaleRequest{
				Date:        "2024-05-10",
				TotalAmount: decimal.RequireFromString("200.00"),
			}, metadata)
			require.NoError(t, err)

			// The seller's rate is raised after the sale; the correction
			// must keep the originally captured percentage
			newRate := decimal.NewFromInt(10)
			seller.CommissionRate = &newRate
			require.NoError(t, accountRepo.Update(ctx, seller))

			updated, err := saleFlow.UpdateSale(ctx, seller.ID, created.ID, &dto.UpdateSaleRequest{
				TotalAmount: decimal.RequireFromString("300.00"),
			}, metadata)
			require.NoError(t, err)

			assert.Equal(t, "300.00", updated.TotalAmount)
			require.NotNil(t, updated.Commission)
			assert.Equal(t, "5.00", updated.Commission.Percentage)
			assert.Equal(t, "15.00", updated.Commission.Value)
		})

		t.Run("NonOwnerSeesNotFound", func(t *testing.T) {
			owner, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)
			intruder, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			created, err := saleFlow.CreateSale(ctx, owner.ID, &dto.CreateSaleRequest{
				Date:        "2024-05-10",
				TotalAmount: decimal.NewFromInt(100),
			}, metadata)
			require.NoError(t, err)

			_, err = saleFlow.UpdateSale(ctx, intruder.ID, created.ID, &dto.UpdateSaleRequest{
				TotalAmount: decimal.NewFromInt(1),
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsSaleNotFound(err))

			err = saleFlow.DeleteSale(ctx, intruder.ID, created.ID, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsSaleNotFound(err))
		})

		t.Run("DeleteRemovesSaleAndCommission", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			created, err := saleFlow.CreateSale(ctx, seller.ID, &dto.CreateSaleRequest{
				Date:        "2024-05-11",
				TotalAmount: decimal.NewFromInt(100),
			}, metadata)
			require.NoError(t, err)

			require.NoError(t, saleFlow.DeleteSale(ctx, seller.ID, created.ID, metadata))

			sale, err := saleRepo.ByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Nil(t, sale)

			commission, err := commissionRepo.BySaleID(ctx, created.ID)
			require.NoError(t, err)
			assert.Nil(t, commission)
		})

		t.Run("ListSalesWithFilteredTotals", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			for day, amount := range map[string]string{
				"2024-05-10": "200.00",
				"2024-05-11": "100.00",
				"2024-06-01": "999.00",
			} {
				_, err = saleFlow.CreateSale(ctx, seller.ID, &dto.CreateSaleRequest{
					Date:        day,
					TotalAmount: decimal.RequireFromString(amount),
				}, metadata)
				require.NoError(t, err)
			}

			response, err := saleFlow.ListSales(ctx, &seller.ID, &dto.ListSalesRequest{
				Year:  utils.ToPtr(2024),
				Month: utils.ToPtr(5),
			})
			require.NoError(t, err)

			assert.Equal(t, int64(2), response.Total)
			require.Len(t, response.Sales, 2)
			// Newest first
			assert.Equal(t, "2024-05-11", response.Sales[0].Date)
			assert.Equal(t, "300.00", response.TotalAmount)
			assert.Equal(t, "15.00", response.TotalCommission)
		})

		t.Run("ListSalesRejectsBadPagination", func(t *testing.T) {
			_, err := saleFlow.ListSales(ctx, nil, &dto.ListSalesRequest{Page: -1})
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidPage(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestSaleDateRange(t *testing.T) {
	t.Run("FullMonth", func(t *testing.T) {
		from, to := businessflow.SaleDateRange(utils.ToPtr(2024), utils.ToPtr(2), nil)
		assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), from)
		assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), to)
	})

	t.Run("SingleDay", func(t *testing.T) {
		from, to := businessflow.SaleDateRange(utils.ToPtr(2024), utils.ToPtr(5), utils.ToPtr(10))
		assert.Equal(t, from, to)
		assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), from)
	})

	t.Run("AllTimeWhenYearAbsent", func(t *testing.T) {
		from, to := businessflow.SaleDateRange(nil, utils.ToPtr(5), nil)
		assert.True(t, from.Before(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)))
		assert.True(t, to.After(time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)))
	})
}
