package tests

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/painel-vendas/backend/models"
	"github.com/painel-vendas/backend/repository"
	testingutil "github.com/painel-vendas/backend/testing"
	"github.com/painel-vendas/backend/utils"
)

func TestAccountRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		accountRepo := repository.NewAccountRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByEmailAndByCPF", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			found, err := accountRepo.ByEmail(ctx, *seller.Email)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, seller.ID, found.ID)

			found, err = accountRepo.ByCPF(ctx, *seller.CPF)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, seller.ID, found.ID)

			found, err = accountRepo.ByEmail(ctx, "nobody@example.com")
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("CPFStoredAsDigitsOnly", func(t *testing.T) {
			formatted := "529.982.247-25"
			email := "cpf.format@example.com"
			account := &models.Account{
				CPF:          &formatted,
				Email:        &email,
				FirstName:    "Joao",
				PasswordHash: "x",
				Role:         models.RoleSeller,
				IsActive:     utils.ToPtr(true),
			}
			require.NoError(t, accountRepo.Save(ctx, account))

			found, err := accountRepo.ByCPF(ctx, "52998224725")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, "52998224725", *found.CPF)
		})

		t.Run("ListSellersHonorsActiveFilter", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			active, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)
			inactive, err := fixtures.CreateTestSeller(decimal.NewFromInt(3))
			require.NoError(t, err)
			require.NoError(t, accountRepo.SetActive(ctx, inactive.ID, false))

			// Admin accounts never show up in the seller listing
			_, err = fixtures.CreateTestAdmin()
			require.NoError(t, err)

			all, err := accountRepo.ListSellers(ctx, false, 0, 0)
			require.NoError(t, err)
			assert.Len(t, all, 2)

			onlyActive, err := accountRepo.ListSellers(ctx, true, 0, 0)
			require.NoError(t, err)
			require.Len(t, onlyActive, 1)
			assert.Equal(t, active.ID, onlyActive[0].ID)
		})

		t.Run("SetActiveTogglesFlag", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			require.NoError(t, accountRepo.SetActive(ctx, seller.ID, false))
			found, err := accountRepo.ByID(ctx, seller.ID)
			require.NoError(t, err)
			require.NotNil(t, found.IsActive)
			assert.False(t, *found.IsActive)

			require.NoError(t, accountRepo.SetActive(ctx, seller.ID, true))
			found, err = accountRepo.ByID(ctx, seller.ID)
			require.NoError(t, err)
			assert.True(t, *found.IsActive)
		})

		t.Run("UpdateLastLogin", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			at := utils.UTCNow().Truncate(time.Second)
			require.NoError(t, accountRepo.UpdateLastLogin(ctx, seller.ID, at))

			found, err := accountRepo.ByID(ctx, seller.ID)
			require.NoError(t, err)
			require.NotNil(t, found.LastLoginAt)
			assert.WithinDuration(t, at, *found.LastLoginAt, time.Second)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestSaleRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		saleRepo := repository.NewSaleRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		day := func(offset int) time.Time {
			return time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
		}

		t.Run("BySellerAndDate", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			sale, err := fixtures.CreateTestSale(seller.ID, day(0), decimal.NewFromInt(200))
			require.NoError(t, err)

			found, err := saleRepo.BySellerAndDate(ctx, seller.ID, day(0))
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, sale.ID, found.ID)

			found, err = saleRepo.BySellerAndDate(ctx, seller.ID, day(1))
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("UniquePerSellerAndDate", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			_, err = fixtures.CreateTestSale(seller.ID, day(0), decimal.NewFromInt(100))
			require.NoError(t, err)
			_, err = fixtures.CreateTestSale(seller.ID, day(0), decimal.NewFromInt(150))
			assert.Error(t, err)
		})

		t.Run("AggregateBetween", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)
			other, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			_, err = fixtures.CreateTestSale(seller.ID, day(0), decimal.RequireFromString("200.00"))
			require.NoError(t, err)
			_, err = fixtures.CreateTestSale(seller.ID, day(1), decimal.RequireFromString("100.50"))
			require.NoError(t, err)
			_, err = fixtures.CreateTestSale(other.ID, day(1), decimal.RequireFromString("50.00"))
			require.NoError(t, err)
			// Outside the window
			_, err = fixtures.CreateTestSale(seller.ID, day(10), decimal.RequireFromString("999.00"))
			require.NoError(t, err)

			aggregate, err := saleRepo.AggregateBetween(ctx, nil, day(0), day(1))
			require.NoError(t, err)
			assert.Equal(t, int64(3), aggregate.Count)
			assert.Equal(t, "350.50", aggregate.Total.StringFixed(2))

			aggregate, err = saleRepo.AggregateBetween(ctx, &seller.ID, day(0), day(1))
			require.NoError(t, err)
			assert.Equal(t, int64(2), aggregate.Count)
			assert.Equal(t, "300.50", aggregate.Total.StringFixed(2))

			// Empty window sums to zero
			aggregate, err = saleRepo.AggregateBetween(ctx, nil, day(-5), day(-5))
			require.NoError(t, err)
			assert.Equal(t, int64(0), aggregate.Count)
			assert.True(t, aggregate.Total.IsZero())
		})

		t.Run("AggregateBySellerBetween", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			first, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)
			second, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			_, err = fixtures.CreateTestSale(first.ID, day(0), decimal.NewFromInt(300))
			require.NoError(t, err)
			_, err = fixtures.CreateTestSale(first.ID, day(1), decimal.NewFromInt(100))
			require.NoError(t, err)
			_, err = fixtures.CreateTestSale(second.ID, day(0), decimal.NewFromInt(250))
			require.NoError(t, err)

			rows, err := saleRepo.AggregateBySellerBetween(ctx, day(0), day(1))
			require.NoError(t, err)
			require.Len(t, rows, 2)

			// Ordered by total, largest first
			assert.Equal(t, first.ID, rows[0].SellerID)
			assert.Equal(t, "400.00", rows[0].Total.StringFixed(2))
			assert.Equal(t, int64(2), rows[0].Count)
			assert.Equal(t, "Maria Silva", rows[0].SellerName)
			assert.Equal(t, second.ID, rows[1].SellerID)
			assert.Equal(t, "250.00", rows[1].Total.StringFixed(2))
		})

		t.Run("ListRecentAndDelete", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			for i := 0; i < 3; i++ {
				_, err = fixtures.CreateTestSale(seller.ID, day(i), decimal.NewFromInt(100))
				require.NoError(t, err)
			}

			recent, err := saleRepo.ListRecent(ctx, &seller.ID, 2, 0)
			require.NoError(t, err)
			assert.Len(t, recent, 2)

			require.NoError(t, saleRepo.Delete(ctx, recent[0].ID))
			found, err := saleRepo.ByID(ctx, recent[0].ID)
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCommissionRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		commissionRepo := repository.NewCommissionRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		day := func(offset int) time.Time {
			return time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
		}

		// seedCommission creates a sale plus its commission in one call
		seedCommission := func(t *testing.T, sellerID uint, date time.Time, amount string, paid bool) *models.Commission {
			sale, err := fixtures.CreateTestSale(sellerID, date, decimal.RequireFromString(amount))
			require.NoError(t, err)
			commission, err := fixtures.CreateTestCommission(sellerID, sale.ID, sale.TotalAmount, decimal.NewFromInt(5), paid)
			require.NoError(t, err)
			return commission
		}

		t.Run("TotalsSplitsPendingAndPaid", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			seedCommission(t, seller.ID, day(0), "200.00", false) // 10.00 pending
			seedCommission(t, seller.ID, day(1), "100.00", true)  // 5.00 paid

			totals, err := commissionRepo.Totals(ctx, &seller.ID)
			require.NoError(t, err)
			assert.Equal(t, "15.00", totals.Total.StringFixed(2))
			assert.Equal(t, "10.00", totals.Pending.StringFixed(2))
			assert.Equal(t, "5.00", totals.Paid.StringFixed(2))
		})

		t.Run("PendingGroupsRollsUpBySeller", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			first, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)
			second, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			firstA := seedCommission(t, first.ID, day(0), "200.00", false) // 10.00
			firstB := seedCommission(t, first.ID, day(1), "400.00", false) // 20.00
			secondA := seedCommission(t, second.ID, day(0), "100.00", false)
			seedCommission(t, second.ID, day(1), "100.00", true) // paid rows excluded

			groups, err := commissionRepo.PendingGroups(ctx)
			require.NoError(t, err)
			require.Len(t, groups, 2)

			assert.Equal(t, first.ID, groups[0].SellerID)
			assert.Equal(t, "30.00", groups[0].Total.StringFixed(2))
			assert.Equal(t, "600.00", groups[0].SalesTotal.StringFixed(2))
			assert.Equal(t, int64(2), groups[0].Count)
			assert.Equal(t, []uint{firstA.ID, firstB.ID}, groups[0].CommissionIDs)

			assert.Equal(t, second.ID, groups[1].SellerID)
			assert.Equal(t, "5.00", groups[1].Total.StringFixed(2))
			assert.Equal(t, int64(1), groups[1].Count)
			assert.Equal(t, []uint{secondA.ID}, groups[1].CommissionIDs)
		})

		t.Run("MarkPaidByIDsSharesOneTimestamp", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			first, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)
			second, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)
			untouched, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			a := seedCommission(t, first.ID, day(0), "200.00", false)
			b := seedCommission(t, first.ID, day(1), "100.00", false)
			c := seedCommission(t, second.ID, day(0), "300.00", false)
			seedCommission(t, untouched.ID, day(0), "400.00", false)
			alreadyPaid := seedCommission(t, first.ID, day(2), "500.00", true)

			batch := []uint{a.ID, b.ID, c.ID}

			paidAt := utils.UTCNow().Truncate(time.Second)
			affected, err := commissionRepo.MarkPaidByIDs(ctx, batch, paidAt)
			require.NoError(t, err)
			assert.Equal(t, int64(3), affected)

			paid := true
			rows, err := commissionRepo.ByFilter(ctx, models.CommissionFilter{Paid: &paid}, "id", 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 4)
			for _, row := range rows {
				require.NotNil(t, row.PaidAt)
				if row.ID == alreadyPaid.ID {
					continue
				}
				assert.WithinDuration(t, paidAt, *row.PaidAt, time.Second)
			}

			// The unselected seller keeps its pending row
			pending := false
			rows, err = commissionRepo.ByFilter(ctx, models.CommissionFilter{Paid: &pending}, "id", 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, untouched.ID, rows[0].SellerID)

			// Re-running the same id set marks nothing else
			affected, err = commissionRepo.MarkPaidByIDs(ctx, batch, utils.UTCNow())
			require.NoError(t, err)
			assert.Equal(t, int64(0), affected)
		})

		t.Run("MarkPaidByIDsLeavesLateCommissionsPending", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			seedCommission(t, seller.ID, day(0), "200.00", false)
			seedCommission(t, seller.ID, day(1), "100.00", false)

			groups, err := commissionRepo.PendingGroups(ctx)
			require.NoError(t, err)
			require.Len(t, groups, 1)
			require.Len(t, groups[0].CommissionIDs, 2)

			// A commission registered after the rollup must survive the batch
			late := seedCommission(t, seller.ID, day(2), "900.00", false)

			affected, err := commissionRepo.MarkPaidByIDs(ctx, groups[0].CommissionIDs, utils.UTCNow())
			require.NoError(t, err)
			assert.Equal(t, int64(2), affected)

			pending := false
			rows, err := commissionRepo.ByFilter(ctx, models.CommissionFilter{Paid: &pending}, "id", 0, 0)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, late.ID, rows[0].ID)
			assert.Nil(t, rows[0].PaidAt)
		})

		t.Run("SumPaidBetween", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			a := seedCommission(t, seller.ID, day(0), "200.00", false)
			b := seedCommission(t, seller.ID, day(1), "400.00", false)

			paidAt := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
			_, err = commissionRepo.MarkPaidByIDs(ctx, []uint{a.ID, b.ID}, paidAt)
			require.NoError(t, err)

			monthStart := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
			sum, err := commissionRepo.SumPaidBetween(ctx, monthStart, monthStart.AddDate(0, 1, 0))
			require.NoError(t, err)
			assert.Equal(t, "30.00", sum.StringFixed(2))

			sum, err = commissionRepo.SumPaidBetween(ctx, monthStart.AddDate(0, 1, 0), monthStart.AddDate(0, 2, 0))
			require.NoError(t, err)
			assert.True(t, sum.IsZero())
		})

		t.Run("SumBySaleDate", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			seedCommission(t, seller.ID, day(0), "200.00", false)
			seedCommission(t, seller.ID, day(1), "100.00", true)
			seedCommission(t, seller.ID, day(20), "999.00", false)

			sum, err := commissionRepo.SumBySaleDate(ctx, &seller.ID, day(0), day(1))
			require.NoError(t, err)
			assert.Equal(t, "15.00", sum.StringFixed(2))
		})

		t.Run("PaidHistoryGroupsByMonth", func(t *testing.T) {
			require.NoError(t, testDB.ClearAllTables())

			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			juneA := seedCommission(t, seller.ID, day(0), "200.00", false)
			juneB := seedCommission(t, seller.ID, day(1), "400.00", false)
			_, err = commissionRepo.MarkPaidByIDs(ctx, []uint{juneA.ID, juneB.ID}, time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC))
			require.NoError(t, err)

			julyA := seedCommission(t, seller.ID, day(30), "100.00", false)
			_, err = commissionRepo.MarkPaidByIDs(ctx, []uint{julyA.ID}, time.Date(2024, 7, 2, 12, 0, 0, 0, time.UTC))
			require.NoError(t, err)

			rows, err := commissionRepo.PaidHistory(ctx, &seller.ID, nil, nil)
			require.NoError(t, err)
			require.Len(t, rows, 2)

			june := rows[0]
			if june.Month != 6 {
				june = rows[1]
			}
			assert.Equal(t, 2024, june.Year)
			assert.Equal(t, "30.00", june.Total.StringFixed(2))
			assert.Equal(t, "600.00", june.SalesTotal.StringFixed(2))
			assert.Equal(t, int64(2), june.Count)

			// Range filter narrows to a single month
			start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
			end := time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC)
			rows, err = commissionRepo.PaidHistory(ctx, &seller.ID, &start, &end)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, 7, rows[0].Month)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAccountSessionRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		sessionRepo := repository.NewAccountSessionRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("TokenLookups", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)
			session, err := fixtures.CreateTestSession(seller.ID)
			require.NoError(t, err)

			found, err := sessionRepo.BySessionToken(ctx, session.SessionToken)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, session.ID, found.ID)

			require.NotNil(t, session.RefreshToken)
			found, err = sessionRepo.ByRefreshToken(ctx, *session.RefreshToken)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, session.ID, found.ID)
		})

		t.Run("ExpireSession", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)
			session, err := fixtures.CreateTestSession(seller.ID)
			require.NoError(t, err)

			require.NoError(t, sessionRepo.ExpireSession(ctx, session.ID))

			active, err := sessionRepo.ListActiveSessionsByAccount(ctx, seller.ID)
			require.NoError(t, err)
			assert.Empty(t, active)
		})

		t.Run("ExpireAllAccountSessions", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)
			_, err = fixtures.CreateTestSession(seller.ID)
			require.NoError(t, err)
			_, err = fixtures.CreateTestSession(seller.ID)
			require.NoError(t, err)

			require.NoError(t, sessionRepo.ExpireAllAccountSessions(ctx, seller.ID))

			active, err := sessionRepo.ListActiveSessionsByAccount(ctx, seller.ID)
			require.NoError(t, err)
			assert.Empty(t, active)
		})

		return nil
	})
	require.NoError(t, err)
}
