// Package tests contains integration and unit tests for the sales administration system
package tests

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	businessflow "github.com/painel-vendas/backend/business_flow"
	"github.com/painel-vendas/backend/models"
	"github.com/painel-vendas/backend/utils"
)

func TestCommissionValue(t *testing.T) {
	t.Run("FivePercentOfTwoHundred", func(t *testing.T) {
		value := models.CommissionValue(decimal.NewFromInt(200), decimal.NewFromInt(5))
		assert.Equal(t, "10.00", value.StringFixed(2))
	})

	t.Run("RoundsHalfUpToTwoPlaces", func(t *testing.T) {
		// 33.33 × 7.5% = 2.49975 → 2.50
		value := models.CommissionValue(decimal.RequireFromString("33.33"), decimal.RequireFromString("7.5"))
		assert.Equal(t, "2.50", value.StringFixed(2))

		// 10.01 × 2.5% = 0.25025 → 0.25
		value = models.CommissionValue(decimal.RequireFromString("10.01"), decimal.RequireFromString("2.5"))
		assert.Equal(t, "0.25", value.StringFixed(2))
	})

	t.Run("ZeroPercentageYieldsZero", func(t *testing.T) {
		value := models.CommissionValue(decimal.NewFromInt(500), decimal.Zero)
		assert.True(t, value.IsZero())
	})
}

func TestCommissionRecalculate(t *testing.T) {
	commission := &models.Commission{
		Percentage: decimal.NewFromInt(5),
		Value:      models.CommissionValue(decimal.NewFromInt(200), decimal.NewFromInt(5)),
	}

	// Correcting the sale amount keeps the captured percentage
	commission.Recalculate(decimal.NewFromInt(300))
	assert.Equal(t, "5", commission.Percentage.String())
	assert.Equal(t, "15.00", commission.Value.StringFixed(2))
}

func TestApplyPaidTransition(t *testing.T) {
	t.Run("MarkingPaidSetsTimestamp", func(t *testing.T) {
		commission := &models.Commission{}
		now := utils.UTCNow()

		commission.ApplyPaidTransition(true, now)

		assert.True(t, commission.Paid)
		require.NotNil(t, commission.PaidAt)
		assert.Equal(t, now, *commission.PaidAt)
	})

	t.Run("RemarkingPaidKeepsOriginalTimestamp", func(t *testing.T) {
		commission := &models.Commission{}
		first := utils.UTCNow()
		commission.ApplyPaidTransition(true, first)

		later := first.Add(48 * time.Hour)
		commission.ApplyPaidTransition(true, later)

		assert.True(t, commission.Paid)
		require.NotNil(t, commission.PaidAt)
		assert.Equal(t, first, *commission.PaidAt)
	})

	t.Run("UnmarkingClearsTimestamp", func(t *testing.T) {
		commission := &models.Commission{}
		commission.ApplyPaidTransition(true, utils.UTCNow())

		commission.ApplyPaidTransition(false, utils.UTCNow())

		assert.False(t, commission.Paid)
		assert.Nil(t, commission.PaidAt)
	})
}

func TestParseRole(t *testing.T) {
	t.Run("AcceptsKnownRoles", func(t *testing.T) {
		for _, raw := range []string{"admin", "staff", "seller", "box"} {
			role, err := models.ParseRole(raw)
			require.NoError(t, err)
			assert.Equal(t, raw, role.String())
			assert.True(t, role.Valid())
		}
	})

	t.Run("RejectsUnknownRole", func(t *testing.T) {
		_, err := models.ParseRole("manager")
		assert.Error(t, err)
		assert.False(t, models.Role("manager").Valid())
	})
}

func TestDashboardPath(t *testing.T) {
	assert.Equal(t, "/dashboard/admin", models.DashboardPath(models.RoleAdmin))
	assert.Equal(t, "/dashboard/admin", models.DashboardPath(models.RoleStaff))
	assert.Equal(t, "/dashboard/seller", models.DashboardPath(models.RoleSeller))
	assert.Equal(t, "/dashboard/box", models.DashboardPath(models.RoleBox))
	assert.Equal(t, "/login", models.DashboardPath(models.Role("unknown")))
}

func TestSessionValidity(t *testing.T) {
	t.Run("ActiveSessionWithFutureExpiry", func(t *testing.T) {
		session := &models.AccountSession{
			IsActive:  utils.ToPtr(true),
			ExpiresAt: utils.UTCNowAdd(time.Hour),
		}
		assert.False(t, session.Expired())
		assert.True(t, session.IsValid())
	})

	t.Run("PastExpiryInvalidatesSession", func(t *testing.T) {
		session := &models.AccountSession{
			IsActive:  utils.ToPtr(true),
			ExpiresAt: utils.UTCNowAdd(-time.Minute),
		}
		assert.True(t, session.Expired())
		assert.False(t, session.IsValid())
	})

	t.Run("DeactivatedSessionIsInvalid", func(t *testing.T) {
		session := &models.AccountSession{
			IsActive:  utils.ToPtr(false),
			ExpiresAt: utils.UTCNowAdd(time.Hour),
		}
		assert.False(t, session.Expired())
		assert.False(t, session.IsValid())
	})
}

func TestAccountNames(t *testing.T) {
	t.Run("FullNameJoinsParts", func(t *testing.T) {
		account := &models.Account{FirstName: "Maria", LastName: "Silva"}
		assert.Equal(t, "Maria Silva", account.FullName())

		account = &models.Account{FirstName: "Maria"}
		assert.Equal(t, "Maria", account.FullName())
	})

	t.Run("ShortNameFallsBackToEmailThenCPF", func(t *testing.T) {
		email := "maria@lojista.com.br"
		cpf := "52998224725"

		account := &models.Account{FirstName: "Maria", Email: &email, CPF: &cpf}
		assert.Equal(t, "Maria", account.ShortName())

		account = &models.Account{Email: &email, CPF: &cpf}
		assert.Equal(t, "maria", account.ShortName())

		account = &models.Account{CPF: &cpf}
		assert.Equal(t, cpf, account.ShortName())
	})

	t.Run("TitleCaseName", func(t *testing.T) {
		assert.Equal(t, "Maria Da Silva", models.TitleCaseName("  MARIA DA SILVA "))
	})
}

func TestEffectiveCommissionRate(t *testing.T) {
	account := &models.Account{}
	assert.True(t, account.EffectiveCommissionRate().IsZero())

	rate := decimal.RequireFromString("7.50")
	account.CommissionRate = &rate
	assert.Equal(t, "7.50", account.EffectiveCommissionRate().StringFixed(2))
}

func TestSalesVariation(t *testing.T) {
	t.Run("BothEmpty", func(t *testing.T) {
		assert.Equal(t, "0.00", businessflow.SalesVariation(decimal.Zero, decimal.Zero))
	})

	t.Run("PrecedingEmpty", func(t *testing.T) {
		assert.Equal(t, "100.00", businessflow.SalesVariation(decimal.Zero, decimal.NewFromInt(500)))
	})

	t.Run("RelativeChange", func(t *testing.T) {
		assert.Equal(t, "-12.50", businessflow.SalesVariation(decimal.NewFromInt(800), decimal.NewFromInt(700)))
		assert.Equal(t, "25.00", businessflow.SalesVariation(decimal.NewFromInt(400), decimal.NewFromInt(500)))
	})
}
