package businessflow

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/painel-vendas/backend/app/dto"
	"github.com/painel-vendas/backend/config"
	"github.com/painel-vendas/backend/utils"
)

func TestResolvePeriod(t *testing.T) {
	now := time.Date(2024, 5, 15, 10, 30, 0, 0, time.UTC)
	today := utils.DateOnly(now)

	t.Run("Today", func(t *testing.T) {
		start, end, err := resolvePeriod("today", nil, nil, now)
		require.NoError(t, err)
		assert.Equal(t, today, start)
		assert.Equal(t, today, end)
	})

	t.Run("WeekIsSevenInclusiveDays", func(t *testing.T) {
		start, end, err := resolvePeriod("week", nil, nil, now)
		require.NoError(t, err)
		assert.Equal(t, today.AddDate(0, 0, -6), start)
		assert.Equal(t, today, end)
	})

	t.Run("MonthStartsOnFirst", func(t *testing.T) {
		start, end, err := resolvePeriod("month", nil, nil, now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, today, end)
	})

	t.Run("YearStartsOnJanuaryFirst", func(t *testing.T) {
		start, _, err := resolvePeriod("year", nil, nil, now)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), start)
	})

	t.Run("CustomRange", func(t *testing.T) {
		startStr, endStr := "2024-03-01", "2024-03-10"
		start, end, err := resolvePeriod("custom", &startStr, &endStr, now)
		require.NoError(t, err)
		assert.Equal(t, "2024-03-01", start.Format("2006-01-02"))
		assert.Equal(t, "2024-03-10", end.Format("2006-01-02"))
	})

	t.Run("CustomRequiresBothBounds", func(t *testing.T) {
		startStr := "2024-03-01"
		_, _, err := resolvePeriod("custom", &startStr, nil, now)
		assert.ErrorIs(t, err, ErrMissingDate)
	})

	t.Run("CustomInvertedRange", func(t *testing.T) {
		startStr, endStr := "2024-03-10", "2024-03-01"
		_, _, err := resolvePeriod("custom", &startStr, &endStr, now)
		assert.ErrorIs(t, err, ErrStartDateAfterEndDate)
	})

	t.Run("UnknownPeriodRejected", func(t *testing.T) {
		_, _, err := resolvePeriod("fortnight", nil, nil, now)
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})
}

func TestParsePaidRange(t *testing.T) {
	t.Run("EmptyRequestMeansUnbounded", func(t *testing.T) {
		start, end, err := parsePaidRange(&dto.PaidHistoryRequest{})
		require.NoError(t, err)
		assert.Nil(t, start)
		assert.Nil(t, end)
	})

	t.Run("EndDateCoversWholeDay", func(t *testing.T) {
		endStr := "2024-05-10"
		_, end, err := parsePaidRange(&dto.PaidHistoryRequest{EndDate: &endStr})
		require.NoError(t, err)
		require.NotNil(t, end)
		assert.Equal(t, "2024-05-10", end.Format("2006-01-02"))
		assert.Equal(t, 23, end.Hour())
	})

	t.Run("InvertedRangeRejected", func(t *testing.T) {
		startStr, endStr := "2024-06-01", "2024-05-01"
		_, _, err := parsePaidRange(&dto.PaidHistoryRequest{StartDate: &startStr, EndDate: &endStr})
		assert.ErrorIs(t, err, ErrStartDateAfterEndDate)
	})
}

func TestInclusiveDaySpan(t *testing.T) {
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, inclusiveDaySpan(day, day))
	assert.Equal(t, 7, inclusiveDaySpan(day, day.AddDate(0, 0, 6)))
	// Never less than one, even for inverted input
	assert.Equal(t, 1, inclusiveDaySpan(day, day.AddDate(0, 0, -3)))
}

func TestAverageTicket(t *testing.T) {
	assert.Equal(t, "0.00", averageTicket(decimal.Zero, 0))
	assert.Equal(t, "50.00", averageTicket(decimal.NewFromInt(200), 4))
	assert.Equal(t, "66.67", averageTicket(decimal.NewFromInt(200), 3))
}

func TestNormalizePagination(t *testing.T) {
	t.Run("ZeroesGetDefaults", func(t *testing.T) {
		page, pageSize, err := NormalizePagination(0, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, page)
		assert.Equal(t, 20, pageSize)
	})

	t.Run("NegativePageRejected", func(t *testing.T) {
		_, _, err := NormalizePagination(-1, 10)
		assert.ErrorIs(t, err, ErrInvalidPage)
	})

	t.Run("OversizedPageRejected", func(t *testing.T) {
		_, _, err := NormalizePagination(1, 101)
		assert.ErrorIs(t, err, ErrInvalidPageSize)
	})
}

func TestValidateCommissionRate(t *testing.T) {
	assert.NoError(t, ValidateCommissionRate(decimal.Zero))
	assert.NoError(t, ValidateCommissionRate(decimal.NewFromInt(100)))
	assert.ErrorIs(t, ValidateCommissionRate(decimal.NewFromInt(101)), ErrCommissionRateRange)
	assert.ErrorIs(t, ValidateCommissionRate(decimal.NewFromInt(-1)), ErrCommissionRateRange)
}

func TestRedisKeyPrefixing(t *testing.T) {
	assert.Equal(t, "painel:payout:batch:lock", redisKey(config.CacheConfig{RedisPrefix: "painel"}, utils.PayoutLockKey))
	assert.Equal(t, "payout:batch:lock", redisKey(config.CacheConfig{}, utils.PayoutLockKey))
}

func TestBusinessErrorUnwrapping(t *testing.T) {
	err := NewBusinessError("PAYOUT_FAILED", "Payout batch failed", ErrNoPendingCommissions)

	assert.True(t, IsNoPendingCommissions(err))
	assert.False(t, IsPayoutAlreadyRunning(err))
	assert.Contains(t, err.Error(), "Payout batch failed")
	assert.Equal(t, "PAYOUT_FAILED", err.Code)
}
