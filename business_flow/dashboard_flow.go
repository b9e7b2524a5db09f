// Package businessflow contains the business logic for the role dashboards
package businessflow

import (
	"context"
	"time"

	"github.com/painel-vendas/backend/app/dto"
	"github.com/painel-vendas/backend/models"
	"github.com/painel-vendas/backend/repository"
	"github.com/painel-vendas/backend/utils"
	"github.com/shopspring/decimal"
)

// DashboardFlow aggregates the numbers behind the seller and admin dashboards
type DashboardFlow interface {
	SellerDashboard(ctx context.Context, sellerID uint, request *dto.SellerDashboardRequest) (*dto.SellerDashboardResponse, error)
	AdminOverview(ctx context.Context, request *dto.AdminOverviewRequest) (*dto.AdminOverviewResponse, error)
}

// DashboardFlowImpl implements the dashboard business flow
type DashboardFlowImpl struct {
	saleRepo       repository.SaleRepository
	accountRepo    repository.AccountRepository
	commissionRepo repository.CommissionRepository
}

// NewDashboardFlow creates a new dashboard flow instance
func NewDashboardFlow(
	saleRepo repository.SaleRepository,
	accountRepo repository.AccountRepository,
	commissionRepo repository.CommissionRepository,
) DashboardFlow {
	return &DashboardFlowImpl{
		saleRepo:       saleRepo,
		accountRepo:    accountRepo,
		commissionRepo: commissionRepo,
	}
}

// SellerDashboard returns the seller's numbers for the selected month plus
// today and yesterday. Month navigation never goes past the current month.
func (df *DashboardFlowImpl) SellerDashboard(ctx context.Context, sellerID uint, request *dto.SellerDashboardRequest) (*dto.SellerDashboardResponse, error) {
	seller, err := df.accountRepo.ByID(ctx, sellerID)
	if err != nil {
		return nil, NewBusinessError("SELLER_DASHBOARD_FAILED", "Failed to load seller", err)
	}
	if seller == nil || !seller.IsSeller() {
		return nil, NewBusinessError("SELLER_DASHBOARD_FAILED", "Failed to load seller", ErrSellerNotFound)
	}

	now, err := utils.BusinessNow()
	if err != nil {
		return nil, NewBusinessError("SELLER_DASHBOARD_FAILED", "Failed to resolve business time", err)
	}

	year, month := now.Year(), int(now.Month())
	if request.Year != nil {
		year = *request.Year
	}
	if request.Month != nil {
		month = *request.Month
	}
	// Never browse past the current month
	if year > now.Year() || (year == now.Year() && month > int(now.Month())) {
		year, month = now.Year(), int(now.Month())
	}

	today := utils.DateOnly(now)
	yesterday := today.AddDate(0, 0, -1)
	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, -1)

	todayStats, err := df.periodStats(ctx, &sellerID, today, today)
	if err != nil {
		return nil, err
	}
	yesterdayStats, err := df.periodStats(ctx, &sellerID, yesterday, yesterday)
	if err != nil {
		return nil, err
	}
	monthStats, err := df.periodStats(ctx, &sellerID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	monthCommission, err := df.commissionRepo.SumBySaleDate(ctx, &sellerID, monthStart, monthEnd)
	if err != nil {
		return nil, NewBusinessError("SELLER_DASHBOARD_FAILED", "Failed to total month commission", err)
	}

	recent, err := df.saleRepo.ListRecent(ctx, &sellerID, 10, 0)
	if err != nil {
		return nil, NewBusinessError("SELLER_DASHBOARD_FAILED", "Failed to list recent sales", err)
	}
	recentDTOs := make([]dto.SaleDTO, 0, len(recent))
	for _, sale := range recent {
		recentDTOs = append(recentDTOs, ToSaleDTO(*sale))
	}

	prev := monthStart.AddDate(0, -1, 0)
	resp := &dto.SellerDashboardResponse{
		SellerID:        seller.ID,
		SellerName:      seller.FullName(),
		Year:            year,
		Month:           month,
		Today:           todayStats,
		Yesterday:       yesterdayStats,
		MonthStats:      monthStats,
		MonthCommission: monthCommission.StringFixed(2),
		PreviousMonth:   dto.MonthRefDTO{Year: prev.Year(), Month: int(prev.Month())},
		RecentSales:     recentDTOs,
	}
	if year != now.Year() || month != int(now.Month()) {
		next := monthStart.AddDate(0, 1, 0)
		resp.NextMonth = &dto.MonthRefDTO{Year: next.Year(), Month: int(next.Month())}
	}

	return resp, nil
}

// AdminOverview aggregates storewide numbers for the selected period and
// compares them with the immediately preceding period of equal length.
func (df *DashboardFlowImpl) AdminOverview(ctx context.Context, request *dto.AdminOverviewRequest) (*dto.AdminOverviewResponse, error) {
	now, err := utils.BusinessNow()
	if err != nil {
		return nil, NewBusinessError("ADMIN_OVERVIEW_FAILED", "Failed to resolve business time", err)
	}

	period := request.Period
	if period == "" {
		period = "month"
	}

	start, end, err := resolvePeriod(period, request.StartDate, request.EndDate, now)
	if err != nil {
		return nil, NewBusinessError("ADMIN_OVERVIEW_VALIDATION_FAILED", "Overview validation failed", err)
	}

	current, err := df.saleRepo.AggregateBetween(ctx, nil, start, end)
	if err != nil {
		return nil, NewBusinessError("ADMIN_OVERVIEW_FAILED", "Failed to total sales", err)
	}

	// Preceding window of the same inclusive length
	span := inclusiveDaySpan(start, end)
	prevEnd := start.AddDate(0, 0, -1)
	prevStart := prevEnd.AddDate(0, 0, -(span - 1))
	previous, err := df.saleRepo.AggregateBetween(ctx, nil, prevStart, prevEnd)
	if err != nil {
		return nil, NewBusinessError("ADMIN_OVERVIEW_FAILED", "Failed to total preceding period", err)
	}

	commissionTotal, err := df.commissionRepo.SumBySaleDate(ctx, nil, start, end)
	if err != nil {
		return nil, NewBusinessError("ADMIN_OVERVIEW_FAILED", "Failed to total commissions", err)
	}

	breakdownRows, err := df.saleRepo.AggregateBySellerBetween(ctx, start, end)
	if err != nil {
		return nil, NewBusinessError("ADMIN_OVERVIEW_FAILED", "Failed to break down sellers", err)
	}
	breakdown := make([]dto.SellerBreakdownDTO, 0, len(breakdownRows))
	for _, row := range breakdownRows {
		breakdown = append(breakdown, dto.SellerBreakdownDTO{
			SellerID:   row.SellerID,
			SellerName: row.SellerName,
			Total:      row.Total.StringFixed(2),
			Count:      row.Count,
		})
	}

	totalSellers, err := df.accountRepo.Count(ctx, models.AccountFilter{Role: utils.ToPtr(models.RoleSeller)})
	if err != nil {
		return nil, NewBusinessError("ADMIN_OVERVIEW_FAILED", "Failed to count sellers", err)
	}
	activeSellers, err := df.accountRepo.ListSellers(ctx, true, 0, 0)
	if err != nil {
		return nil, NewBusinessError("ADMIN_OVERVIEW_FAILED", "Failed to list active sellers", err)
	}
	activeDTOs := make([]dto.SellerDTO, 0, len(activeSellers))
	for _, seller := range activeSellers {
		activeDTOs = append(activeDTOs, ToSellerDTO(*seller))
	}

	unpaid, err := df.commissionRepo.Totals(ctx, nil)
	if err != nil {
		return nil, NewBusinessError("ADMIN_OVERVIEW_FAILED", "Failed to total unpaid commissions", err)
	}

	return &dto.AdminOverviewResponse{
		Period:          period,
		StartDate:       start.Format("2006-01-02"),
		EndDate:         end.Format("2006-01-02"),
		SalesCount:      current.Count,
		SalesTotal:      current.Total.StringFixed(2),
		AverageSale:     averageTicket(current.Total, current.Count),
		DailyAverage:    current.Total.Div(decimal.NewFromInt(int64(span))).Round(2).StringFixed(2),
		CommissionTotal: commissionTotal.StringFixed(2),
		SalesVariation:  SalesVariation(previous.Total, current.Total),
		SellerBreakdown: breakdown,
		TotalSellers:    totalSellers,
		ActiveSellers:   activeDTOs,
		UnpaidTotal:     unpaid.Pending.StringFixed(2),
	}, nil
}

// Private helper methods

func (df *DashboardFlowImpl) periodStats(ctx context.Context, sellerID *uint, from, to time.Time) (dto.PeriodStatsDTO, error) {
	aggregate, err := df.saleRepo.AggregateBetween(ctx, sellerID, from, to)
	if err != nil {
		return dto.PeriodStatsDTO{}, NewBusinessError("DASHBOARD_STATS_FAILED", "Failed to aggregate sales", err)
	}

	return dto.PeriodStatsDTO{
		Total:         aggregate.Total.StringFixed(2),
		Count:         aggregate.Count,
		AverageTicket: averageTicket(aggregate.Total, aggregate.Count),
	}, nil
}

func averageTicket(total decimal.Decimal, count int64) string {
	if count == 0 {
		return decimal.Zero.StringFixed(2)
	}
	return total.Div(decimal.NewFromInt(count)).Round(2).StringFixed(2)
}

// SalesVariation compares two period totals: 0 when both are empty, 100 when
// only the preceding one is empty, otherwise the relative change in percent
// rounded to two fraction digits.
func SalesVariation(previous, current decimal.Decimal) string {
	if previous.IsZero() && current.IsZero() {
		return decimal.Zero.StringFixed(2)
	}
	if previous.IsZero() {
		return decimal.NewFromInt(100).StringFixed(2)
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2).StringFixed(2)
}

// inclusiveDaySpan counts the days in [start, end], never less than one
func inclusiveDaySpan(start, end time.Time) int {
	span := int(end.Sub(start).Hours()/24) + 1
	if span < 1 {
		return 1
	}
	return span
}

// resolvePeriod turns a named reporting period into an inclusive date range
// ending today. Custom periods require both bounds.
func resolvePeriod(period string, startDate, endDate *string, now time.Time) (time.Time, time.Time, error) {
	today := utils.DateOnly(now)

	switch period {
	case "today":
		return today, today, nil
	case "week":
		return today.AddDate(0, 0, -6), today, nil
	case "month":
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), today, nil
	case "year":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), today, nil
	case "custom":
		if startDate == nil || endDate == nil {
			return time.Time{}, time.Time{}, ErrMissingDate
		}
		start, err := time.Parse("2006-01-02", *startDate)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end, err := time.Parse("2006-01-02", *endDate)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if start.After(end) {
			return time.Time{}, time.Time{}, ErrStartDateAfterEndDate
		}
		return start, end, nil
	default:
		return time.Time{}, time.Time{}, ErrInvalidPeriod
	}
}
