package dto

// PeriodStatsDTO summarizes sales over a day or a longer period
type PeriodStatsDTO struct {
	Total         string `json:"total" example:"200.00"`
	Count         int64  `json:"count" example:"4"`
	AverageTicket string `json:"average_ticket" example:"50.00"`
}

// MonthRefDTO points at a calendar month for dashboard navigation
type MonthRefDTO struct {
	Year  int `json:"year" example:"2024"`
	Month int `json:"month" example:"5"`
}

// SellerDashboardRequest selects the month shown on the seller dashboard.
// Both fields default to the current month.
type SellerDashboardRequest struct {
	Year  *int `query:"year" validate:"omitempty,min=2000,max=2100"`
	Month *int `query:"month" validate:"omitempty,min=1,max=12"`
}

// SellerDashboardResponse is the seller's own view of recent performance
type SellerDashboardResponse struct {
	SellerID        uint           `json:"seller_id" example:"7"`
	SellerName      string         `json:"seller_name" example:"Maria Silva"`
	Year            int            `json:"year" example:"2024"`
	Month           int            `json:"month" example:"5"`
	Today           PeriodStatsDTO `json:"today"`
	Yesterday       PeriodStatsDTO `json:"yesterday"`
	MonthStats      PeriodStatsDTO `json:"month_stats"`
	MonthCommission string         `json:"month_commission" example:"82.50"`
	PreviousMonth   MonthRefDTO    `json:"previous_month"`
	NextMonth       *MonthRefDTO   `json:"next_month,omitempty"` // absent when viewing the current month
	RecentSales     []SaleDTO      `json:"recent_sales"`
}

// AdminOverviewRequest selects the reporting period. Period is one of
// today, week, month, year or custom; custom requires both dates.
type AdminOverviewRequest struct {
	Period    string  `query:"period" validate:"omitempty,oneof=today week month year custom" example:"month"`
	StartDate *string `query:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   *string `query:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// SellerBreakdownDTO is one seller's share of the period totals
type SellerBreakdownDTO struct {
	SellerID   uint   `json:"seller_id" example:"3"`
	SellerName string `json:"seller_name" example:"Maria Silva"`
	Total      string `json:"total" example:"3000.00"`
	Count      int64  `json:"count" example:"15"`
}

// AdminOverviewResponse is the storewide administrative dashboard
type AdminOverviewResponse struct {
	Period          string               `json:"period" example:"month"`
	StartDate       string               `json:"start_date" example:"2024-05-01"`
	EndDate         string               `json:"end_date" example:"2024-05-31"`
	SalesCount      int64                `json:"sales_count" example:"120"`
	SalesTotal      string               `json:"sales_total" example:"24800.00"`
	AverageSale     string               `json:"average_sale" example:"206.67"`
	DailyAverage    string               `json:"daily_average" example:"800.00"`
	CommissionTotal string               `json:"commission_total" example:"1240.00"`
	SalesVariation  string               `json:"sales_variation" example:"-12.50"`
	SellerBreakdown []SellerBreakdownDTO `json:"seller_breakdown"`
	TotalSellers    int64                `json:"total_sellers" example:"14"`
	ActiveSellers   []SellerDTO          `json:"active_sellers"`
	UnpaidTotal     string               `json:"unpaid_total" example:"320.00"`
}
