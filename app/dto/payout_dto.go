package dto

// TrackingSummaryResponse is the commission tracking board: how much is
// ready to pay out and what has already been paid this month.
type TrackingSummaryResponse struct {
	ReadyTotal     string            `json:"ready_total" example:"320.00"`
	PaidMonthTotal string            `json:"paid_month_total" example:"1200.00"`
	PendingGroups  []PendingGroupDTO `json:"pending_groups"`
}

// PendingGroupDTO is the per-seller rollup of unpaid commissions
type PendingGroupDTO struct {
	SellerID      uint   `json:"seller_id" example:"3"`
	SellerName    string `json:"seller_name" example:"Maria Silva"`
	Total         string `json:"total" example:"150.00"`
	SalesTotal    string `json:"sales_total" example:"3000.00"`
	Count         int64  `json:"count" example:"9"`
	CommissionIDs []uint `json:"commission_ids" example:"11,14,20"`
}

// ExecutePayoutRequest selects the sellers whose pending commissions get paid
type ExecutePayoutRequest struct {
	SellerIDs []uint `json:"seller_ids" validate:"required,min=1,dive,required" example:"3,9"`
}

// PayoutResultDTO reports the outcome of a payout batch
type PayoutResultDTO struct {
	SellersPaid     int            `json:"sellers_paid" example:"2"`
	CommissionsPaid int64          `json:"commissions_paid" example:"14"`
	TotalPaid       string         `json:"total_paid" example:"470.00"`
	PaidAt          string         `json:"paid_at" example:"2024-02-05T12:00:00Z"`
	Report          []PayoutRowDTO `json:"report"`
	ReportFilename  string         `json:"report_filename" example:"relatorio_pagamento_2024-02-05.csv"`
}

// PayoutRowDTO is one line of the payout report
type PayoutRowDTO struct {
	SellerID   uint   `json:"seller_id" example:"3"`
	SellerName string `json:"seller_name" example:"Maria Silva"`
	Total      string `json:"total" example:"150.00"`
}

// PaidHistoryRequest filters the paid-commission history
type PaidHistoryRequest struct {
	SellerID  *uint   `query:"seller_id"`
	StartDate *string `query:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   *string `query:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// PaidHistoryResponse lists paid commissions grouped by seller and month
type PaidHistoryResponse struct {
	Entries []PaidHistoryEntryDTO `json:"entries"`
}

// PaidHistoryEntryDTO is the per-seller, per-month rollup of paid commissions
type PaidHistoryEntryDTO struct {
	SellerID   uint   `json:"seller_id" example:"3"`
	SellerName string `json:"seller_name" example:"Maria Silva"`
	Year       int    `json:"year" example:"2024"`
	Month      int    `json:"month" example:"2"`
	Total      string `json:"total" example:"470.00"`
	SalesTotal string `json:"sales_total" example:"9400.00"`
	Count      int64  `json:"count" example:"14"`
}
