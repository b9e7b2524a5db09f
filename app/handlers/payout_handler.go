// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/painel-vendas/backend/app/dto"
	"github.com/painel-vendas/backend/app/middleware"
	businessflow "github.com/painel-vendas/backend/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// PayoutHandlerInterface defines the contract for payout handlers
type PayoutHandlerInterface interface {
	TrackingSummary(c fiber.Ctx) error
	ExecutePayout(c fiber.Ctx) error
	PaidHistory(c fiber.Ctx) error
	ExportPaidHistory(c fiber.Ctx) error
}

// PayoutHandler handles commission tracking and payout HTTP requests
type PayoutHandler struct {
	payoutFlow businessflow.PayoutFlow
	validator  *validator.Validate
}

// NewPayoutHandler creates a new payout handler
func NewPayoutHandler(payoutFlow businessflow.PayoutFlow) *PayoutHandler {
	return &PayoutHandler{
		payoutFlow: payoutFlow,
		validator:  validator.New(),
	}
}

func (h *PayoutHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *PayoutHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// TrackingSummary shows the commission tracking board
// @Summary Commission Tracking
// @Description Pending totals, this month's payouts and per-seller groups (admin only)
// @Tags Payouts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.TrackingSummaryResponse} "Tracking summary"
// @Router /api/v1/payouts/tracking [get]
func (h *PayoutHandler) TrackingSummary(c fiber.Ctx) error {
	result, err := h.payoutFlow.TrackingSummary(h.createRequestContext(c, "/api/v1/payouts/tracking"))
	if err != nil {
		log.Println("Tracking summary failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Tracking summary failed", "TRACKING_SUMMARY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Tracking summary", result)
}

// ExecutePayout runs a payout batch over the selected sellers
// @Summary Execute Payout
// @Description Mark all pending commissions of the selected sellers as paid and emit the payment report (admin only). Pass format=csv to download the report directly.
// @Tags Payouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ExecutePayoutRequest true "Selected sellers"
// @Param format query string false "Set to csv to receive the report file"
// @Success 200 {object} dto.APIResponse{data=dto.PayoutResultDTO} "Payout executed"
// @Failure 400 {object} dto.APIResponse "Empty selection or nothing pending"
// @Failure 409 {object} dto.APIResponse "Payout already running"
// @Router /api/v1/payouts [post]
func (h *PayoutHandler) ExecutePayout(c fiber.Ctx) error {
	actorID, ok := c.Locals("account_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.ExecutePayoutRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, csvBytes, err := h.payoutFlow.ExecutePayoutBatch(h.createRequestContext(c, "/api/v1/payouts"), actorID, &req, metadata)
	if err != nil {
		if businessflow.IsNoSelection(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "No sellers selected", "NO_SELECTION", nil)
		}
		if businessflow.IsNoPendingCommissions(err) {
			middleware.RecordPayoutBatch("empty")
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Selected sellers have no pending commissions", "NO_PENDING_COMMISSIONS", nil)
		}
		if businessflow.IsPayoutAlreadyRunning(err) {
			middleware.RecordPayoutBatch("busy")
			return h.ErrorResponse(c, fiber.StatusConflict, "A payout batch is already running", "PAYOUT_ALREADY_RUNNING", nil)
		}

		middleware.RecordPayoutBatch("error")
		log.Println("Payout failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Payout failed", "PAYOUT_FAILED", nil)
	}
	middleware.RecordPayoutBatch("success")

	if c.Query("format") == "csv" {
		c.Set("Content-Type", "text/csv; charset=utf-8")
		c.Set("Content-Disposition", "attachment; filename="+result.ReportFilename)
		return c.Send(csvBytes)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Payout executed", result)
}

// PaidHistory lists paid commissions grouped by seller and month
// @Summary Paid History
// @Description Paid commissions per seller and payment month (admin only)
// @Tags Payouts
// @Produce json
// @Security BearerAuth
// @Param seller_id query int false "Seller filter"
// @Param start_date query string false "Paid-at range start (YYYY-MM-DD)"
// @Param end_date query string false "Paid-at range end (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.PaidHistoryResponse} "Paid history"
// @Router /api/v1/payouts/history [get]
func (h *PayoutHandler) PaidHistory(c fiber.Ctx) error {
	var req dto.PaidHistoryRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.payoutFlow.PaidHistory(h.createRequestContext(c, "/api/v1/payouts/history"), &req)
	if err != nil {
		if businessflow.IsStartDateAfterEndDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Start date cannot be after end date", "INVALID_DATE_RANGE", nil)
		}

		log.Println("Paid history failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Paid history failed", "PAID_HISTORY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Paid history", result)
}

// ExportPaidHistory downloads the paid-commission history workbook
// @Summary Export Paid History
// @Description Download the paid-commission history as an XLSX workbook (admin only)
// @Tags Payouts
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param seller_id query int false "Seller filter"
// @Param start_date query string false "Paid-at range start (YYYY-MM-DD)"
// @Param end_date query string false "Paid-at range end (YYYY-MM-DD)"
// @Success 200 {file} binary "Workbook"
// @Router /api/v1/payouts/history/export [get]
func (h *PayoutHandler) ExportPaidHistory(c fiber.Ctx) error {
	var req dto.PaidHistoryRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	filename, data, err := h.payoutFlow.ExportPaidHistory(h.createRequestContext(c, "/api/v1/payouts/history/export"), &req, metadata)
	if err != nil {
		if businessflow.IsStartDateAfterEndDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Start date cannot be after end date", "INVALID_DATE_RANGE", nil)
		}

		log.Println("Paid history export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Paid history export failed", "PAID_HISTORY_EXPORT_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *PayoutHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}
