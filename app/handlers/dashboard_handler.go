// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/painel-vendas/backend/app/dto"
	businessflow "github.com/painel-vendas/backend/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// DashboardHandlerInterface defines the contract for dashboard handlers
type DashboardHandlerInterface interface {
	SellerDashboard(c fiber.Ctx) error
	AdminOverview(c fiber.Ctx) error
	BoxDashboard(c fiber.Ctx) error
}

// DashboardHandler handles dashboard HTTP requests
type DashboardHandler struct {
	dashboardFlow businessflow.DashboardFlow
	validator     *validator.Validate
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardFlow businessflow.DashboardFlow) *DashboardHandler {
	return &DashboardHandler{
		dashboardFlow: dashboardFlow,
		validator:     validator.New(),
	}
}

func (h *DashboardHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *DashboardHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// SellerDashboard shows the authenticated seller's numbers
// @Summary Seller Dashboard
// @Description Today, yesterday and selected-month stats with recent sales (seller only)
// @Tags Dashboards
// @Produce json
// @Security BearerAuth
// @Param year query int false "Selected year"
// @Param month query int false "Selected month"
// @Success 200 {object} dto.APIResponse{data=dto.SellerDashboardResponse} "Dashboard"
// @Router /api/v1/dashboard/seller [get]
func (h *DashboardHandler) SellerDashboard(c fiber.Ctx) error {
	sellerID, ok := c.Locals("account_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.SellerDashboardRequest
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

	result, err := h.dashboardFlow.SellerDashboard(h.createRequestContext(c, "/api/v1/dashboard/seller"), sellerID, &req)
	if err != nil {
		if businessflow.IsSellerNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Seller not found", "SELLER_NOT_FOUND", nil)
		}

		log.Println("Seller dashboard failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Seller dashboard failed", "SELLER_DASHBOARD_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Dashboard", result)
}

// AdminOverview shows storewide numbers for a reporting period
// @Summary Admin Overview
// @Description Storewide stats with per-seller breakdown and period comparison (admin only)
// @Tags Dashboards
// @Produce json
// @Security BearerAuth
// @Param period query string false "today, week, month, year or custom"
// @Param start_date query string false "Custom period start (YYYY-MM-DD)"
// @Param end_date query string false "Custom period end (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.AdminOverviewResponse} "Overview"
// @Router /api/v1/dashboard/admin [get]
func (h *DashboardHandler) AdminOverview(c fiber.Ctx) error {
	var req dto.AdminOverviewRequest
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

	result, err := h.dashboardFlow.AdminOverview(h.createRequestContext(c, "/api/v1/dashboard/admin"), &req)
	if err != nil {
		if businessflow.IsStartDateAfterEndDate(err) || businessflow.IsMissingDate(err) || businessflow.IsInvalidPeriod(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid reporting period", "INVALID_PERIOD", nil)
		}

		log.Println("Admin overview failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Admin overview failed", "ADMIN_OVERVIEW_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Overview", result)
}

// BoxDashboard shows the storewide numbers for the current day. The box role
// only ever sees today, so the period is fixed server-side.
// @Summary Box Dashboard
// @Description Storewide stats for today (box role)
// @Tags Dashboards
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AdminOverviewResponse} "Box dashboard"
// @Router /api/v1/dashboard/box [get]
func (h *DashboardHandler) BoxDashboard(c fiber.Ctx) error {
	req := dto.AdminOverviewRequest{Period: "today"}

	result, err := h.dashboardFlow.AdminOverview(h.createRequestContext(c, "/api/v1/dashboard/box"), &req)
	if err != nil {
		log.Println("Box dashboard failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Box dashboard failed", "BOX_DASHBOARD_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Box dashboard", result)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *DashboardHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}
