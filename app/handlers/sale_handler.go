// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/painel-vendas/backend/app/dto"
	businessflow "github.com/painel-vendas/backend/business_flow"
	"github.com/painel-vendas/backend/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// SaleHandlerInterface defines the contract for sale ledger handlers
type SaleHandlerInterface interface {
	CreateSale(c fiber.Ctx) error
	UpdateSale(c fiber.Ctx) error
	DeleteSale(c fiber.Ctx) error
	ListSales(c fiber.Ctx) error
}

// SaleHandler handles sale ledger HTTP requests
type SaleHandler struct {
	saleFlow  businessflow.SaleFlow
	validator *validator.Validate
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleFlow businessflow.SaleFlow) *SaleHandler {
	return &SaleHandler{
		saleFlow:  saleFlow,
		validator: validator.New(),
	}
}

func (h *SaleHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *SaleHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateSale registers the authenticated seller's total for one day
// @Summary Create Sale
// @Description Register a daily sale total (seller only)
// @Tags Sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSaleRequest true "Sale data"
// @Success 201 {object} dto.APIResponse{data=dto.SaleDTO} "Sale created"
// @Failure 400 {object} dto.APIResponse "Validation error or duplicate date"
// @Router /api/v1/sales [post]
func (h *SaleHandler) CreateSale(c fiber.Ctx) error {
	sellerID, ok := c.Locals("account_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	var req dto.CreateSaleRequest
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

	result, err := h.saleFlow.CreateSale(h.createRequestContext(c, "/api/v1/sales"), sellerID, &req, metadata)
	if err != nil {
		if businessflow.IsDuplicateSale(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "A sale for this date already exists", "DUPLICATE_SALE", nil)
		}
		if businessflow.IsInvalidAmount(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Sale amount must not be negative", "INVALID_AMOUNT", nil)
		}
		if businessflow.IsMissingDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Sale date is required", "MISSING_DATE", nil)
		}
		if businessflow.IsSellerNotFound(err) || businessflow.IsSellerInactive(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Seller not found", "SELLER_NOT_FOUND", nil)
		}

		log.Println("Sale creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Sale creation failed", "SALE_CREATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Sale created", result)
}

// UpdateSale corrects the amount of one of the seller's own sales
// @Summary Update Sale
// @Description Correct the amount of a sale (owner only)
// @Tags Sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Sale ID"
// @Param request body dto.UpdateSaleRequest true "New amount"
// @Success 200 {object} dto.APIResponse{data=dto.SaleDTO} "Sale updated"
// @Failure 404 {object} dto.APIResponse "Sale not found"
// @Router /api/v1/sales/{id} [put]
func (h *SaleHandler) UpdateSale(c fiber.Ctx) error {
	actorID, ok := c.Locals("account_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	saleID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid sale id", "INVALID_REQUEST", nil)
	}

	var req dto.UpdateSaleRequest
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

	result, err := h.saleFlow.UpdateSale(h.createRequestContext(c, "/api/v1/sales/:id"), actorID, saleID, &req, metadata)
	if err != nil {
		if businessflow.IsSaleNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Sale not found", "SALE_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidAmount(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Sale amount must not be negative", "INVALID_AMOUNT", nil)
		}

		log.Println("Sale update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Sale update failed", "SALE_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Sale updated", result)
}

// DeleteSale removes one of the seller's own sales
// @Summary Delete Sale
// @Description Delete a sale and its commission (owner only)
// @Tags Sales
// @Produce json
// @Security BearerAuth
// @Param id path int true "Sale ID"
// @Success 200 {object} dto.APIResponse "Sale deleted"
// @Failure 404 {object} dto.APIResponse "Sale not found"
// @Router /api/v1/sales/{id} [delete]
func (h *SaleHandler) DeleteSale(c fiber.Ctx) error {
	actorID, ok := c.Locals("account_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}

	saleID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid sale id", "INVALID_REQUEST", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	if err := h.saleFlow.DeleteSale(h.createRequestContext(c, "/api/v1/sales/:id"), actorID, saleID, metadata); err != nil {
		if businessflow.IsSaleNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Sale not found", "SALE_NOT_FOUND", nil)
		}

		log.Println("Sale deletion failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Sale deletion failed", "SALE_DELETION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Sale deleted", nil)
}

// ListSales lists sales newest first with filtered totals
// @Summary List Sales
// @Description List sales with optional year/month/day filters. Sellers see their own ledger; admins may filter by seller.
// @Tags Sales
// @Produce json
// @Security BearerAuth
// @Param seller_id query int false "Seller filter (admin only)"
// @Param year query int false "Year filter"
// @Param month query int false "Month filter"
// @Param day query int false "Day filter"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListSalesResponse} "Sales"
// @Router /api/v1/sales [get]
func (h *SaleHandler) ListSales(c fiber.Ctx) error {
	actorID, ok := c.Locals("account_id").(uint)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "AUTHENTICATION_REQUIRED", nil)
	}
	role, _ := c.Locals("account_role").(models.Role)

	var req dto.ListSalesRequest
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

	// Sellers only ever see their own ledger
	sellerID := req.SellerID
	if role == models.RoleSeller {
		sellerID = &actorID
	}

	result, err := h.saleFlow.ListSales(h.createRequestContext(c, "/api/v1/sales"), sellerID, &req)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination", "INVALID_PAGINATION", nil)
		}

		log.Println("Sale listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Sale listing failed", "SALE_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Sales", result)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *SaleHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}
