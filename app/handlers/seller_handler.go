// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/painel-vendas/backend/app/dto"
	businessflow "github.com/painel-vendas/backend/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// SellerHandlerInterface defines the contract for seller management handlers
type SellerHandlerInterface interface {
	CreateSeller(c fiber.Ctx) error
	GetSeller(c fiber.Ctx) error
	ListSellers(c fiber.Ctx) error
	UpdateSeller(c fiber.Ctx) error
	ToggleSellerStatus(c fiber.Ctx) error
}

// SellerHandler handles seller management HTTP requests
type SellerHandler struct {
	sellerFlow businessflow.SellerFlow
	validator  *validator.Validate
}

// NewSellerHandler creates a new seller handler
func NewSellerHandler(sellerFlow businessflow.SellerFlow) *SellerHandler {
	return &SellerHandler{
		sellerFlow: sellerFlow,
		validator:  validator.New(),
	}
}

func (h *SellerHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *SellerHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateSeller registers a new seller account
// @Summary Create Seller
// @Description Register a new seller (admin only)
// @Tags Sellers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSellerRequest true "Seller data"
// @Success 201 {object} dto.APIResponse{data=dto.SellerDTO} "Seller created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "CPF or email already exists"
// @Router /api/v1/sellers [post]
func (h *SellerHandler) CreateSeller(c fiber.Ctx) error {
	var req dto.CreateSellerRequest
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

	result, err := h.sellerFlow.CreateSeller(h.createRequestContext(c, "/api/v1/sellers"), &req, metadata)
	if err != nil {
		if businessflow.IsCPFAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "CPF already exists", "CPF_EXISTS", nil)
		}
		if businessflow.IsEmailAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Email already exists", "EMAIL_EXISTS", nil)
		}
		if businessflow.IsCommissionRateRange(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Commission rate must be between 0 and 100", "COMMISSION_RATE_RANGE", nil)
		}
		if businessflow.IsSellerFieldsRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Seller name fields are required", "SELLER_FIELDS_REQUIRED", nil)
		}

		log.Println("Seller creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Seller creation failed", "SELLER_CREATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Seller created", result)
}

// GetSeller returns one seller
// @Summary Get Seller
// @Description Fetch a single seller by ID (admin only)
// @Tags Sellers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Seller ID"
// @Success 200 {object} dto.APIResponse{data=dto.SellerDTO} "Seller"
// @Failure 404 {object} dto.APIResponse "Seller not found"
// @Router /api/v1/sellers/{id} [get]
func (h *SellerHandler) GetSeller(c fiber.Ctx) error {
	sellerID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid seller id", "INVALID_REQUEST", nil)
	}

	result, err := h.sellerFlow.GetSeller(h.createRequestContext(c, "/api/v1/sellers/:id"), sellerID)
	if err != nil {
		if businessflow.IsSellerNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Seller not found", "SELLER_NOT_FOUND", nil)
		}

		log.Println("Seller fetch failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Seller fetch failed", "SELLER_FETCH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Seller", result)
}

// ListSellers lists sellers ordered by name
// @Summary List Sellers
// @Description List sellers, optionally only the active ones (admin only)
// @Tags Sellers
// @Produce json
// @Security BearerAuth
// @Param only_active query bool false "Only active sellers"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListSellersResponse} "Sellers"
// @Router /api/v1/sellers [get]
func (h *SellerHandler) ListSellers(c fiber.Ctx) error {
	onlyActive := c.Query("only_active") == "true"
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))

	result, err := h.sellerFlow.ListSellers(h.createRequestContext(c, "/api/v1/sellers"), onlyActive, page, pageSize)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination", "INVALID_PAGINATION", nil)
		}

		log.Println("Seller listing failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Seller listing failed", "SELLER_LIST_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Sellers", result)
}

// UpdateSeller applies partial updates to a seller
// @Summary Update Seller
// @Description Update seller names, email or commission rate (admin only)
// @Tags Sellers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Seller ID"
// @Param request body dto.UpdateSellerRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.SellerDTO} "Seller updated"
// @Failure 404 {object} dto.APIResponse "Seller not found"
// @Router /api/v1/sellers/{id} [put]
func (h *SellerHandler) UpdateSeller(c fiber.Ctx) error {
	sellerID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid seller id", "INVALID_REQUEST", nil)
	}

	var req dto.UpdateSellerRequest
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

	result, err := h.sellerFlow.UpdateSeller(h.createRequestContext(c, "/api/v1/sellers/:id"), sellerID, &req, metadata)
	if err != nil {
		if businessflow.IsSellerNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Seller not found", "SELLER_NOT_FOUND", nil)
		}
		if businessflow.IsEmailAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Email already exists", "EMAIL_EXISTS", nil)
		}
		if businessflow.IsCommissionRateRange(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Commission rate must be between 0 and 100", "COMMISSION_RATE_RANGE", nil)
		}

		log.Println("Seller update failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Seller update failed", "SELLER_UPDATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Seller updated", result)
}

// ToggleSellerStatus flips the activation state of a seller
// @Summary Toggle Seller Status
// @Description Activate or deactivate a seller (admin only)
// @Tags Sellers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Seller ID"
// @Success 200 {object} dto.APIResponse{data=dto.ToggleSellerStatusResponse} "Status toggled"
// @Failure 404 {object} dto.APIResponse "Seller not found"
// @Router /api/v1/sellers/{id}/toggle [patch]
func (h *SellerHandler) ToggleSellerStatus(c fiber.Ctx) error {
	sellerID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid seller id", "INVALID_REQUEST", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.sellerFlow.ToggleSellerStatus(h.createRequestContext(c, "/api/v1/sellers/:id/toggle"), sellerID, metadata)
	if err != nil {
		if businessflow.IsSellerNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Seller not found", "SELLER_NOT_FOUND", nil)
		}

		log.Println("Seller status toggle failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Seller status toggle failed", "SELLER_TOGGLE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Status toggled", result)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *SellerHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// parseIDParam reads a positive integer route parameter
func parseIDParam(c fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, strconv.ErrSyntax
	}
	return uint(id), nil
}
