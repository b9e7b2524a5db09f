// Package businessflow contains the business logic for seller management workflows
package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/painel-vendas/backend/app/dto"
	"github.com/painel-vendas/backend/models"
	"github.com/painel-vendas/backend/repository"
	"github.com/painel-vendas/backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SellerFlow handles seller registration and lifecycle management
type SellerFlow interface {
	CreateSeller(ctx context.Context, request *dto.CreateSellerRequest, metadata *ClientMetadata) (*dto.SellerDTO, error)
	GetSeller(ctx context.Context, sellerID uint) (*dto.SellerDTO, error)
	ListSellers(ctx context.Context, onlyActive bool, page, pageSize int) (*dto.ListSellersResponse, error)
	UpdateSeller(ctx context.Context, sellerID uint, request *dto.UpdateSellerRequest, metadata *ClientMetadata) (*dto.SellerDTO, error)
	ToggleSellerStatus(ctx context.Context, sellerID uint, metadata *ClientMetadata) (*dto.ToggleSellerStatusResponse, error)
}

// SellerFlowImpl implements the seller management business flow
type SellerFlowImpl struct {
	accountRepo repository.AccountRepository
	auditRepo   repository.AuditLogRepository
	db          *gorm.DB
}

// NewSellerFlow creates a new seller flow instance
func NewSellerFlow(
	accountRepo repository.AccountRepository,
	auditRepo repository.AuditLogRepository,
	db *gorm.DB,
) SellerFlow {
	return &SellerFlowImpl{
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		db:          db,
	}
}

// CreateSeller registers a new seller account. CPF and email must be unique
// across all accounts; the commission rate is optional and may be set later.
func (sf *SellerFlowImpl) CreateSeller(ctx context.Context, request *dto.CreateSellerRequest, metadata *ClientMetadata) (*dto.SellerDTO, error) {
	if err := sf.validateCreateSellerRequest(request); err != nil {
		return nil, NewBusinessError("SELLER_VALIDATION_FAILED", "Seller validation failed", err)
	}

	var seller *models.Account

	resp, err := sf.WithSellerTransaction(ctx, func(ctx context.Context) (*dto.SellerDTO, error) {
		cpf := identifierNonDigits.ReplaceAllString(request.CPF, "")
		existing, err := sf.accountRepo.ByCPF(ctx, cpf)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrCPFAlreadyExists
		}

		if request.Email != nil {
			existing, err := sf.accountRepo.ByEmail(ctx, *request.Email)
			if err != nil {
				return nil, err
			}
			if existing != nil {
				return nil, ErrEmailAlreadyExists
			}
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}

		seller = &models.Account{
			UUID:           uuid.New(),
			CPF:            &cpf,
			Email:          request.Email,
			FirstName:      models.TitleCaseName(request.FirstName),
			LastName:       models.TitleCaseName(request.LastName),
			PasswordHash:   string(hashedPassword),
			Role:           models.RoleSeller,
			IsActive:       utils.ToPtr(true),
			CommissionRate: request.CommissionRate,
		}

		if err := sf.accountRepo.Save(ctx, seller); err != nil {
			return nil, err
		}

		out := ToSellerDTO(*seller)
		return &out, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Seller creation failed: %s", err.Error())
		_ = sf.LogSellerAction(ctx, nil, models.AuditActionSellerCreated, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("SELLER_CREATION_FAILED", "Seller creation failed", err)
	}

	msg := fmt.Sprintf("Seller created: %d", resp.ID)
	_ = sf.LogSellerAction(ctx, seller, models.AuditActionSellerCreated, msg, true, nil, metadata)

	return resp, nil
}

// GetSeller returns a single seller by ID
func (sf *SellerFlowImpl) GetSeller(ctx context.Context, sellerID uint) (*dto.SellerDTO, error) {
	seller, err := sf.findSeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	out := ToSellerDTO(*seller)
	return &out, nil
}

// ListSellers returns sellers ordered by name with their totals
func (sf *SellerFlowImpl) ListSellers(ctx context.Context, onlyActive bool, page, pageSize int) (*dto.ListSellersResponse, error) {
	page, pageSize, err := NormalizePagination(page, pageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_SELLERS_VALIDATION_FAILED", "Seller listing validation failed", err)
	}

	sellers, err := sf.accountRepo.ListSellers(ctx, onlyActive, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_SELLERS_FAILED", "Failed to list sellers", err)
	}

	filter := models.AccountFilter{Role: utils.ToPtr(models.RoleSeller)}
	if onlyActive {
		filter.IsActive = utils.ToPtr(true)
	}
	total, err := sf.accountRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_SELLERS_FAILED", "Failed to count sellers", err)
	}

	out := make([]dto.SellerDTO, 0, len(sellers))
	for _, seller := range sellers {
		out = append(out, ToSellerDTO(*seller))
	}

	return &dto.ListSellersResponse{Sellers: out, Total: total}, nil
}

// UpdateSeller applies partial updates to a seller. Commission rate changes
// only affect sales registered afterwards; commissions already generated keep
// the percentage captured when their sale was recorded.
func (sf *SellerFlowImpl) UpdateSeller(ctx context.Context, sellerID uint, request *dto.UpdateSellerRequest, metadata *ClientMetadata) (*dto.SellerDTO, error) {
	if request.CommissionRate != nil {
		if err := ValidateCommissionRate(*request.CommissionRate); err != nil {
			return nil, NewBusinessError("SELLER_VALIDATION_FAILED", "Seller validation failed", err)
		}
	}

	var seller *models.Account

	resp, err := sf.WithSellerTransaction(ctx, func(ctx context.Context) (*dto.SellerDTO, error) {
		var err error
		seller, err = sf.findSeller(ctx, sellerID)
		if err != nil {
			return nil, err
		}

		if request.Email != nil && (seller.Email == nil || *seller.Email != *request.Email) {
			existing, err := sf.accountRepo.ByEmail(ctx, *request.Email)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != seller.ID {
				return nil, ErrEmailAlreadyExists
			}
			seller.Email = request.Email
		}

		if request.FirstName != nil {
			seller.FirstName = models.TitleCaseName(*request.FirstName)
		}
		if request.LastName != nil {
			seller.LastName = models.TitleCaseName(*request.LastName)
		}
		if request.CommissionRate != nil {
			seller.CommissionRate = request.CommissionRate
		}
		if request.Password != nil {
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*request.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, err
			}
			seller.PasswordHash = string(hashedPassword)
		}

		if err := sf.accountRepo.Update(ctx, seller); err != nil {
			return nil, err
		}

		out := ToSellerDTO(*seller)
		return &out, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Seller update failed: %s", err.Error())
		_ = sf.LogSellerAction(ctx, seller, models.AuditActionSellerUpdated, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("SELLER_UPDATE_FAILED", "Seller update failed", err)
	}

	msg := fmt.Sprintf("Seller updated: %d", resp.ID)
	_ = sf.LogSellerAction(ctx, seller, models.AuditActionSellerUpdated, msg, true, nil, metadata)

	return resp, nil
}

// ToggleSellerStatus flips the activation state of a seller. Deactivated
// sellers keep their history but cannot log in or receive new sales.
func (sf *SellerFlowImpl) ToggleSellerStatus(ctx context.Context, sellerID uint, metadata *ClientMetadata) (*dto.ToggleSellerStatusResponse, error) {
	var seller *models.Account
	var nowActive bool

	resp, err := sf.WithToggleTransaction(ctx, func(ctx context.Context) (*dto.ToggleSellerStatusResponse, error) {
		var err error
		seller, err = sf.findSeller(ctx, sellerID)
		if err != nil {
			return nil, err
		}

		nowActive = !utils.IsTrue(seller.IsActive)
		if err := sf.accountRepo.SetActive(ctx, seller.ID, nowActive); err != nil {
			return nil, err
		}

		return &dto.ToggleSellerStatusResponse{SellerID: seller.ID, IsActive: nowActive}, nil
	})

	action := models.AuditActionSellerDeactivated
	if nowActive {
		action = models.AuditActionSellerActivated
	}

	if err != nil {
		errMsg := fmt.Sprintf("Seller status toggle failed: %s", err.Error())
		_ = sf.LogSellerAction(ctx, seller, action, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("SELLER_TOGGLE_FAILED", "Seller status toggle failed", err)
	}

	msg := fmt.Sprintf("Seller %d active=%t", resp.SellerID, resp.IsActive)
	_ = sf.LogSellerAction(ctx, seller, action, msg, true, nil, metadata)

	return resp, nil
}

// Private helper methods

func (sf *SellerFlowImpl) findSeller(ctx context.Context, sellerID uint) (*models.Account, error) {
	account, err := sf.accountRepo.ByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if account == nil || !account.IsSeller() {
		return nil, ErrSellerNotFound
	}
	return account, nil
}

func (sf *SellerFlowImpl) validateCreateSellerRequest(request *dto.CreateSellerRequest) error {
	if strings.TrimSpace(request.FirstName) == "" || strings.TrimSpace(request.LastName) == "" {
		return ErrSellerFieldsRequired
	}
	if request.CommissionRate != nil {
		if err := ValidateCommissionRate(*request.CommissionRate); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCommissionRate enforces the valid percentage range
func ValidateCommissionRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(utils.MaxCommissionRate)) {
		return ErrCommissionRateRange
	}
	return nil
}

// NormalizePagination applies defaults and validates page bounds
func NormalizePagination(page, pageSize int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = 20
	}
	if page < 1 {
		return 0, 0, ErrInvalidPage
	}
	if pageSize < 1 || pageSize > 100 {
		return 0, 0, ErrInvalidPageSize
	}
	return page, pageSize, nil
}

func (sf *SellerFlowImpl) LogSellerAction(ctx context.Context, seller *models.Account, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	var accountID *uint
	if seller != nil {
		accountID = &seller.ID
	}

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		AccountID:    accountID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errMsg,
	}

	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return sf.auditRepo.Save(ctx, audit)
}

func (sf *SellerFlowImpl) WithSellerTransaction(ctx context.Context, fn func(context.Context) (*dto.SellerDTO, error)) (*dto.SellerDTO, error) {
	var result *dto.SellerDTO
	var fnErr error

	err := repository.WithTransaction(ctx, sf.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}

func (sf *SellerFlowImpl) WithToggleTransaction(ctx context.Context, fn func(context.Context) (*dto.ToggleSellerStatusResponse, error)) (*dto.ToggleSellerStatusResponse, error) {
	var result *dto.ToggleSellerStatusResponse
	var fnErr error

	err := repository.WithTransaction(ctx, sf.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}
