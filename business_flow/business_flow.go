// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/painel-vendas/backend/app/dto"
	"github.com/painel-vendas/backend/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging and session tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	DeviceInfo map[string]string `json:"device_info,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		DeviceInfo: make(map[string]string),
		Additional: make(map[string]string),
	}
}

// AddDeviceInfo adds device information to the metadata
func (cm *ClientMetadata) AddDeviceInfo(key, value string) {
	if cm.DeviceInfo == nil {
		cm.DeviceInfo = make(map[string]string)
	}
	cm.DeviceInfo[key] = value
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// SetSessionID sets the session ID
func (cm *ClientMetadata) SetSessionID(sessionID string) {
	cm.SessionID = sessionID
}

// ToAuthAccountDTO converts an account model to AuthAccountDTO for authentication responses
func ToAuthAccountDTO(account models.Account) dto.AuthAccountDTO {
	out := dto.AuthAccountDTO{
		ID:        account.ID,
		UUID:      account.UUID.String(),
		Email:     account.Email,
		CPF:       account.CPF,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		Role:      account.Role.String(),
		IsActive:  account.IsActive,
		CreatedAt: account.CreatedAt.Format(time.RFC3339),
	}
	if account.CommissionRate != nil {
		rate := account.CommissionRate.StringFixed(2)
		out.CommissionRate = &rate
	}

	return out
}

func ToAccountSessionDTO(session models.AccountSession) dto.AccountSessionDTO {
	return dto.AccountSessionDTO{
		SessionToken: session.SessionToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    int(time.Until(session.ExpiresAt).Seconds()),
		TokenType:    "Bearer",
		CreatedAt:    session.CreatedAt.Format(time.RFC3339),
	}
}

// ToSellerDTO converts a seller account to its API representation
func ToSellerDTO(account models.Account) dto.SellerDTO {
	out := dto.SellerDTO{
		ID:        account.ID,
		UUID:      account.UUID.String(),
		FirstName: account.FirstName,
		LastName:  account.LastName,
		FullName:  account.FullName(),
		CPF:       account.CPF,
		Email:     account.Email,
		IsActive:  account.IsActive,
		CreatedAt: account.CreatedAt.Format(time.RFC3339),
	}
	if account.CommissionRate != nil {
		rate := account.CommissionRate.StringFixed(2)
		out.CommissionRate = &rate
	}

	return out
}

// ToCommissionDTO converts a commission model to its API representation
func ToCommissionDTO(commission models.Commission) dto.CommissionDTO {
	out := dto.CommissionDTO{
		ID:         commission.ID,
		Percentage: commission.Percentage.StringFixed(2),
		Value:      commission.Value.StringFixed(2),
		Paid:       commission.Paid,
	}
	if commission.PaidAt != nil {
		paidAt := commission.PaidAt.Format(time.RFC3339)
		out.PaidAt = &paidAt
	}

	return out
}

// ToSaleDTO converts a sale model to its API representation. The seller name
// and commission are only present when the relations were preloaded.
func ToSaleDTO(sale models.Sale) dto.SaleDTO {
	out := dto.SaleDTO{
		ID:          sale.ID,
		UUID:        sale.UUID.String(),
		SellerID:    sale.SellerID,
		Date:        sale.Date.Format("2006-01-02"),
		TotalAmount: sale.TotalAmount.StringFixed(2),
		CreatedAt:   sale.CreatedAt.Format(time.RFC3339),
	}
	if sale.Seller.ID != 0 {
		out.SellerName = sale.Seller.FullName()
	}
	if sale.Commission != nil {
		commission := ToCommissionDTO(*sale.Commission)
		out.Commission = &commission
	}

	return out
}
