// Package testing provides test utilities and database setup for testing the sales administration system
package testing

import (
	"encoding/base64"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/painel-vendas/backend/models"
	"github.com/painel-vendas/backend/utils"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestSeller creates an active seller account with the given commission rate
func (tf *TestFixtures) CreateTestSeller(rate decimal.Decimal) (*models.Account, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Eleven random digits make a syntactically plausible CPF
	cpf := fmt.Sprintf("%011d", rand.Int63n(90000000000)+10000000000)
	email := fmt.Sprintf("seller.%s@example.com", cpf)

	seller := &models.Account{
		UUID:           uuid.New(),
		CPF:            &cpf,
		Email:          &email,
		FirstName:      "Maria",
		LastName:       "Silva",
		PasswordHash:   string(hashedPassword),
		Role:           models.RoleSeller,
		IsActive:       utils.ToPtr(true),
		CommissionRate: &rate,
	}

	if err := tf.DB.DB.Create(seller).Error; err != nil {
		return nil, fmt.Errorf("failed to create test seller: %w", err)
	}

	return seller, nil
}

// CreateTestAdmin creates an active admin account
func (tf *TestFixtures) CreateTestAdmin() (*models.Account, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("AdminPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	email := fmt.Sprintf("admin.%d@example.com", rand.Intn(10000000))

	admin := &models.Account{
		UUID:         uuid.New(),
		Email:        &email,
		FirstName:    "Admin",
		PasswordHash: string(hashedPassword),
		Role:         models.RoleAdmin,
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create test admin: %w", err)
	}

	return admin, nil
}

// CreateTestSale creates a sale row for the given seller and date
func (tf *TestFixtures) CreateTestSale(sellerID uint, date time.Time, amount decimal.Decimal) (*models.Sale, error) {
	sale := &models.Sale{
		UUID:        uuid.New(),
		SellerID:    sellerID,
		Date:        date,
		TotalAmount: amount,
	}

	if err := tf.DB.DB.Create(sale).Error; err != nil {
		return nil, fmt.Errorf("failed to create test sale: %w", err)
	}

	return sale, nil
}

// CreateTestCommission creates the commission row for a sale with value derived
// from the given percentage
func (tf *TestFixtures) CreateTestCommission(sellerID, saleID uint, saleAmount, percentage decimal.Decimal, paid bool) (*models.Commission, error) {
	commission := &models.Commission{
		UUID:       uuid.New(),
		SellerID:   sellerID,
		SaleID:     saleID,
		Percentage: percentage,
		Value:      models.CommissionValue(saleAmount, percentage),
		Paid:       paid,
	}
	if paid {
		commission.PaidAt = utils.UTCNowPtr()
	}

	if err := tf.DB.DB.Create(commission).Error; err != nil {
		return nil, fmt.Errorf("failed to create test commission: %w", err)
	}

	return commission, nil
}

func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// CreateTestSession creates an active session for an account
func (tf *TestFixtures) CreateTestSession(accountID uint) (*models.AccountSession, error) {
	sessionToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure session token: %w", err)
	}

	refreshToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure refresh token: %w", err)
	}

	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	session := &models.AccountSession{
		CorrelationID: uuid.New(),
		AccountID:     accountID,
		SessionToken:  sessionToken,
		RefreshToken:  &refreshToken,
		ExpiresAt:     time.Now().Add(24 * time.Hour),
		IsActive:      utils.ToPtr(true),
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
	}

	if err := tf.DB.DB.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create test session: %w", err)
	}

	return session, nil
}

// CreateTestAuditLog creates a test audit log entry
func (tf *TestFixtures) CreateTestAuditLog(accountID *uint, action string, success bool) (*models.AuditLog, error) {
	description := fmt.Sprintf("Test %s action", action)
	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	audit := &models.AuditLog{
		AccountID:   accountID,
		Action:      action,
		Description: &description,
		Success:     &success,
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	}

	if !success {
		errorMessage := "Test failed action"
		audit.ErrorMessage = &errorMessage
	}

	if err := tf.DB.DB.Create(audit).Error; err != nil {
		return nil, fmt.Errorf("failed to create test audit log: %w", err)
	}

	return audit, nil
}

// CreateSellerWithSales creates a seller plus one sale per given day, all with
// the same amount. Useful for dashboard and payout scenarios.
func (tf *TestFixtures) CreateSellerWithSales(rate decimal.Decimal, dates []time.Time, amount decimal.Decimal) (*models.Account, []*models.Sale, error) {
	seller, err := tf.CreateTestSeller(rate)
	if err != nil {
		return nil, nil, err
	}

	var sales []*models.Sale
	for _, date := range dates {
		sale, err := tf.CreateTestSale(seller.ID, date, amount)
		if err != nil {
			return nil, nil, err
		}
		sales = append(sales, sale)
	}

	return seller, sales, nil
}
