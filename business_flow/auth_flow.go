// Package businessflow contains the core business logic and use cases for authentication workflows
package businessflow

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/painel-vendas/backend/app/dto"
	"github.com/painel-vendas/backend/app/services"
	"github.com/painel-vendas/backend/models"
	"github.com/painel-vendas/backend/repository"
	"github.com/painel-vendas/backend/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var identifierNonDigits = regexp.MustCompile(`\D`)

// AuthFlow handles account authentication and session lifecycle
type AuthFlow interface {
	Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	Logout(ctx context.Context, sessionToken string, metadata *ClientMetadata) (*dto.LogoutResponse, error)
	RefreshToken(ctx context.Context, request *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
}

// AuthFlowImpl implements the authentication business flow
type AuthFlowImpl struct {
	accountRepo  repository.AccountRepository
	sessionRepo  repository.AccountSessionRepository
	auditRepo    repository.AuditLogRepository
	tokenService services.TokenService
	db           *gorm.DB
}

// NewAuthFlow creates a new authentication flow instance
func NewAuthFlow(
	accountRepo repository.AccountRepository,
	sessionRepo repository.AccountSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	db *gorm.DB,
) AuthFlow {
	return &AuthFlowImpl{
		accountRepo:  accountRepo,
		sessionRepo:  sessionRepo,
		auditRepo:    auditRepo,
		tokenService: tokenService,
		db:           db,
	}
}

// Login authenticates an account with email or CPF and password. On success a
// new session is created and the role-specific dashboard path is returned.
func (af *AuthFlowImpl) Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	// Validate business rules
	if err := af.validateLoginRequest(request); err != nil {
		return nil, NewBusinessError("LOGIN_VALIDATION_FAILED", "Login validation failed", err)
	}

	var account *models.Account

	// Start transaction for login process
	resp, err := af.WithLoginTransaction(ctx, func(ctx context.Context) (*dto.LoginResponse, error) {
		// Find account by email or CPF
		var err error
		account, err = af.FindAccountByIdentifier(ctx, request.Identifier)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, ErrAccountNotFound
		}

		// Check if account is active
		if !utils.IsTrue(account.IsActive) {
			return nil, ErrAccountInactive
		}

		// Verify password
		if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(request.Password)); err != nil {
			return nil, ErrIncorrectPassword
		}

		// Create new session
		session, err := af.CreateSession(ctx, account.ID, metadata)
		if err != nil {
			return nil, err
		}

		if err := af.accountRepo.UpdateLastLogin(ctx, account.ID, utils.UTCNow()); err != nil {
			return nil, err
		}

		return &dto.LoginResponse{
			Account:    ToAuthAccountDTO(*account),
			Session:    ToAccountSessionDTO(*session),
			RedirectTo: models.DashboardPath(account.Role),
		}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Login failed: %s", err.Error())
		_ = af.LogAuthAttempt(ctx, account, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	} else {
		msg := fmt.Sprintf("Account logged in successfully: %d", resp.Account.ID)
		_ = af.LogAuthAttempt(ctx, account, models.AuditActionLoginSuccessful, msg, true, nil, metadata)
	}

	return resp, nil
}

// Logout terminates the session identified by the access token
func (af *AuthFlowImpl) Logout(ctx context.Context, sessionToken string, metadata *ClientMetadata) (*dto.LogoutResponse, error) {
	var account *models.Account

	resp, err := af.WithLogoutTransaction(ctx, func(ctx context.Context) (*dto.LogoutResponse, error) {
		session, err := af.sessionRepo.BySessionToken(ctx, sessionToken)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, ErrAccountNotFound
		}
		account = &session.Account

		if err := af.sessionRepo.ExpireSession(ctx, session.ID); err != nil {
			return nil, err
		}

		return &dto.LogoutResponse{LoggedOut: true}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Logout failed: %s", err.Error())
		_ = af.LogAuthAttempt(ctx, account, models.AuditActionLogout, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("LOGOUT_FAILED", "Logout failed", err)
	}

	msg := "Session terminated"
	_ = af.LogAuthAttempt(ctx, account, models.AuditActionLogout, msg, true, nil, metadata)

	return resp, nil
}

// RefreshToken rotates the token pair for a valid refresh token. The old
// session is expired and a fresh one is created under the same correlation ID.
func (af *AuthFlowImpl) RefreshToken(ctx context.Context, request *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	var account *models.Account

	resp, err := af.WithLoginTransaction(ctx, func(ctx context.Context) (*dto.LoginResponse, error) {
		session, err := af.sessionRepo.ByRefreshToken(ctx, request.RefreshToken)
		if err != nil {
			return nil, err
		}
		if session == nil || !session.IsValid() {
			return nil, NewBusinessError(dto.ErrorTokenInvalid, "Refresh token is invalid or expired", nil)
		}

		account, err = af.accountRepo.ByID(ctx, session.AccountID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, ErrAccountNotFound
		}
		if !utils.IsTrue(account.IsActive) {
			return nil, ErrAccountInactive
		}

		if err := af.sessionRepo.ExpireSession(ctx, session.ID); err != nil {
			return nil, err
		}

		fresh, err := af.CreateSession(ctx, account.ID, metadata)
		if err != nil {
			return nil, err
		}
		fresh.CorrelationID = session.CorrelationID
		if err := af.sessionRepo.Update(ctx, fresh); err != nil {
			return nil, err
		}

		return &dto.LoginResponse{
			Account:    ToAuthAccountDTO(*account),
			Session:    ToAccountSessionDTO(*fresh),
			RedirectTo: models.DashboardPath(account.Role),
		}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Token refresh failed: %s", err.Error())
		_ = af.LogAuthAttempt(ctx, account, models.AuditActionSessionExpired, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("REFRESH_FAILED", "Token refresh failed", err)
	}

	msg := fmt.Sprintf("Token pair rotated: %d", resp.Account.ID)
	_ = af.LogAuthAttempt(ctx, account, models.AuditActionSessionCreated, msg, true, nil, metadata)

	return resp, nil
}

// Private helper methods

// FindAccountByIdentifier resolves a login identifier. Anything containing an
// "@" is treated as an email; everything else is normalized to digits and
// looked up as a CPF.
func (af *AuthFlowImpl) FindAccountByIdentifier(ctx context.Context, identifier string) (*models.Account, error) {
	identifier = strings.TrimSpace(identifier)

	if strings.Contains(identifier, "@") {
		return af.accountRepo.ByEmail(ctx, identifier)
	}

	cpf := identifierNonDigits.ReplaceAllString(identifier, "")
	return af.accountRepo.ByCPF(ctx, cpf)
}

func (af *AuthFlowImpl) CreateSession(ctx context.Context, accountID uint, metadata *ClientMetadata) (*models.AccountSession, error) {
	// Generate tokens
	accessToken, refreshToken, err := af.tokenService.GenerateTokens(accountID)
	if err != nil {
		return nil, err
	}

	// Calculate expiry time using constant
	expiresAt := utils.UTCNowAdd(utils.SessionTimeout)

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	// Create session record
	session := &models.AccountSession{
		AccountID:     accountID,
		CorrelationID: uuid.New(),
		SessionToken:  accessToken,
		RefreshToken:  &refreshToken,
		ExpiresAt:     expiresAt,
		IsActive:      utils.ToPtr(true),
		IPAddress:     &ipAddress,
		UserAgent:     &userAgent,
	}

	err = af.sessionRepo.Save(ctx, session)
	if err != nil {
		return nil, err
	}

	return session, nil
}

func (af *AuthFlowImpl) LogAuthAttempt(ctx context.Context, account *models.Account, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	var accountID *uint
	if account != nil {
		accountID = &account.ID
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

	return af.auditRepo.Save(ctx, audit)
}

func (af *AuthFlowImpl) WithLoginTransaction(ctx context.Context, fn func(context.Context) (*dto.LoginResponse, error)) (*dto.LoginResponse, error) {
	var result *dto.LoginResponse
	var fnErr error

	err := repository.WithTransaction(ctx, af.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}

func (af *AuthFlowImpl) WithLogoutTransaction(ctx context.Context, fn func(context.Context) (*dto.LogoutResponse, error)) (*dto.LogoutResponse, error) {
	var result *dto.LogoutResponse
	var fnErr error

	err := repository.WithTransaction(ctx, af.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}

func (af *AuthFlowImpl) validateLoginRequest(request *dto.LoginRequest) error {
	// Validate identifier is not empty
	if strings.TrimSpace(request.Identifier) == "" {
		return ErrAccountNotFound
	}

	// Validate password is not empty
	if request.Password == "" {
		return ErrIncorrectPassword
	}

	return nil
}
