package tests

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/painel-vendas/backend/app/dto"
	"github.com/painel-vendas/backend/app/services"
	businessflow "github.com/painel-vendas/backend/business_flow"
	"github.com/painel-vendas/backend/repository"
	testingutil "github.com/painel-vendas/backend/testing"
)

func newTestTokenService(t *testing.T) services.TokenService {
	service, err := services.NewTokenService(
		15*time.Minute,
		7*24*time.Hour,
		"painel-vendas",
		"painel-vendas-api",
		false,
		"",
		"",
		"test-secret-key-for-jwt-signing-32-chars",
	)
	require.NoError(t, err)
	return service
}

func TestAuthFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		accountRepo := repository.NewAccountRepository(testDB.DB)
		sessionRepo := repository.NewAccountSessionRepository(testDB.DB)
		auditRepo := repository.NewAuditLogRepository(testDB.DB)
		tokenService := newTestTokenService(t)

		authFlow := businessflow.NewAuthFlow(accountRepo, sessionRepo, auditRepo, tokenService, testDB.DB)
		ctx := testingutil.CreateTestContext()
		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")

		t.Run("LoginWithEmail", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			response, err := authFlow.Login(ctx, &dto.LoginRequest{
				Identifier: *seller.Email,
				Password:   "TestPass123!",
			}, metadata)
			require.NoError(t, err)

			assert.Equal(t, seller.ID, response.Account.ID)
			assert.Equal(t, "seller", response.Account.Role)
			assert.Equal(t, "/dashboard/seller", response.RedirectTo)
			assert.NotEmpty(t, response.Session.SessionToken)
			require.NotNil(t, response.Session.RefreshToken)
			assert.Equal(t, "Bearer", response.Session.TokenType)

			// Login stamps the account
			found, err := accountRepo.ByID(ctx, seller.ID)
			require.NoError(t, err)
			assert.NotNil(t, found.LastLoginAt)
		})

		t.Run("LoginWithFormattedCPF", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			cpf := *seller.CPF
			formatted := cpf[0:3] + "." + cpf[3:6] + "." + cpf[6:9] + "-" + cpf[9:11]

			response, err := authFlow.Login(ctx, &dto.LoginRequest{
				Identifier: formatted,
				Password:   "TestPass123!",
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, seller.ID, response.Account.ID)
		})

		t.Run("AdminRedirectsToAdminDashboard", func(t *testing.T) {
			admin, err := fixtures.CreateTestAdmin()
			require.NoError(t, err)

			response, err := authFlow.Login(ctx, &dto.LoginRequest{
				Identifier: *admin.Email,
				Password:   "AdminPass123!",
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, "/dashboard/admin", response.RedirectTo)
		})

		t.Run("WrongPassword", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			_, err = authFlow.Login(ctx, &dto.LoginRequest{
				Identifier: *seller.Email,
				Password:   "WrongPass123!",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsIncorrectPassword(err))
		})

		t.Run("UnknownIdentifier", func(t *testing.T) {
			_, err := authFlow.Login(ctx, &dto.LoginRequest{
				Identifier: "nobody@example.com",
				Password:   "TestPass123!",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsAccountNotFound(err))
		})

		t.Run("InactiveAccountRejected", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)
			require.NoError(t, accountRepo.SetActive(ctx, seller.ID, false))

			_, err = authFlow.Login(ctx, &dto.LoginRequest{
				Identifier: *seller.Email,
				Password:   "TestPass123!",
			}, metadata)
			require.Error(t, err)
			assert.True(t, businessflow.IsAccountInactive(err))
		})

		t.Run("Logout", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			login, err := authFlow.Login(ctx, &dto.LoginRequest{
				Identifier: *seller.Email,
				Password:   "TestPass123!",
			}, metadata)
			require.NoError(t, err)

			response, err := authFlow.Logout(ctx, login.Session.SessionToken, metadata)
			require.NoError(t, err)
			assert.True(t, response.LoggedOut)

			// The session no longer resolves
			session, err := sessionRepo.BySessionToken(ctx, login.Session.SessionToken)
			require.NoError(t, err)
			if session != nil {
				assert.False(t, session.IsValid())
			}
		})

		t.Run("RefreshRotatesTokens", func(t *testing.T) {
			seller, err := fixtures.CreateTestSeller(decimal.NewFromInt(5))
			require.NoError(t, err)

			login, err := authFlow.Login(ctx, &dto.LoginRequest{
				Identifier: *seller.Email,
				Password:   "TestPass123!",
			}, metadata)
			require.NoError(t, err)
			require.NotNil(t, login.Session.RefreshToken)

			refreshed, err := authFlow.RefreshToken(ctx, &dto.RefreshTokenRequest{
				RefreshToken: *login.Session.RefreshToken,
			}, metadata)
			require.NoError(t, err)

			assert.Equal(t, seller.ID, refreshed.Account.ID)
			assert.NotEmpty(t, refreshed.Session.SessionToken)
			assert.NotEqual(t, login.Session.SessionToken, refreshed.Session.SessionToken)
		})

		t.Run("RefreshWithGarbageToken", func(t *testing.T) {
			_, err := authFlow.RefreshToken(ctx, &dto.RefreshTokenRequest{
				RefreshToken: "not-a-real-token",
			}, metadata)
			assert.Error(t, err)
		})

		return nil
	})
	require.NoError(t, err)
}
