package security_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"firebase-kit/internal/auth/adapter/security"
	"firebase-kit/internal/auth/config"
	"firebase-kit/internal/auth/domain/repository"
	apperrors "firebase-kit/internal/shared/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type JWTTestSuite struct {
	suite.Suite
	config  *config.Config
	service *security.JWTokenService
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecretKey:   "test-secret-key-32-characters-long-12345",
		JWTIssuer:      "test-issuer",
		IDTokenTTL:     15 * time.Minute,
		SessionTTL:     24 * time.Hour,
		ActionTokenTTL: time.Hour,
	}
}

func subject(userID, email string) repository.TokenSubject {
	return repository.TokenSubject{UserID: userID, Email: email}
}

func (suite *JWTTestSuite) SetupTest() {
	suite.config = testConfig()

	service, err := security.NewJWTokenService(suite.config)
	require.NoError(suite.T(), err)
	suite.service = service
}

func (suite *JWTTestSuite) TestNewJWTokenService_ValidationErrors() {
	testCases := []struct {
		name         string
		modifyConfig func(*config.Config)
		expectedErr  string
	}{
		{
			name:         "empty secret key",
			modifyConfig: func(cfg *config.Config) { cfg.JWTSecretKey = "" },
			expectedErr:  "jwt secret key cannot be empty",
		},
		{
			name:         "empty issuer",
			modifyConfig: func(cfg *config.Config) { cfg.JWTIssuer = "" },
			expectedErr:  "jwt issuer cannot be empty",
		},
		{
			name:         "zero TTL",
			modifyConfig: func(cfg *config.Config) { cfg.IDTokenTTL = 0 },
			expectedErr:  "jwt id token TTL must be positive",
		},
		{
			name:         "negative session TTL",
			modifyConfig: func(cfg *config.Config) { cfg.SessionTTL = -1 * time.Minute },
			expectedErr:  "jwt session and action token TTLs must be positive",
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			cfg := *suite.config // Copy
			tc.modifyConfig(&cfg)

			service, err := security.NewJWTokenService(&cfg)

			assert.Error(suite.T(), err)
			assert.Nil(suite.T(), service)
			assert.Contains(suite.T(), err.Error(), tc.expectedErr)
		})
	}
}

func (suite *JWTTestSuite) TestGenerateToken_Claims() {
	tokenString, err := suite.service.GenerateToken(context.Background(), repository.TokenKindID, subject("user-123", "test@example.com"), time.Minute)
	require.NoError(suite.T(), err)

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(suite.config.JWTSecretKey), nil
	})
	require.NoError(suite.T(), err)
	assert.True(suite.T(), token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(suite.T(), ok)
	assert.Equal(suite.T(), "user-123", claims["userID"])
	assert.Equal(suite.T(), "user-123", claims["sub"])
	assert.Equal(suite.T(), "test@example.com", claims["email"])
	assert.Equal(suite.T(), "id", claims["kind"])
	assert.Equal(suite.T(), suite.config.JWTIssuer, claims["iss"])
}

func (suite *JWTTestSuite) TestGenerateToken_RejectsEmptySubject() {
	_, err := suite.service.GenerateToken(context.Background(), repository.TokenKindID, subject("", ""), time.Minute)
	assert.Error(suite.T(), err)
}

func (suite *JWTTestSuite) TestValidateToken_InvalidSignature() {
	ctx := context.Background()

	differentConfig := *suite.config
	differentConfig.JWTSecretKey = "different-secret-key-32-chars-long"
	differentService, err := security.NewJWTokenService(&differentConfig)
	require.NoError(suite.T(), err)

	tokenString, err := differentService.GenerateToken(ctx, repository.TokenKindID, subject("user-123", ""), time.Minute)
	require.NoError(suite.T(), err)

	claims, err := suite.service.ValidateToken(ctx, repository.TokenKindID, tokenString)

	assert.Nil(suite.T(), claims)
	assert.Equal(suite.T(), security.ErrTokenSignatureInvalid, err)
	assert.True(suite.T(), apperrors.IsAuthentication(err))
}

func (suite *JWTTestSuite) TestValidateToken_ExpiredToken() {
	ctx := context.Background()

	tokenString, err := suite.service.GenerateToken(ctx, repository.TokenKindID, subject("user-123", ""), time.Millisecond)
	require.NoError(suite.T(), err)

	time.Sleep(1100 * time.Millisecond)

	claims, err := suite.service.ValidateToken(ctx, repository.TokenKindID, tokenString)

	assert.Nil(suite.T(), claims)
	assert.Equal(suite.T(), security.ErrTokenExpired, err)
	assert.ErrorIs(suite.T(), err, apperrors.ErrTokenExpired)
}

func (suite *JWTTestSuite) TestValidateToken_KindMismatch() {
	ctx := context.Background()
	tokenString, err := suite.service.GenerateToken(ctx, repository.TokenKindVerifyEmail, subject("user-123", ""), time.Minute)
	require.NoError(suite.T(), err)

	_, err = suite.service.ValidateToken(ctx, repository.TokenKindSession, tokenString)
	assert.Equal(suite.T(), security.ErrTokenKindMismatch, err)
}

func (suite *JWTTestSuite) TestValidateToken_OtherIssuer() {
	ctx := context.Background()
	other := *suite.config
	other.JWTIssuer = "someone-else"
	otherService, err := security.NewJWTokenService(&other)
	require.NoError(suite.T(), err)

	tokenString, err := otherService.GenerateToken(ctx, repository.TokenKindID, subject("user-123", ""), time.Minute)
	require.NoError(suite.T(), err)

	_, err = suite.service.ValidateToken(ctx, repository.TokenKindID, tokenString)
	assert.Equal(suite.T(), security.ErrTokenInvalid, err)
}

func (suite *JWTTestSuite) TestValidateToken_MalformedTokens() {
	ctx := context.Background()

	testCases := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"invalid format", "invalid.token.format"},
		{"malformed jwt", "header.payload"},
		{"random string", "not-a-jwt-token"},
		{"incomplete jwt", "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9"},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			claims, err := suite.service.ValidateToken(ctx, repository.TokenKindID, tc.token)

			assert.Nil(suite.T(), claims)
			assert.Equal(suite.T(), security.ErrTokenInvalid, err)
		})
	}
}

func (suite *JWTTestSuite) TestTokenLifecycle_MultipleCycles() {
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		userID := fmt.Sprintf("user-%d", i)
		email := fmt.Sprintf("user%d@example.com", i)
		extra := map[string]interface{}{"admin": i%2 == 0}

		token, err := suite.service.GenerateToken(ctx, repository.TokenKindSession, repository.TokenSubject{UserID: userID, Email: email, Extra: extra}, time.Hour)
		require.NoError(suite.T(), err)

		claims, err := suite.service.ValidateToken(ctx, repository.TokenKindSession, token)
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), userID, claims.UserID)
		assert.Equal(suite.T(), email, claims.Email)
		assert.Equal(suite.T(), extra, claims.Extra)
	}
}

func (suite *JWTTestSuite) TestGenerateToken_UniqueIDs() {
	ctx := context.Background()
	seen := make(map[string]bool)
	for range 3 {
		token, err := suite.service.GenerateToken(ctx, repository.TokenKindResetPassword, subject("user123", "a@example.com"), time.Hour)
		suite.Require().NoError(err)
		claims, err := suite.service.ValidateToken(ctx, repository.TokenKindResetPassword, token)
		suite.Require().NoError(err)
		suite.NotEmpty(claims.ID)
		suite.False(seen[claims.ID], "token id reused")
		seen[claims.ID] = true
	}
}

func TestJWTTestSuite(t *testing.T) {
	suite.Run(t, new(JWTTestSuite))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := security.HashPassword("password123")
	require.NoError(t, err)
	assert.NoError(t, security.CheckPassword(hash, "password123"))
	assert.ErrorIs(t, security.CheckPassword(hash, "wrong"), apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, security.CheckPassword("", "x"), apperrors.ErrInvalidCredentials)

	_, err = security.HashPassword("short")
	assert.ErrorIs(t, err, security.ErrWeakPassword)
	assert.True(t, apperrors.IsValidation(err))
}

func BenchmarkGenerateToken(b *testing.B) {
	service, _ := security.NewJWTokenService(testConfig())
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		service.GenerateToken(ctx, repository.TokenKindID, subject("user-123", "test@example.com"), time.Minute)
	}
}

func BenchmarkValidateToken(b *testing.B) {
	service, _ := security.NewJWTokenService(testConfig())
	ctx := context.Background()

	token, _ := service.GenerateToken(ctx, repository.TokenKindID, subject("user-123", "test@example.com"), time.Minute)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		service.ValidateToken(ctx, repository.TokenKindID, token)
	}
}
