package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"firebase-kit/internal/auth/domain/model"
)

// MockAuthService is a mock implementation of repository.AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) CreateUser(ctx context.Context, user *model.UserToCreate) (*model.User, error) {
	args := m.Called(ctx, user)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockAuthService) GetUser(ctx context.Context, uid string) (*model.User, error) {
	args := m.Called(ctx, uid)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockAuthService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockAuthService) UpdateUser(ctx context.Context, uid string, update *model.UserToUpdate) (*model.User, error) {
	args := m.Called(ctx, uid, update)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockAuthService) DeleteUser(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

func (m *MockAuthService) ListUsers(ctx context.Context, pageSize int, pageToken string) (*model.UserPage, error) {
	args := m.Called(ctx, pageSize, pageToken)
	p, _ := args.Get(0).(*model.UserPage)
	return p, args.Error(1)
}

func (m *MockAuthService) EmailVerificationLink(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) PasswordResetLink(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) CreateSessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, idToken, expiresIn)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) VerifySessionCookie(ctx context.Context, cookie string) (*model.Token, error) {
	args := m.Called(ctx, cookie)
	t, _ := args.Get(0).(*model.Token)
	return t, args.Error(1)
}

func (m *MockAuthService) VerifyIDToken(ctx context.Context, idToken string) (*model.Token, error) {
	args := m.Called(ctx, idToken)
	t, _ := args.Get(0).(*model.Token)
	return t, args.Error(1)
}

func (m *MockAuthService) CustomToken(ctx context.Context, uid string, claims map[string]interface{}) (string, error) {
	args := m.Called(ctx, uid, claims)
	return args.String(0), args.Error(1)
}

// MockPasswordService adds password sign-in and action codes
type MockPasswordService struct {
	MockAuthService
}

func (m *MockPasswordService) SignIn(ctx context.Context, email, password string) (*model.SignInResult, error) {
	args := m.Called(ctx, email, password)
	r, _ := args.Get(0).(*model.SignInResult)
	return r, args.Error(1)
}

func (m *MockPasswordService) ApplyEmailVerification(ctx context.Context, code string) (*model.User, error) {
	args := m.Called(ctx, code)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockPasswordService) ConfirmPasswordReset(ctx context.Context, code, newPassword string) (*model.User, error) {
	args := m.Called(ctx, code, newPassword)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}
