package firebase

import (
	"context"
	"errors"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"firebase-kit/internal/auth/domain/model"
	apperrors "firebase-kit/internal/shared/errors"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error) {
	args := m.Called(ctx, user)
	rec, _ := args.Get(0).(*auth.UserRecord)
	return rec, args.Error(1)
}

func (m *mockClient) GetUser(ctx context.Context, uid string) (*auth.UserRecord, error) {
	args := m.Called(ctx, uid)
	rec, _ := args.Get(0).(*auth.UserRecord)
	return rec, args.Error(1)
}

func (m *mockClient) GetUserByEmail(ctx context.Context, email string) (*auth.UserRecord, error) {
	args := m.Called(ctx, email)
	rec, _ := args.Get(0).(*auth.UserRecord)
	return rec, args.Error(1)
}

func (m *mockClient) UpdateUser(ctx context.Context, uid string, user *auth.UserToUpdate) (*auth.UserRecord, error) {
	args := m.Called(ctx, uid, user)
	rec, _ := args.Get(0).(*auth.UserRecord)
	return rec, args.Error(1)
}

func (m *mockClient) DeleteUser(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

func (m *mockClient) Users(ctx context.Context, nextPageToken string) *auth.UserIterator {
	return nil
}

func (m *mockClient) EmailVerificationLink(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *mockClient) PasswordResetLink(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *mockClient) SessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, idToken, expiresIn)
	return args.String(0), args.Error(1)
}

func (m *mockClient) VerifySessionCookieAndCheckRevoked(ctx context.Context, cookie string) (*auth.Token, error) {
	args := m.Called(ctx, cookie)
	token, _ := args.Get(0).(*auth.Token)
	return token, args.Error(1)
}

func (m *mockClient) VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error) {
	args := m.Called(ctx, idToken)
	token, _ := args.Get(0).(*auth.Token)
	return token, args.Error(1)
}

func (m *mockClient) CustomTokenWithClaims(ctx context.Context, uid string, claims map[string]interface{}) (string, error) {
	args := m.Called(ctx, uid, claims)
	return args.String(0), args.Error(1)
}

func record(uid, email string) *auth.UserRecord {
	return &auth.UserRecord{
		UserInfo:      &auth.UserInfo{UID: uid, Email: email, DisplayName: "Ada"},
		EmailVerified: true,
		CustomClaims:  map[string]interface{}{"admin": true},
		UserMetadata:  &auth.UserMetadata{CreationTimestamp: 1700000000000},
	}
}

func TestService_GetUserConvertsRecord(t *testing.T) {
	ctx := context.Background()
	client := new(mockClient)
	client.On("GetUser", ctx, "u1").Return(record("u1", "a@example.com"), nil)

	user, err := NewService(client).GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.UID)
	assert.Equal(t, "a@example.com", user.Email)
	assert.Equal(t, "Ada", user.DisplayName)
	assert.True(t, user.EmailVerified)
	assert.Equal(t, true, user.CustomClaims["admin"])
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), user.CreatedAt)
	assert.True(t, user.LastSignInAt.IsZero())
	client.AssertExpectations(t)
}

func TestService_CreateAndUpdatePassThrough(t *testing.T) {
	ctx := context.Background()
	client := new(mockClient)
	client.On("CreateUser", ctx, mock.AnythingOfType("*auth.UserToCreate")).Return(record("gen", "b@example.com"), nil)
	client.On("UpdateUser", ctx, "gen", mock.AnythingOfType("*auth.UserToUpdate")).Return(record("gen", "c@example.com"), nil)

	svc := NewService(client)
	created, err := svc.CreateUser(ctx, &model.UserToCreate{Email: "b@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "gen", created.UID)

	email := "c@example.com"
	updated, err := svc.UpdateUser(ctx, "gen", &model.UserToUpdate{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "c@example.com", updated.Email)

	_, err = svc.UpdateUser(ctx, "gen", &model.UserToUpdate{})
	assert.True(t, apperrors.IsValidation(err))
	client.AssertExpectations(t)
}

func TestService_ListUsersUsesPager(t *testing.T) {
	svc := NewService(new(mockClient))
	svc.nextPage = func(ctx context.Context, pageSize int, pageToken string) ([]*auth.ExportedUserRecord, string, error) {
		assert.Equal(t, 2, pageSize)
		assert.Equal(t, "tok", pageToken)
		return []*auth.ExportedUserRecord{
			{UserRecord: record("a", "a@example.com")},
			{UserRecord: record("b", "b@example.com")},
		}, "next", nil
	}

	page, err := svc.ListUsers(context.Background(), 2, "tok")
	require.NoError(t, err)
	require.Len(t, page.Users, 2)
	assert.Equal(t, "b", page.Users[1].UID)
	assert.Equal(t, "next", page.NextPageToken)
}

func TestService_VerifyIDTokenConvertsToken(t *testing.T) {
	ctx := context.Background()
	client := new(mockClient)
	client.On("VerifyIDTokenAndCheckRevoked", ctx, "good").Return(&auth.Token{
		UID:      "u1",
		Issuer:   "https://securetoken.google.com/demo",
		IssuedAt: 1700000000,
		Expires:  1700003600,
		Claims:   map[string]interface{}{"email": "a@example.com"},
	}, nil)
	client.On("VerifyIDTokenAndCheckRevoked", ctx, "bad").Return(nil, errors.New("boom"))

	svc := NewService(client)
	token, err := svc.VerifyIDToken(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, "u1", token.UID)
	assert.Equal(t, "a@example.com", token.Email)
	assert.Equal(t, time.Unix(1700003600, 0).UTC(), token.ExpiresAt)

	_, err = svc.VerifyIDToken(ctx, "bad")
	assert.EqualError(t, err, "boom")
}

func TestMapError_PassesUnknownErrors(t *testing.T) {
	assert.NoError(t, mapError(nil))
	plain := errors.New("network down")
	assert.Equal(t, plain, mapError(plain))
}
