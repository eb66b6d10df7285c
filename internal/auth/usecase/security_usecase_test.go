package usecase

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firebase-kit/internal/auth/domain/model"
	apperrors "firebase-kit/internal/shared/errors"
)

func TestSignIn_DelegatesToPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	svc := new(MockPasswordService)
	svc.On("SignIn", ctx, "a@example.com", "secret123").
		Return(&model.SignInResult{User: &model.User{UID: "u1"}, IDToken: "tok"}, nil)
	svc.On("SignIn", ctx, "a@example.com", "wrong").
		Return(nil, apperrors.ErrInvalidCredentials)

	uc := NewAuthUsecase(svc, nil, nil)
	require.True(t, uc.SupportsSignIn())

	out := uc.SignIn(ctx, "a@example.com", "secret123")
	require.True(t, out.OK)
	assert.Equal(t, "tok", out.Payload.IDToken)

	bad := uc.SignIn(ctx, "a@example.com", "wrong")
	assert.False(t, bad.OK)
	assert.Equal(t, "auth.sign_in failed", bad.Message)
	assert.Equal(t, http.StatusUnauthorized, apperrors.HTTPStatus(bad.Err()))
	svc.AssertExpectations(t)
}

func TestApplyActionCode(t *testing.T) {
	ctx := context.Background()
	svc := new(MockPasswordService)
	svc.On("ApplyEmailVerification", ctx, "verify-code").Return(&model.User{UID: "u1", EmailVerified: true}, nil)
	svc.On("ConfirmPasswordReset", ctx, "reset-code", "newpass123").Return(&model.User{UID: "u1"}, nil)

	uc := NewAuthUsecase(svc, nil, nil)

	verified := uc.ApplyActionCode(ctx, ModeVerifyEmail, "verify-code", "")
	require.True(t, verified.OK)
	assert.True(t, verified.Payload.EmailVerified)

	reset := uc.ApplyActionCode(ctx, ModeResetPassword, "reset-code", "newpass123")
	assert.True(t, reset.OK)

	unknown := uc.ApplyActionCode(ctx, "signIn", "x", "")
	assert.False(t, unknown.OK)
	assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatus(unknown.Err()))
	svc.AssertExpectations(t)
}
