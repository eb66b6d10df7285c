package http_test

import (
	"context"

	"firebase-kit/internal/auth/domain/model"
	"firebase-kit/internal/shared/outcome"

	"github.com/stretchr/testify/mock"
)

// mockVerifier is a shared mock for authhttp.TokenVerifier
type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) VerifyIDToken(ctx context.Context, idToken string) outcome.Outcome[*model.Token] {
	return m.result(m.Called(ctx, idToken))
}

func (m *mockVerifier) VerifySessionCookie(ctx context.Context, cookie string) outcome.Outcome[*model.Token] {
	return m.result(m.Called(ctx, cookie))
}

func (m *mockVerifier) result(args mock.Arguments) outcome.Outcome[*model.Token] {
	if token, ok := args.Get(0).(*model.Token); ok {
		return outcome.Success(token)
	}
	return outcome.Failure[*model.Token](args.Error(1))
}
