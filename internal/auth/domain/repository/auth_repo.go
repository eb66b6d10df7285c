package repository

import (
	"context"
	"time"

	"firebase-kit/internal/auth/domain/model"
)

// AuthService is the authentication collaborator the auth wrapper delegates to.
// Missing users are reported with errors wrapping errors.ErrUserNotFound and
// rejected tokens with errors.ErrInvalidToken or errors.ErrTokenExpired.
type AuthService interface {
	// User operations
	CreateUser(ctx context.Context, user *model.UserToCreate) (*model.User, error)
	GetUser(ctx context.Context, uid string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, uid string, update *model.UserToUpdate) (*model.User, error)
	DeleteUser(ctx context.Context, uid string) error
	ListUsers(ctx context.Context, pageSize int, pageToken string) (*model.UserPage, error)

	// Out-of-band action links
	EmailVerificationLink(ctx context.Context, email string) (string, error)
	PasswordResetLink(ctx context.Context, email string) (string, error)

	// Credential and session verification
	CreateSessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error)
	VerifySessionCookie(ctx context.Context, cookie string) (*model.Token, error)
	VerifyIDToken(ctx context.Context, idToken string) (*model.Token, error)
	CustomToken(ctx context.Context, uid string, claims map[string]interface{}) (string, error)
}

// PasswordAuthenticator is implemented by services that can check a password
// themselves. The Firebase Admin SDK cannot, so only the local backend does.
type PasswordAuthenticator interface {
	SignIn(ctx context.Context, email, password string) (*model.SignInResult, error)
}

// UserRepository persists accounts for the self-hosted auth backend
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, uid string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, uid string) error
	// ListUsers returns up to limit users ordered by uid, starting after afterUID.
	ListUsers(ctx context.Context, afterUID string, limit int) ([]*model.User, error)
}

// ActionCodeHandler consumes the out-of-band codes carried by action links.
// Only the local backend redeems them itself.
type ActionCodeHandler interface {
	ApplyEmailVerification(ctx context.Context, code string) (*model.User, error)
	ConfirmPasswordReset(ctx context.Context, code, newPassword string) (*model.User, error)
}
