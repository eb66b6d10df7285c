// Package testutil holds fixtures shared by the auth tests.
package testutil

import (
	"time"

	"firebase-kit/internal/auth/adapter/security"
	"firebase-kit/internal/auth/config"
	"firebase-kit/internal/auth/domain/model"
)

// DefaultPassword is the password of every fixture user
const DefaultPassword = "password123"

// Config returns an auth configuration valid for the local backend
func Config() *config.Config {
	return &config.Config{
		JWTSecretKey:      "test-secret-key-that-is-at-least-32-chars",
		JWTIssuer:         "firebase-kit-test",
		IDTokenTTL:        time.Hour,
		SessionTTL:        24 * time.Hour,
		ActionTokenTTL:    time.Hour,
		ActionLinkBaseURL: "http://localhost:3000/v1/auth/action",
		CookieName:        "__session",
		CookiePath:        "/",
		CookieHTTPOnly:    true,
		CookieSameSite:    "Lax",
	}
}

// UserFixture provides test data for User model
type UserFixture struct{}

// NewUserFixture creates a new UserFixture instance
func NewUserFixture() *UserFixture {
	return &UserFixture{}
}

// ValidUser returns a stored user whose password is DefaultPassword
func (f *UserFixture) ValidUser() *model.User {
	return f.UserWithPassword("test@example.com", DefaultPassword)
}

// UserWithPassword returns a stored user with a bcrypt hash of password
func (f *UserFixture) UserWithPassword(email, password string) *model.User {
	hash, err := security.HashPassword(password)
	if err != nil {
		panic(err)
	}
	now := time.Now().UTC()
	return &model.User{
		UID:          "user-" + email,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Admin returns a user carrying the admin custom claim
func (f *UserFixture) Admin() *model.User {
	u := f.UserWithPassword("admin@example.com", DefaultPassword)
	u.CustomClaims = map[string]interface{}{"admin": true}
	return u
}

// NewUser returns the create request for a fresh account
func (f *UserFixture) NewUser(email string) *model.UserToCreate {
	return &model.UserToCreate{Email: email, Password: DefaultPassword, DisplayName: "Test User"}
}
