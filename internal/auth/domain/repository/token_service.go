package repository

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind separates tokens that share a signing key so one kind can never
// be accepted as another.
type TokenKind string

const (
	TokenKindID            TokenKind = "id"
	TokenKindSession       TokenKind = "session"
	TokenKindCustom        TokenKind = "custom"
	TokenKindVerifyEmail   TokenKind = "verify_email"
	TokenKindResetPassword TokenKind = "reset_password"
)

// TokenService defines the interface for token operations
type TokenService interface {
	GenerateToken(ctx context.Context, kind TokenKind, subject TokenSubject, ttl time.Duration) (string, error)
	ValidateToken(ctx context.Context, kind TokenKind, tokenString string) (*Claims, error)
}

// TokenSubject is what a token asserts about its holder
type TokenSubject struct {
	UserID string
	Email  string
	Extra  map[string]interface{}
}

// Claims represents JWT claims
type Claims struct {
	UserID string                 `json:"userID"`
	Email  string                 `json:"email,omitempty"`
	Kind   TokenKind              `json:"kind"`
	Extra  map[string]interface{} `json:"claims,omitempty"`
	jwt.RegisteredClaims
}
