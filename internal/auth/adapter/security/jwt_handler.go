package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"firebase-kit/internal/auth/config"
	"firebase-kit/internal/auth/domain/repository"
	apperrors "firebase-kit/internal/shared/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenInvalid          = fmt.Errorf("%w: token is invalid", apperrors.ErrInvalidToken)
	ErrTokenExpired          = fmt.Errorf("%w: token is expired", apperrors.ErrTokenExpired)
	ErrTokenSignatureInvalid = fmt.Errorf("%w: token signature is invalid", apperrors.ErrInvalidToken)
	ErrTokenKindMismatch     = fmt.Errorf("%w: token kind mismatch", apperrors.ErrInvalidToken)
)

// JWTokenService implements JWT token generation and validation
type JWTokenService struct {
	secretKey []byte
	issuer    string
	now       func() time.Time
}

// NewJWTokenService creates a new JWT token service
func NewJWTokenService(cfg *config.Config) (*JWTokenService, error) {
	if err := cfg.ValidateTokens(); err != nil {
		return nil, err
	}

	return &JWTokenService{
		secretKey: []byte(cfg.JWTSecretKey),
		issuer:    cfg.JWTIssuer,
		now:       time.Now,
	}, nil
}

// GenerateToken signs a token of kind for subject valid for ttl
func (s *JWTokenService) GenerateToken(ctx context.Context, kind repository.TokenKind, subject repository.TokenSubject, ttl time.Duration) (string, error) {
	if subject.UserID == "" {
		return "", errors.New("token subject cannot be empty")
	}
	if ttl <= 0 {
		return "", errors.New("token TTL must be positive")
	}

	now := s.now()
	claims := &repository.Claims{
		UserID: subject.UserID,
		Email:  subject.Email,
		Kind:   kind,
		Extra:  subject.Extra,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ValidateToken validates a JWT token of kind and returns the claims
func (s *JWTokenService) ValidateToken(ctx context.Context, kind repository.TokenKind, tokenString string) (*repository.Claims, error) {
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}

	token, err := jwt.ParseWithClaims(tokenString, &repository.Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenSignatureInvalid
		}
		return s.secretKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		// Check for specific JWT validation errors
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrTokenSignatureInvalid
		}
		return nil, ErrTokenInvalid
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*repository.Claims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	if claims.Kind != kind {
		return nil, ErrTokenKindMismatch
	}

	return claims, nil
}
