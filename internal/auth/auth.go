// Package auth assembles the auth wrapper, its HTTP handler and middleware
// over either backend.
package auth

import (
	"fmt"

	authfirebase "firebase-kit/internal/auth/adapter/firebase"
	authhttp "firebase-kit/internal/auth/adapter/http"
	"firebase-kit/internal/auth/adapter/local"
	"firebase-kit/internal/auth/adapter/security"
	"firebase-kit/internal/auth/config"
	"firebase-kit/internal/auth/domain/repository"
	"firebase-kit/internal/auth/usecase"
	"firebase-kit/internal/shared/eventbus"
	"firebase-kit/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// AuthModule represents the complete authentication module
type AuthModule struct {
	usecase    *usecase.AuthUsecase
	handler    *authhttp.AuthHTTPHandler
	middleware *authhttp.AuthMiddleware
	config     *config.Config
}

// NewLocalModule creates a module backed by a self-hosted user repository
func NewLocalModule(users repository.UserRepository, cfg *config.Config, log logger.Logger, bus eventbus.Publisher) (*AuthModule, error) {
	tokenSvc, err := security.NewJWTokenService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}
	return newModule(local.NewService(users, tokenSvc, cfg, log), cfg, log, bus), nil
}

// NewFirebaseModule creates a module backed by the Firebase Admin SDK
func NewFirebaseModule(client authfirebase.Client, cfg *config.Config, log logger.Logger, bus eventbus.Publisher) *AuthModule {
	return newModule(authfirebase.NewService(client), cfg, log, bus)
}

func newModule(svc repository.AuthService, cfg *config.Config, log logger.Logger, bus eventbus.Publisher) *AuthModule {
	uc := usecase.NewAuthUsecase(svc, log, bus)
	return &AuthModule{
		usecase:    uc,
		handler:    authhttp.NewAuthHTTPHandler(uc, cfg),
		middleware: authhttp.NewAuthMiddleware(uc, cfg.CookieName),
		config:     cfg,
	}
}

// RegisterRoutes registers authentication routes with the provided router
func (am *AuthModule) RegisterRoutes(router fiber.Router) {
	am.handler.RegisterRoutes(router, am.middleware)
}

// GetUsecase returns the auth wrapper
func (am *AuthModule) GetUsecase() *usecase.AuthUsecase {
	return am.usecase
}

// GetMiddleware returns the auth middleware
func (am *AuthModule) GetMiddleware() *authhttp.AuthMiddleware {
	return am.middleware
}
