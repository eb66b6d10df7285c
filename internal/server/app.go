// Package server assembles the HTTP surface over an initialized container.
package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	blobhttp "firebase-kit/internal/blobstore/adapter/http"
	"firebase-kit/internal/config"
	"firebase-kit/internal/di"
	dochttp "firebase-kit/internal/docstore/adapter/http"
	rthttp "firebase-kit/internal/realtime/adapter/http"
	"firebase-kit/internal/realtime/adapter/websocket"
	apperrors "firebase-kit/internal/shared/errors"
	"firebase-kit/internal/shared/logger"
	"firebase-kit/internal/shared/outcome"
	"firebase-kit/internal/shared/utils"
)

// NewApp builds the Fiber app and mounts every wrapper
func NewApp(cfg *config.Config, container *di.Container, appLogger logger.Logger) *fiber.App {
	if appLogger == nil {
		appLogger = logger.NopLogger{}
	}
	app := fiber.New(fiber.Config{
		AppName:               "Firebase Kit",
		DisableStartupMessage: true,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           cfg.Server.IdleTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			message := "Internal Server Error"
			if fe, ok := err.(*fiber.Error); ok {
				status, message = fe.Code, fe.Message
			} else {
				appLogger.WithContext(c.UserContext()).Errorf("HTTP Error: %v", err)
			}
			failure := apperrors.NewAppError(apperrors.ErrorTypeInternal, message, status)
			return c.Status(status).JSON(outcome.Failure[outcome.None](failure))
		},
	})

	authModule := container.GetAuthModule()
	middleware := authModule.GetMiddleware()

	app.Use(recover.New())
	app.Use(middleware.CORS(cfg.Server.CORSOrigins))
	app.Use(middleware.SecurityHeaders())
	app.Use(utils.RequestContext())

	app.Get("/health", func(c *fiber.Ctx) error {
		healthCtx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()

		if err := container.HealthCheck(healthCtx); err != nil {
			appLogger.Errorf("Health check failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "UNHEALTHY",
				"error":  err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"status":    "HEALTHY",
			"timestamp": time.Now().UTC(),
			"backends":  cfg.Backends,
		})
	})

	v1 := app.Group("/v1")
	if cfg.Server.RateLimit > 0 {
		v1.Use(middleware.RateLimiter(cfg.Server.RateLimit))
	}

	authModule.RegisterRoutes(v1.Group("/auth"))

	storage := blobhttp.NewStorageHandler(container.Blobs, container.BlobResolver)
	storageGroup := v1.Group("/storage")
	storage.RegisterRawRoute(storageGroup)

	// Data routes are registered after the raw route so the optional guard
	// below does not cover token URLs.
	var guard []fiber.Handler
	if cfg.Server.RequireAuth {
		guard = append(guard, middleware.Protect())
	} else {
		guard = append(guard, middleware.OptionalAuth())
	}

	dochttp.NewDocumentHandler(container.DocStore).RegisterRoutes(v1.Group("/docs", guard...))
	rthttp.NewDatabaseHandler(container.Realtime).RegisterRoutes(v1.Group("/rtdb", guard...))
	storage.RegisterRoutes(storageGroup.Group("/", guard...))

	websocket.NewListener(container.EventBus, appLogger).RegisterRoutes(app.Group(cfg.Server.WebSocketPrefix, guard...))
	return app
}
