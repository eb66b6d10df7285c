package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"firebase-kit/internal/config"
	"firebase-kit/internal/di"
	"firebase-kit/internal/server"
	"firebase-kit/internal/shared/logger"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.NewLogger()
	appLogger.WithFields(map[string]interface{}{
		"docstore": cfg.Backends.DocStore,
		"auth":     cfg.Backends.Auth,
		"realtime": cfg.Backends.Realtime,
		"blob":     cfg.Backends.Blob,
	}).Info("Firebase Kit starting")

	container := di.NewContainer(cfg, appLogger)
	defer func() {
		if err := container.Close(); err != nil {
			appLogger.Errorf("Failed to close container: %v", err)
		}
	}()

	initCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	err = container.Initialize(initCtx)
	cancel()
	if err != nil {
		appLogger.Errorf("Startup failed: %v", err)
		return
	}

	app := server.NewApp(cfg, container, appLogger)

	serverShutdown := make(chan error, 1)
	go func() {
		appLogger.Infof("Starting HTTP server on %s", cfg.Server.Addr())
		serverShutdown <- app.Listen(cfg.Server.Addr())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverShutdown:
		if err != nil {
			appLogger.Errorf("Server failed: %v", err)
		}
	case sig := <-quit:
		appLogger.Infof("Received shutdown signal: %v", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.Errorf("Server forced to shutdown: %v", err)
		}
		appLogger.Info("HTTP server stopped")
	}
}
