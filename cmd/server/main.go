// Package main is the entry point for the supplyfin API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"supplyfin/internal/app"
	"supplyfin/internal/domain/auth"
	"supplyfin/internal/infrastructure/config"
	v1 "supplyfin/internal/infrastructure/http/v1"
	"supplyfin/internal/infrastructure/http/v1/handlers"
	"supplyfin/pkg/logger"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development || cfg.App.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting supplyfin server", "version", version, "env", cfg.App.Env, "storage", cfg.Storage.Driver)

	rt, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalw("failed to open storage", "error", err)
	}
	defer rt.Close()

	jwtConfig := auth.DefaultJWTConfig(cfg.JWT.Secret)
	jwtConfig.Issuer = cfg.JWT.Issuer
	jwtConfig.AccessTokenTTL = cfg.JWT.AccessTokenExpiration
	jwtService := auth.NewJWTService(jwtConfig)

	checks := map[string]handlers.Pinger{}
	if rt.Pool != nil {
		checks["database"] = rt.Pool
	}
	if rt.Redis != nil {
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return rt.Redis.Ping(ctx).Err()
		})
	}

	handler := v1.NewHandler(v1.RouterConfig{
		Logger:       log,
		Tokens:       jwtService,
		Supplies:     rt.Services.Supplies,
		Registries:   rt.Services.Registries,
		Tariffs:      rt.Services.Tariffs,
		Calendar:     rt.Services.Calendar,
		HealthChecks: checks,
		Version:      version,
		Compression:  cfg.HTTP.Compression,
		Development:  cfg.App.IsDevelopment(),
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Infow("server starting", "port", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
