package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erp/backoffice/internal/bootstrap"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, logs, err := bootstrap.NewLogger(context.Background(), cfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("Starting ERP back office",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", bootstrap.Version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to start", zap.Error(err))
	}

	runErr := app.Run(ctx)
	if runErr != nil {
		log.Error("Server stopped", zap.Error(runErr))
	} else {
		log.Info("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	shutdownErr := app.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		log.Error("Shutdown incomplete", zap.Error(shutdownErr))
	} else {
		log.Info("Server exited")
	}
	if err := logs.Shutdown(shutdownCtx); err != nil {
		log.Warn("OTLP logs not flushed", zap.Error(err))
	}
	if shutdownErr != nil || runErr != nil {
		os.Exit(1)
	}
}
