package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vrecorder/internal/config"
	"vrecorder/internal/logger"
	"vrecorder/internal/server"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
)

func main() {
	log := logger.New(os.Stdout)
	logger.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	if os.Getenv("APP_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	slog.Info("Starting visit recorder gateway",
		"port", cfg.Port,
		"api_base_url", cfg.APIBaseURL,
		"session_store", cfg.SessionStore,
		"recordings", cfg.S3.Enabled(),
	)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 10*time.Second)
	core, err := server.NewCore(initCtx, cfg, log)
	cancelInit()
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}
	defer core.Close()

	// validate once at startup so an expired session is purged before the
	// first page load
	if res, err := core.Auth.Check(context.Background()); err != nil {
		slog.Warn("Failed to check stored session", "error", err)
	} else {
		slog.Info("Stored session checked", "valid", res.Valid, "reason", res.Reason)
	}

	core.Auth.OnLogout(func(reason string) {
		slog.Info("Signed out", "reason", reason)
	})

	srv := server.NewHTTPServer(cfg, core, log)

	go func() {
		slog.Info("Gateway listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down gateway")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Gateway stopped")
}
