// Package server wires the client core (session store, API client, auth,
// navigator, visit notes) from configuration and builds the HTTP server
// around the gateway router. Both binaries start from NewCore.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"vrecorder/internal/api"
	"vrecorder/internal/auth"
	"vrecorder/internal/config"
	"vrecorder/internal/gateway"
	"vrecorder/internal/schedule"
	"vrecorder/internal/session"
	"vrecorder/internal/storage"
	"vrecorder/internal/tokens"
	"vrecorder/internal/visits"
)

// Core holds the services shared by the web gateway and the terminal UI
type Core struct {
	Auth      *auth.Service
	Navigator *schedule.Navigator
	Visits    *visits.Service

	store session.Store
}

type pinger interface {
	Ping(ctx context.Context) error
}

// NewCore builds the services described by cfg. Recording storage is
// optional: when it cannot be reached the core still starts without it.
func NewCore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Core, error) {
	store, err := NewStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("Session store ready", "backend", cfg.SessionStore)

	sessions := session.NewManager(store, session.WithLogger(logger))
	tokenStore := tokens.NewStore(store)

	client := api.New(cfg.APIBaseURL, tokenStore,
		api.WithHTTPClient(&http.Client{Timeout: cfg.APITimeout}),
		api.WithRateLimit(cfg.APIRPS, cfg.APIBurst),
		api.WithLogger(logger),
	)

	var recordings storage.Service
	if cfg.S3.Enabled() {
		s, err := storage.New(ctx, cfg.S3, logger)
		if err != nil {
			logger.Warn("Recording storage unavailable", "error", err.Error())
		} else {
			if err := s.EnsureBucketExists(ctx); err != nil {
				logger.Warn("Failed to ensure bucket exists", "error", err.Error())
			}
			recordings = s
			logger.Info("Recording storage initialized", "bucket", cfg.S3.Bucket)
		}
	}

	return &Core{
		Auth:      auth.NewService(client, sessions, tokenStore, logger),
		Navigator: schedule.NewNavigator(client, time.Now(), logger),
		Visits:    visits.NewService(client, recordings, logger),
		store:     store,
	}, nil
}

// NewStore opens the session store selected by SESSION_STORE
func NewStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	switch cfg.SessionStore {
	case config.StoreMemory:
		return session.NewMemoryStore(), nil
	case config.StoreRedis:
		store := session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if p, ok := store.(pinger); ok {
			if err := p.Ping(ctx); err != nil {
				return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
			}
		}
		return store, nil
	case config.StoreFile:
		return session.NewFileStore(cfg.StatePath()), nil
	}
	return nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
}

// Close releases the session store's connections
func (c *Core) Close() error {
	if closer, ok := c.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// NewHTTPServer creates the gateway HTTP server for core
func NewHTTPServer(cfg *config.Config, core *Core, logger *slog.Logger) *http.Server {
	handler := gateway.NewHandler(core.Auth, core.Navigator, core.Visits, logger)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           gateway.SetupRouter(handler, cfg.CORSOrigins, logger),
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}
