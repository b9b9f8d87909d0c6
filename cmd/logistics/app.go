package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/antoan291/Logistics-Engine/internal/db"
	"github.com/antoan291/Logistics-Engine/internal/handlers"
	"github.com/antoan291/Logistics-Engine/internal/logger"
	"github.com/antoan291/Logistics-Engine/internal/repository"
	"github.com/antoan291/Logistics-Engine/internal/repository/postgres"
	"github.com/antoan291/Logistics-Engine/internal/service/auth"
	"github.com/antoan291/Logistics-Engine/internal/service/auth/tokenissuer"
	"github.com/antoan291/Logistics-Engine/internal/service/trailer"
)

// How often expired refresh tokens are swept from the store
const tokenSweepInterval = time.Hour

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	storage repository.Storage
	logger  logger.Logger
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	l, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	issuer, err := tokenissuer.New(tokenissuer.Config{
		AccessSecret:  c.AccessSecret,
		RefreshSecret: c.RefreshSecret,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token issuer. Err: %w", err)
	}

	authService, err := auth.NewService(auth.Config{}, issuer, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	trailerService, err := trailer.NewService(storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating trailer service. Err: %w", err)
	}

	mux := handlers.NewRouter(authService, authService, trailerService, l)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		storage:    storage,
		logger:     l,
	}, nil
}

// Run starts the http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go s.sweepExpiredTokens(srvCtx)

	idleConnsClosed := make(chan struct{})
	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close connections gracefully
	s.logger.Info("Starting server", "addr", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}

// sweepExpiredTokens removes expired refresh tokens out-of-band
// The auth flow deletes them lazily on refresh attempts only, so tokens of
// abandoned sessions would pile up without the sweep
func (s *ServerApp) sweepExpiredTokens(ctx context.Context) {
	ticker := time.NewTicker(tokenSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.storage.Refresh().DeleteExpired(ctx, time.Now())
			if err != nil {
				s.logger.Error("Failed to sweep expired refresh tokens", "error", err)
				continue
			}
			if deleted > 0 {
				s.logger.Info("Swept expired refresh tokens", "deleted", deleted)
			}
		}
	}
}
