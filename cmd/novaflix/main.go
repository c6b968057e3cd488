package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"novaflix/api"
	"novaflix/config"
	"novaflix/internal/database"
	"novaflix/internal/logging"
	"novaflix/services/accounts"
	"novaflix/services/metadata"
	"novaflix/services/sessions"
	"novaflix/services/watchlist"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("[main] %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, logCloser := logging.Setup(cfg.Log)
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open account store: %w", err)
	}
	defer store.Close()
	log.Printf("[main] account store ready driver=%s", cfg.Store.Driver)

	sessionsSvc, err := sessions.NewService(cfg.JWTSecret, cfg.SessionDuration)
	if err != nil {
		return fmt.Errorf("init sessions: %w", err)
	}
	if len(cfg.TMDB.Keys()) == 0 {
		log.Printf("[main] WARNING: no TMDB api key configured, catalog routes will fail")
	}
	metadataSvc := metadata.NewService(cfg.TMDB, cfg.EnrichWorkers, nil)

	handler := api.NewHandler(api.Services{
		Accounts:  accounts.NewService(store),
		Sessions:  sessionsSvc,
		Metadata:  metadataSvc,
		Watchlist: watchlist.NewService(store, metadataSvc, cfg.EnrichWorkers),
	}, cfg.CORSOrigins, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[main] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("[main] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
