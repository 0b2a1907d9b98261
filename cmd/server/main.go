package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/preciosya/backend/config"
	httpDelivery "github.com/preciosya/backend/internal/delivery/http"
	"github.com/preciosya/backend/internal/infrastructure/cache"
	"github.com/preciosya/backend/internal/infrastructure/persistence"
	"github.com/preciosya/backend/internal/infrastructure/retailers"
	"github.com/preciosya/backend/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := initLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("starting PreciosYa backend",
		slog.String("version", "1.0.0"),
		slog.String("environment", cfg.Server.Environment),
		slog.String("port", cfg.Server.Port),
		slog.String("search_url", cfg.Search.BaseURL),
		slog.String("cart_store", cfg.Cart.Type),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize infrastructure dependencies
	store, err := persistence.Open(cfg.Cart.Type, cfg.Cart.Path)
	if err != nil {
		return fmt.Errorf("opening cart store: %w", err)
	}
	defer store.Close()

	searchCache := cache.NewMemoryCache(ctx, cfg.Cache.CleanupInterval)
	client := retailers.NewClient(cfg.Search.BaseURL, retailers.ClientOptions{
		Timeout:       cfg.Search.Timeout,
		RatePerSecond: cfg.Search.RatePerSecond,
		Burst:         cfg.Search.Burst,
		MaxAttempts:   cfg.Search.MaxAttempts,
	}, logger)

	// Initialize usecase layer
	cart, err := usecase.NewCartService(ctx, store, logger)
	if err != nil {
		return fmt.Errorf("loading cart: %w", err)
	}
	search := usecase.NewSearchService(searchCache, client, usecase.SearchServiceConfig{
		CacheTTL:     cfg.Cache.TTL,
		DefaultLimit: cfg.Search.DefaultLimit,
		CallTimeout:  cfg.Search.Timeout * time.Duration(max(cfg.Search.MaxAttempts, 1)),
	}, logger)
	sessions := usecase.NewSessionRegistry(cart, cfg.Session.TTL, logger)
	go sessions.Run(ctx, cfg.Session.SweepInterval)

	handler := httpDelivery.NewHandler(search, cart, sessions, logger)
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Search.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", server.Addr))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")

		// Give outstanding requests time to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			server.Close()
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// initLogger creates a structured logger configured for the environment.
// Production logs JSON, everything else logs text; development logs debug.
func initLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Server.Environment == "development" {
		level = slog.LevelDebug
	}
	if cfg.Log.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			level = slog.LevelInfo
		}
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	format := strings.ToLower(cfg.Log.Format)
	if format == "" && cfg.IsProduction() {
		format = "json"
	}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
