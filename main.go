package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/maallem/internal/config"
	"github.com/msomdec/maallem/internal/domain"
	"github.com/msomdec/maallem/internal/handler"
	"github.com/msomdec/maallem/internal/repository/sqlite"
	"github.com/msomdec/maallem/internal/service"
	"github.com/msomdec/maallem/internal/session"
)

const sessionEventBuffer = 64

func main() {
	logOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	// Session changes are observed for the whole process lifetime.
	hub := session.NewHub(sessionEventBuffer)
	defer hub.Close()
	unsubscribe := hub.Subscribe(func(evt domain.SessionEvent) {
		slog.Info("session changed", "kind", evt.Kind, "user", evt.UserID, "role", evt.Role)
	})
	defer unsubscribe()

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	authService := service.NewAuthService(db.Users(), hub, cfg.JWTSecret, cfg.BcryptCost)
	listingService := service.NewListingService(db.Users(), db.Services())
	limiter := service.NewTokenBucket(ctx, cfg.AuthRatePerSec, cfg.AuthRateBurst)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, authService, listingService, limiter, cfg.CookieSecure, cfg.FeaturedLimit)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.SecurityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
