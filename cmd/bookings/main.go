package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/recurring-bookings/internal/config"
	"github.com/example/recurring-bookings/internal/generation"
	httptransport "github.com/example/recurring-bookings/internal/http"
	"github.com/example/recurring-bookings/internal/occurrence"
	"github.com/example/recurring-bookings/internal/persistence/sqlite"
	"github.com/example/recurring-bookings/internal/pricing"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env file is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := sqlite.Migrate(ctx, pool); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	clampPolicy := occurrence.ClampToLastDay
	if cfg.MonthlyClamp == config.ClampPolicySkip {
		clampPolicy = occurrence.SkipMissingDay
	}

	idGenerator := func() string { return uuid.NewString() }
	now := time.Now

	scheduleRepo := sqlite.NewScheduleRepository(pool)
	bookingRepo := sqlite.NewBookingRepository(pool)

	rates := pricing.NewCachedRateSource(pricing.StaticRates(pricing.DefaultRates()), 5*time.Minute, now)
	quoter := pricing.NewTableQuoter(rates)

	generator := generation.NewGenerator(
		scheduleRepo, bookingRepo, quoter,
		occurrence.NewCalculator(clampPolicy),
		idGenerator, now, logger, cfg.GenerateWorkers)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Generation:     httptransport.NewGenerationHandler(generator, logger),
		Schedules:      httptransport.NewScheduleHandler(generator, logger),
		Health:         pool.Ping,
		AllowedOrigins: cfg.AllowedOrigins,
		Middleware:     []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("bookings API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
