/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the hostel billing service: configuration,
  logger, SQLite store, domain services, HTTP router, graceful
  shutdown.

STARTUP SEQUENCE:
  1. Load configuration from environment (envconfig)
  2. Build the slog logger
  3. Open the SQLite store and migrate the schema
  4. Wire the summary builder and services with the configured
     ledger capabilities
  5. Start the HTTP server; drain on SIGINT/SIGTERM

ENVIRONMENT:
  APP_ADDR, DB_PATH, LOG_FORMAT, FINANCIALS_ENABLED,
  INCOME_LEDGER_ENABLED, CHECKOUT_LEDGER_ENABLED,
  RATE_LIMIT_PER_MINUTE, CORS_ORIGINS — see app/config.go.
*/
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hostelcore/billing-engine/api"
	"github.com/hostelcore/billing-engine/app"
	"github.com/hostelcore/billing-engine/billing"
	"github.com/hostelcore/billing-engine/store/sqlite"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Error("open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	summaries := billing.NewSummaryBuilder(store, store, cfg.Capabilities(), logger)
	payments := billing.NewPaymentService(store, store, summaries, logger)
	checkouts := billing.NewCheckoutService(store, store, summaries, logger)
	registrations := billing.NewRegistrationService(store, store, logger)

	handler := api.NewHandler(store, store, summaries, payments, checkouts, registrations, logger)
	router := api.NewRouter(handler, api.RouterOptions{
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
		IdleTimeout:  cfg.AppIdleTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped")
}
