package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/LavaJover/pickup-settlement-service/internal/app/setup"
	"github.com/LavaJover/pickup-settlement-service/internal/config"
	"github.com/LavaJover/pickup-settlement-service/internal/delivery/http/handlers"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/logger"
	"github.com/LavaJover/pickup-settlement-service/internal/infrastructure/metrics"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	logg := logger.New(cfg.LogConfig)
	slog.SetDefault(logg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setup.InitializeDependencies(cfg, logg)
	if err != nil {
		logg.Error("failed to init dependencies", "error", err.Error())
		os.Exit(1)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logg.Error("failed to close dependencies", "error", err.Error())
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	settlementMetrics := metrics.NewSettlementMetrics(registry)

	ucs, err := setup.InitializeUsecases(ctx, deps, settlementMetrics, logg)
	if err != nil {
		logg.Error("failed to init usecases", "error", err.Error())
		os.Exit(1)
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		Approval:       handlers.NewApprovalHandler(ucs.Orders, cfg.Approval.ApprovedURL, cfg.Approval.AlreadyCompletedURL, logg),
		Webhook:        handlers.NewWebhookHandler(ucs.Webhooks, logg),
		PaymentIntents: handlers.NewPaymentIntentHandler(ucs.Payments, ucs.Nonces, logg),
		Admin:          handlers.NewAdminHandler(ucs.Orders, cfg.Admin.Token, logg),
		Gatherer:       registry,
		RequestTimeout: cfg.HTTPServer.WriteTimeout,
	})

	srv := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info("http server started", "addr", srv.Addr, "env", cfg.Env)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logg.Error("http server failed", "error", err.Error())
		}
	case <-ctx.Done():
		logg.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("http server shutdown failed", "error", err.Error())
	}
	// Let queued order events reach the broker before it is closed.
	ucs.Orders.Drain()
}
