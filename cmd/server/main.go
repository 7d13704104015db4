package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/petofy/petcare-payments/internal/config"
	"github.com/petofy/petcare-payments/internal/gateway"
	"github.com/petofy/petcare-payments/internal/rest"
	"github.com/petofy/petcare-payments/internal/rest/middleware"
	"github.com/petofy/petcare-payments/internal/service"
	"github.com/petofy/petcare-payments/internal/storage/postgres"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger(cfg.Primary.Env)
	slog.SetDefault(logger)

	logger.Info("starting payment service",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
		"demo_mode", cfg.Gateway.DemoMode(),
	)

	ctx := context.Background()
	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	paymentRepo := postgres.NewPaymentRepository(db)
	customerRepo := postgres.NewCustomerRepository(db)
	serviceTypeRepo := postgres.NewServiceTypeRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	coordinator := postgres.NewTransactionCoordinator(db)

	gatewayClient := gateway.NewClient(cfg.Gateway)
	retryGatewayClient := gateway.NewRetryClient(gatewayClient, cfg.Retry)

	// Order creation stays on the plain client: the caller is waiting and a
	// duplicate gateway order from a blind retry costs money to untangle.
	// Reconciliation reads are safe to retry.
	issuer := service.NewOrderIssuer(paymentRepo, customerRepo, serviceTypeRepo, bookingRepo, gatewayClient, cfg.Gateway, logger)
	reconciler := service.NewCallbackReconciler(paymentRepo, retryGatewayClient, cfg.Gateway, logger)
	projector := service.NewProjector(coordinator, cfg.Retry, logger)
	query := service.NewStatusQuery(paymentRepo)

	h := rest.NewPaymentHandler(issuer, reconciler, projector, query, logger)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	handler := middleware.Recovery(logger)(mux)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Timeout(cfg.Server.ReadTimeout)(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
