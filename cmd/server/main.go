package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saborlocal/payment-sync/internal/application/services"
	"github.com/saborlocal/payment-sync/internal/config"
	"github.com/saborlocal/payment-sync/internal/infrastructure/auth"
	"github.com/saborlocal/payment-sync/internal/infrastructure/gateway"
	"github.com/saborlocal/payment-sync/internal/infrastructure/persistence/mongostore"
	"github.com/saborlocal/payment-sync/internal/infrastructure/push"
	"github.com/saborlocal/payment-sync/internal/interfaces/rest/handlers"
	"github.com/saborlocal/payment-sync/internal/interfaces/rest/middleware"
	"github.com/saborlocal/payment-sync/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting payment-sync service",
		"env", cfg.Primary.Env,
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	store, err := mongostore.Connect(ctx, &cfg.Mongo, logger)
	if err != nil {
		logger.Error("failed to connect to mongodb", "error", err)
		os.Exit(1)
	}
	defer store.Close(ctx)

	orderRepo := mongostore.NewOrderRepository(store)
	userRepo := mongostore.NewUserRepository(store)
	changeStream := mongostore.NewOrderChangeStream(store, logger)

	gatewayClient := gateway.NewGatewayClient(cfg.Gateway)
	retryGateway := gateway.NewRetryGatewayClient(gatewayClient, cfg.Retry)
	pushClient := push.NewPushClient(cfg.Push)
	authVerifier := auth.NewAuthVerifier(cfg.Auth)

	reconcileService := services.NewReconcileService(orderRepo, retryGateway, logger)
	notifyService := services.NewNotifyService(userRepo, pushClient, logger)
	tokenService := services.NewTokenService(userRepo, logger)

	h := handlers.NewHandlers(
		reconcileService,
		notifyService,
		tokenService,
		authVerifier,
		logger,
	)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	handler := http.Handler(mux)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Timeout(cfg.Server.ReadTimeout)(handler)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	scanner := worker.NewPendingScanner(
		orderRepo,
		reconcileService,
		cfg.Worker.ScanInterval,
		cfg.Worker.BatchSize,
		cfg.Worker.Concurrency,
		logger,
	)

	watcher := worker.NewOrderChangeWatcher(changeStream, notifyService, logger)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go scanner.Start(workerCtx)
	go watcher.Start(workerCtx)

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

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
