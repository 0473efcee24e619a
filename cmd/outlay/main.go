package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"outlay/internal/alert"
	"outlay/internal/amqp"
	"outlay/internal/config"
	apphttp "outlay/internal/http"
	"outlay/internal/report"
	"outlay/internal/services"
	"outlay/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.DBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Bootstrap the single configured identity. Authentication is out of
	// scope; every request acts as this user.
	user, err := repo.EnsureUser(context.Background(), cfg.DefaultUsername, cfg.DefaultUserEmail)
	if err != nil {
		logger.Error("Failed to bootstrap default user", "error", err, "username", cfg.DefaultUsername)
		os.Exit(1)
	}
	logger.Info("Default user ready", "user_id", user.ID, "username", user.Username)

	// Queued alert delivery is optional; without a broker, alerts are
	// surfaced in the UI and logs only.
	var notifier alert.Notifier
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		notifier = amqpClient
		logger.Info("AMQP alert delivery enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - alerts will only be shown in the UI")
	}

	evaluator := alert.NewEvaluator(repo, notifier)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Repo:     repo,
		Reports:  report.NewEngine(repo),
		Expenses: services.NewExpenseService(repo, evaluator),
		Budgets:  services.NewBudgetService(repo),
		UserID:   user.ID,
		CacheTTL: cfg.CacheTTL,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting outlay server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
