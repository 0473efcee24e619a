package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"outlay/internal/amqp"
	"outlay/internal/config"
)

// The worker drains the budget alert queue and delivers each alert as an
// email to the configured recipient. Delivery is mocked: the message is
// written to the log instead of handed to an SMTP server.
func main() {
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
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the alert worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqp.RunConsumer(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, func(msg *amqp.BudgetAlertMessage) error {
			return sendAlertEmail(logger, cfg.AlertRecipient, msg)
		})
	})

	logger.Info("Starting alert worker", "queue", cfg.AMQPQueue, "recipient", cfg.AlertRecipient)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

func sendAlertEmail(logger *slog.Logger, recipient string, msg *amqp.BudgetAlertMessage) error {
	logger.Info("Sending budget alert email",
		"to", recipient,
		"subject", msg.Subject(),
		"body", msg.Body(),
		"level", msg.Level,
		"category", msg.Category,
		"month", msg.Month,
		"year", msg.Year,
	)
	return nil
}
