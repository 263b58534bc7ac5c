package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"spendo/internal/amqp"
	"spendo/internal/analytics"
	"spendo/internal/config"
	"spendo/internal/log"
	"spendo/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.Setup(log.DefaultConfig("renewal-worker"))
	logger.Info("Starting renewal-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required, the worker only publishes reminders")
		os.Exit(1)
	}
	if len(cfg.RenewalUsers) == 0 {
		logger.Warn("RENEWAL_USERS is empty, no reminders will be published")
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	engine := analytics.NewService(repo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Renewal reminder worker configured",
		"interval", cfg.RenewalInterval,
		"users", len(cfg.RenewalUsers),
		"sqlite_db", cfg.SQLiteDBPath)

	ticker := time.NewTicker(cfg.RenewalInterval)
	defer ticker.Stop()

	// Run an initial pass on startup so a freshly deployed worker does not
	// stay silent for a full interval.
	runPass(ctx, logger, engine, amqpClient, cfg.RenewalUsers)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				runPass(ctx, logger, engine, amqpClient, cfg.RenewalUsers)
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	logger.Info("Renewal-worker shutdown complete")
}

// runPass publishes one reminder per subscription charge projected inside the
// upcoming window, for every configured user. Failures on one user never stop
// the others.
func runPass(ctx context.Context, logger *slog.Logger, engine *analytics.Service, client *amqp.Client, users []string) {
	published := 0
	for _, user := range users {
		overview, err := engine.Subscriptions(ctx, user)
		if err != nil {
			logger.Error("Subscription overview failed", "user_id", user, "error", err)
			continue
		}
		for _, charge := range overview.UpcomingWeek {
			msg := &amqp.RenewalReminderMessage{
				UserID:          user,
				SubscriptionKey: charge.Subscription.Key,
				Label:           charge.Subscription.Transaction.Label(),
				AmountCents:     charge.Subscription.Amount.Cents,
				NextPaymentDate: charge.NextPaymentDate,
				Timestamp:       time.Now().UTC(),
			}
			if err := client.PublishRenewalReminder(ctx, msg); err != nil {
				logger.Error("Failed to publish renewal reminder",
					"user_id", user, "subscription", charge.Subscription.Key, "error", err)
				continue
			}
			published++
		}
	}
	logger.Info("Renewal pass complete", "reminders_published", published)
}
