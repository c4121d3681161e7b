package main

import (
	"context"
	"time"

	"saldo/internal/amqp"
	"saldo/internal/cli"
	"saldo/internal/core"
	applog "saldo/internal/log"
	"saldo/internal/services"
	"saldo/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentWorker)
	logger.Info("Starting recurring-worker")

	res := cli.InitBackend(context.Background(), logger, cfg)

	salary, goal := cfg.DefaultFinance()
	opts := []services.LedgerOption{
		services.WithDefaultConfig(core.DefaultFinanceConfig(salary, goal)),
	}

	// Change events let the report-worker refresh the sheet after projection
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change events", applog.FieldError, err)
			amqpClient = nil
		} else {
			opts = append(opts, services.WithPublisher(amqpClient))
			logger.Info("AMQP client initialized - projections will be announced")
		}
	} else {
		logger.Info("AMQP disabled - projections will not be announced")
	}

	ledgerService := services.NewLedgerService(res.Store, res.Locker, opts...)
	recurring := worker.NewRecurringWorker(ledgerService, cfg.RecurringInterval)

	logger.Info("Recurring projection configured",
		"interval", cfg.RecurringInterval,
		applog.FieldBackend, cfg.DataBackend)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if amqpClient != nil {
			_ = amqpClient.Close()
		}
		if err := res.Cleanup(); err != nil {
			logger.Warn("Backend cleanup failed", applog.FieldError, err)
		}
	})

	go recurring.Run(ctx)

	cli.WaitForShutdown(ctx, done)
	logger.Info("Recurring-worker shutdown complete")
}
