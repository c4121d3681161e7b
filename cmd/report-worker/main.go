package main

import (
	"context"
	"errors"
	"os"
	"time"

	"saldo/internal/amqp"
	"saldo/internal/cache"
	"saldo/internal/cli"
	"saldo/internal/core"
	applog "saldo/internal/log"
	"saldo/internal/services"
	gsheet "saldo/internal/sheets/google"
	"saldo/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(applog.ComponentWorker)
	logger.Info("Starting report-worker")

	if err := cfg.ValidateReport(); err != nil {
		logger.Error("Report configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	res := cli.InitBackend(context.Background(), logger, cfg)

	salary, goal := cfg.DefaultFinance()
	ledgerService := services.NewLedgerService(res.Store, res.Locker,
		services.WithDefaultConfig(core.DefaultFinanceConfig(salary, goal)))

	sheetsClient, err := gsheet.New(context.Background(), gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.ReportSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
		CacheTTL:        cfg.ReportCacheTTL,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	cacheManager := cache.NewManager()
	if c := sheetsClient.Cache(); c != nil {
		cacheManager.Register(c)
		cacheManager.StartCleanup(cfg.ReportCacheTTL)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}

	reports := worker.NewReportWorker(ledgerService, sheetsClient)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		cacheManager.Stop()
		_ = amqpClient.Close()
		if err := res.Cleanup(); err != nil {
			logger.Warn("Backend cleanup failed", applog.FieldError, err)
		}
	})

	// Events may have been missed while the worker was down
	if err := reports.WriteYear(ctx, time.Now().Year()); err != nil {
		logger.Error("Startup report failed", applog.FieldError, err)
	}

	go func() {
		if err := amqpClient.ConsumeLedgerChanged(ctx, reports.HandleLedgerChanged); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", applog.FieldError, err)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Report-worker shutdown complete")
}
