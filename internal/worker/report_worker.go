package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"saldo/internal/amqp"
	"saldo/internal/core"
	applog "saldo/internal/log"
	"saldo/internal/services"
	"saldo/internal/sheets"
)

// LedgerReader is the read side of the ledger the report worker needs.
type LedgerReader interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	Config(ctx context.Context) (core.FinanceConfig, error)
}

// ReportWorker rebuilds a year's report whenever the ledger changes.
type ReportWorker struct {
	ledger LedgerReader
	writer sheets.ReportWriter
	now    func() time.Time
}

func NewReportWorker(ledger LedgerReader, writer sheets.ReportWriter) *ReportWorker {
	return &ReportWorker{
		ledger: ledger,
		writer: writer,
		now:    time.Now,
	}
}

// HandleLedgerChanged processes a single change event from AMQP. An event
// without a year refreshes the current one.
func (w *ReportWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	year := msg.Year
	if year == 0 {
		year = w.now().Year()
	}

	slog.InfoContext(ctx, "Processing ledger change",
		applog.FieldComponent, applog.ComponentWorker,
		applog.FieldReason, msg.Reason,
		applog.FieldYear, year,
		applog.FieldGenerated, msg.Generated)

	return w.WriteYear(ctx, year)
}

// WriteYear computes the report for year from the stored ledger and hands
// it to the writer.
func (w *ReportWorker) WriteYear(ctx context.Context, year int) error {
	start := time.Now()

	txs, err := w.ledger.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	cfg, err := w.ledger.Config(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	report := services.YearReport(txs, cfg.BaseSalary, year, w.now())
	if err := w.writer.WriteYearReport(ctx, report); err != nil {
		return fmt.Errorf("write year report: %w", err)
	}

	slog.InfoContext(ctx, "Year report refreshed",
		applog.FieldComponent, applog.ComponentWorker,
		applog.FieldOperation, applog.OpReport,
		applog.FieldYear, year,
		applog.FieldDuration, time.Since(start).Milliseconds())
	return nil
}
