package worker

import (
	"context"
	"log/slog"
	"time"

	"saldo/internal/core"
	applog "saldo/internal/log"
	"saldo/internal/services"
)

// Viewer materializes recurring rules up to a horizon.
type Viewer interface {
	View(ctx context.Context, horizon core.Month) (services.Dashboard, error)
}

// RecurringWorker keeps recurring rules projected through December of the
// current year by viewing the current month on a schedule.
type RecurringWorker struct {
	ledger   Viewer
	interval time.Duration
}

func NewRecurringWorker(ledger Viewer, interval time.Duration) *RecurringWorker {
	return &RecurringWorker{ledger: ledger, interval: interval}
}

// RunOnce projects as of now and returns how many transactions were created.
func (w *RecurringWorker) RunOnce(ctx context.Context, now time.Time) (int, error) {
	dash, err := w.ledger.View(ctx, core.MonthOf(now))
	if err != nil {
		return 0, err
	}
	return dash.Generated, nil
}

// Run projects at startup and then on every tick until ctx is done.
func (w *RecurringWorker) Run(ctx context.Context) {
	w.tick(ctx, time.Now())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			w.tick(ctx, now)
		}
	}
}

func (w *RecurringWorker) tick(ctx context.Context, now time.Time) {
	count, err := w.RunOnce(ctx, now)
	if err != nil {
		slog.ErrorContext(ctx, "Recurring projection failed",
			applog.FieldComponent, applog.ComponentWorker,
			applog.FieldOperation, applog.OpProject,
			applog.FieldError, err)
		return
	}
	slog.InfoContext(ctx, "Recurring projection complete",
		applog.FieldComponent, applog.ComponentWorker,
		applog.FieldOperation, applog.OpProject,
		applog.FieldGenerated, count,
		"next_check", now.Add(w.interval).Format("15:04:05"))
}
