package memory

import (
	"context"
	"sync"

	"saldo/internal/core"
)

// Writer keeps the last report written per year. Used by the report worker
// when no spreadsheet is configured and by tests.
type Writer struct {
	mu      sync.Mutex
	reports map[int]core.YearReport
	writes  int
}

func New() *Writer {
	return &Writer{reports: map[int]core.YearReport{}}
}

// WriteYearReport implements sheets.ReportWriter.
func (w *Writer) WriteYearReport(_ context.Context, report core.YearReport) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reports[report.Series.Year] = report
	w.writes++
	return nil
}

// Report returns the last report written for year.
func (w *Writer) Report(year int) (core.YearReport, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	r, ok := w.reports[year]
	return r, ok
}

// Writes counts every WriteYearReport call.
func (w *Writer) Writes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes
}
