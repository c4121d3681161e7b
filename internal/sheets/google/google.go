package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"saldo/internal/cache"
	"saldo/internal/core"
	applog "saldo/internal/log"
	ports "saldo/internal/sheets"
)

// Options configures the report client.
type Options struct {
	SpreadsheetID string
	// SheetName is the base tab name without year; the year is prefixed.
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
	// CacheTTL bounds how long an unchanged report is skipped. Zero disables it.
	CacheTTL time.Duration
}

type updateFunc func(ctx context.Context, rng string, rows [][]any) error

type Client struct {
	update        updateFunc
	spreadsheetID string
	sheetBase     string
	// last rendered rows per tab
	written *cache.LRUCache[string]
}

// Ensure interface conformance
var _ ports.ReportWriter = (*Client)(nil)

// New creates a Sheets report client using service account credentials.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, opts.CredentialsJSON, opts.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	id := opts.SpreadsheetID
	update := func(ctx context.Context, rng string, rows [][]any) error {
		vr := &gsheet.ValueRange{Values: rows}
		_, err := svc.Spreadsheets.Values.Update(id, rng, vr).
			ValueInputOption("USER_ENTERED").Context(ctx).Do()
		return err
	}
	return newClient(update, opts), nil
}

func newClient(update updateFunc, opts Options) *Client {
	base := strings.TrimSpace(opts.SheetName)
	if base == "" {
		base = "Report"
	}
	c := &Client{
		update:        update,
		spreadsheetID: opts.SpreadsheetID,
		sheetBase:     base,
	}
	if opts.CacheTTL > 0 {
		c.written = cache.NewLRUCache[string](32, opts.CacheTTL)
	}
	return c
}

// Cache exposes the fingerprint cache so callers can register it for cleanup.
// Nil when caching is disabled.
func (c *Client) Cache() *cache.LRUCache[string] {
	return c.written
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Inline JSON wins over the file path.
func newSheetsService(ctx context.Context, serviceAccountJSON, serviceAccountFile string) (*gsheet.Service, error) {
	serviceAccountJSON = strings.TrimSpace(serviceAccountJSON)
	serviceAccountFile = strings.TrimSpace(serviceAccountFile)

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials", applog.FieldComponent, applog.ComponentSheets)
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file",
			applog.FieldComponent, applog.ComponentSheets,
			"path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// WriteYearReport overwrites the year's tab starting at A1. A report that
// renders to the same rows as the last write within the cache TTL is skipped.
func (c *Client) WriteYearReport(ctx context.Context, report core.YearReport) error {
	if c.update == nil {
		return errors.New("sheets service not initialized")
	}

	sheet := yearPrefixedName(c.sheetBase, report.Series.Year)
	rows := reportRows(report)
	fingerprint := fmt.Sprint(rows)

	if c.written != nil {
		if prev, ok := c.written.Get(sheet); ok && prev == fingerprint {
			slog.DebugContext(ctx, "Report unchanged, skipping write",
				applog.FieldComponent, applog.ComponentSheets,
				applog.FieldSheetRange, sheet,
				applog.FieldYear, report.Series.Year)
			return nil
		}
	}

	rng := fmt.Sprintf("%s!A1:D%d", sheet, len(rows))
	if err := c.update(ctx, rng, rows); err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	if c.written != nil {
		c.written.Set(sheet, fingerprint)
	}

	slog.InfoContext(ctx, "Year report written",
		applog.FieldComponent, applog.ComponentSheets,
		applog.FieldSheetRange, rng,
		applog.FieldYear, report.Series.Year,
		"health", string(report.Health))
	return nil
}

// reportRows lays out the report as four columns: a header, one row per
// month, a totals row, a blank separator and the annual metrics.
func reportRows(r core.YearReport) [][]any {
	rows := make([][]any, 0, 24)
	rows = append(rows, []any{"Month", "Income", "Expense", "Net"})

	s := r.Series
	for i := 0; i < 12; i++ {
		m := core.NewMonth(s.Year, time.Month(i+1))
		rows = append(rows, []any{m.String(), money(s.Income[i]), money(s.Expense[i]), money(s.Income[i].Sub(s.Expense[i]))})
	}
	income, expense := s.TotalIncome(), s.TotalExpense()
	rows = append(rows, []any{"Total", money(income), money(expense), money(income.Sub(expense))})

	m := r.Metrics
	rows = append(rows,
		[]any{"", "", "", ""},
		[]any{"Months elapsed", strconv.Itoa(m.MonthsElapsed), "", ""},
		[]any{"Spent YTD", money(m.SpentYTD), "", ""},
		[]any{"Projected spend", money(m.ProjectedSpend), "", ""},
		[]any{"Credits YTD", money(m.CreditsYTD), "", ""},
		[]any{"Projected income", money(m.ProjectedIncome), "", ""},
		[]any{"Projected balance", money(m.ProjectedBalance), "", ""},
		[]any{"Percent committed", m.PercentCommitted.StringFixed(1), "", ""},
		[]any{"Health", string(r.Health), "", ""},
	)
	return rows
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
