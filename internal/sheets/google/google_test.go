package google

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/core"
)

type recordedUpdate struct {
	rng  string
	rows [][]any
}

func recorder(calls *[]recordedUpdate, err error) updateFunc {
	return func(_ context.Context, rng string, rows [][]any) error {
		*calls = append(*calls, recordedUpdate{rng: rng, rows: rows})
		return err
	}
}

func sampleReport() core.YearReport {
	series := core.NewMonthlySeries(2024)
	series.Income[0] = decimal.NewFromInt(2000)
	series.Expense[0] = decimal.NewFromInt(500)
	series.Expense[2] = decimal.RequireFromString("120.5")
	return core.YearReport{
		Series: series,
		Metrics: core.AnnualMetrics{
			Year:             2024,
			MonthsElapsed:    12,
			SpentYTD:         decimal.RequireFromString("620.5"),
			ProjectedSpend:   decimal.RequireFromString("620.5"),
			CreditsYTD:       decimal.NewFromInt(2000),
			ProjectedIncome:  decimal.NewFromInt(2000),
			ProjectedBalance: decimal.RequireFromString("1379.5"),
			PercentCommitted: decimal.RequireFromString("31.025"),
		},
		Health: core.Healthy,
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		year int
		want string
	}{
		{"Report", 2024, "2024 Report"},
		{"  Report  ", 2025, "2025 Report"},
		{"2023 Report", 2024, "2023 Report"},
		{"", 2024, ""},
		{"1234 Report", 2024, "2024 1234 Report"},
		{"2024Report", 2024, "2024 2024Report"},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			assert.Equal(t, tt.want, yearPrefixedName(tt.base, tt.year))
		})
	}
}

func TestReportRows(t *testing.T) {
	rows := reportRows(sampleReport())

	require.Len(t, rows, 23)
	assert.Equal(t, []any{"Month", "Income", "Expense", "Net"}, rows[0])
	assert.Equal(t, []any{"2024-01", "2000.00", "500.00", "1500.00"}, rows[1])
	assert.Equal(t, []any{"2024-02", "0.00", "0.00", "0.00"}, rows[2])
	assert.Equal(t, []any{"2024-03", "0.00", "120.50", "-120.50"}, rows[3])
	assert.Equal(t, []any{"2024-12", "0.00", "0.00", "0.00"}, rows[12])
	assert.Equal(t, []any{"Total", "2000.00", "620.50", "1379.50"}, rows[13])
	assert.Equal(t, []any{"Months elapsed", "12", "", ""}, rows[15])
	assert.Equal(t, []any{"Percent committed", "31.0", "", ""}, rows[21])
	assert.Equal(t, []any{"Health", "healthy", "", ""}, rows[22])

	for i, row := range rows {
		assert.Len(t, row, 4, "row %d", i)
	}
}

func TestWriteYearReport(t *testing.T) {
	ctx := context.Background()

	t.Run("writes to the year tab", func(t *testing.T) {
		var calls []recordedUpdate
		c := newClient(recorder(&calls, nil), Options{SpreadsheetID: "id", SheetName: "Saldo"})

		require.NoError(t, c.WriteYearReport(ctx, sampleReport()))
		require.Len(t, calls, 1)
		assert.Equal(t, "2024 Saldo!A1:D23", calls[0].rng)
		assert.Len(t, calls[0].rows, 23)
	})

	t.Run("default sheet name", func(t *testing.T) {
		var calls []recordedUpdate
		c := newClient(recorder(&calls, nil), Options{SpreadsheetID: "id"})

		require.NoError(t, c.WriteYearReport(ctx, sampleReport()))
		require.Len(t, calls, 1)
		assert.Equal(t, "2024 Report!A1:D23", calls[0].rng)
	})

	t.Run("unchanged report is skipped while cached", func(t *testing.T) {
		var calls []recordedUpdate
		c := newClient(recorder(&calls, nil), Options{SpreadsheetID: "id", CacheTTL: time.Minute})

		report := sampleReport()
		require.NoError(t, c.WriteYearReport(ctx, report))
		require.NoError(t, c.WriteYearReport(ctx, report))
		assert.Len(t, calls, 1)

		report.Series.Expense[5] = decimal.NewFromInt(10)
		require.NoError(t, c.WriteYearReport(ctx, report))
		assert.Len(t, calls, 2)
		assert.Equal(t, 1, c.Cache().Size())
	})

	t.Run("without cache every write goes out", func(t *testing.T) {
		var calls []recordedUpdate
		c := newClient(recorder(&calls, nil), Options{SpreadsheetID: "id"})

		require.NoError(t, c.WriteYearReport(ctx, sampleReport()))
		require.NoError(t, c.WriteYearReport(ctx, sampleReport()))
		assert.Len(t, calls, 2)
		assert.Nil(t, c.Cache())
	})

	t.Run("failed write is not cached", func(t *testing.T) {
		var calls []recordedUpdate
		boom := errors.New("quota exceeded")
		c := newClient(recorder(&calls, boom), Options{SpreadsheetID: "id", CacheTTL: time.Minute})

		err := c.WriteYearReport(ctx, sampleReport())
		require.ErrorIs(t, err, boom)
		err = c.WriteYearReport(ctx, sampleReport())
		require.ErrorIs(t, err, boom)
		assert.Len(t, calls, 2)
	})

	t.Run("uninitialized client", func(t *testing.T) {
		c := &Client{}
		assert.Error(t, c.WriteYearReport(ctx, sampleReport()))
	})
}

func TestNew_RequiresSpreadsheetAndCredentials(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, Options{})
	assert.ErrorContains(t, err, "missing spreadsheet id")

	_, err = New(ctx, Options{SpreadsheetID: "id"})
	assert.ErrorContains(t, err, "missing service account credentials")

	_, err = New(ctx, Options{SpreadsheetID: "id", CredentialsFile: t.TempDir() + "/missing.json"})
	assert.ErrorContains(t, err, "read service account file")
}
