package core

import "github.com/shopspring/decimal"

// MonthlySeries holds per-month income and expense totals for one year.
// Index 0 is January. Expense values are magnitudes.
type MonthlySeries struct {
	Year    int
	Income  [12]decimal.Decimal
	Expense [12]decimal.Decimal
}

// NewMonthlySeries returns a zeroed series.
func NewMonthlySeries(year int) MonthlySeries {
	s := MonthlySeries{Year: year}
	for i := range s.Income {
		s.Income[i] = decimal.Zero
		s.Expense[i] = decimal.Zero
	}
	return s
}

// TotalIncome sums the twelve income buckets.
func (s MonthlySeries) TotalIncome() decimal.Decimal {
	return decimal.Sum(decimal.Zero, s.Income[:]...)
}

// TotalExpense sums the twelve expense buckets.
func (s MonthlySeries) TotalExpense() decimal.Decimal {
	return decimal.Sum(decimal.Zero, s.Expense[:]...)
}

// AnnualMetrics is the financial-health projection for a year.
type AnnualMetrics struct {
	Year             int
	MonthsElapsed    int
	SpentYTD         decimal.Decimal
	ProjectedSpend   decimal.Decimal
	CreditsYTD       decimal.Decimal
	ProjectedIncome  decimal.Decimal
	ProjectedBalance decimal.Decimal
	PercentCommitted decimal.Decimal
}

// YearReport bundles what the report sink renders for one year.
type YearReport struct {
	Series  MonthlySeries
	Metrics AnnualMetrics
	Health  HealthStatus
}
