package services

import (
	"time"

	"github.com/shopspring/decimal"

	"saldo/internal/core"
)

var (
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// MonthlySeries folds the transactions dated in year into monthly income and
// expense buckets. Credits add their amount, debits add its magnitude.
// Transactions without a date are skipped.
func MonthlySeries(transactions []core.Transaction, year int) core.MonthlySeries {
	series := core.NewMonthlySeries(year)
	for _, t := range transactions {
		if t.Date.IsZero() || t.Date.Year() != year {
			continue
		}
		idx := int(t.Date.Month()) - 1
		switch t.Kind {
		case core.Credit:
			series.Income[idx] = series.Income[idx].Add(t.Amount)
		case core.Debit:
			series.Expense[idx] = series.Expense[idx].Add(t.Amount.Abs())
		}
	}
	return series
}

// MonthsElapsed is the run-rate denominator for year as seen at now: the
// current month number within the current year, 12 for any other year.
func MonthsElapsed(year int, now time.Time) int {
	if year == now.Year() {
		return int(now.Month())
	}
	return 12
}

// AnnualMetrics projects a full year from the year's actuals. Spending is
// extrapolated at its monthly run-rate; income blends recorded credits with
// the configured base salary once any credit exists.
func AnnualMetrics(transactions []core.Transaction, baseSalary decimal.Decimal, year int, now time.Time) core.AnnualMetrics {
	elapsed := MonthsElapsed(year, now)
	months := decimal.NewFromInt(int64(elapsed))

	spent, credits := decimal.Zero, decimal.Zero
	for _, t := range transactions {
		if t.Date.IsZero() || t.Date.Year() != year {
			continue
		}
		switch t.Kind {
		case core.Debit:
			spent = spent.Add(t.Amount.Abs())
		case core.Credit:
			credits = credits.Add(t.Amount)
		}
	}

	projectedSpend := spent.Div(months).Mul(twelve)

	projectedIncome := baseSalary.Mul(twelve)
	if credits.IsPositive() {
		projectedIncome = credits.Add(baseSalary.Mul(months)).Div(months).Mul(twelve)
	}

	percent := decimal.Zero
	if projectedIncome.IsPositive() {
		percent = decimal.Min(projectedSpend.Div(projectedIncome).Mul(hundred), hundred)
	}

	return core.AnnualMetrics{
		Year:             year,
		MonthsElapsed:    elapsed,
		SpentYTD:         spent,
		ProjectedSpend:   projectedSpend,
		CreditsYTD:       credits,
		ProjectedIncome:  projectedIncome,
		ProjectedBalance: projectedIncome.Sub(projectedSpend),
		PercentCommitted: percent,
	}
}

// YearReport computes the series, metrics and health verdict for year.
func YearReport(transactions []core.Transaction, baseSalary decimal.Decimal, year int, now time.Time) core.YearReport {
	metrics := AnnualMetrics(transactions, baseSalary, year, now)
	return core.YearReport{
		Series:  MonthlySeries(transactions, year),
		Metrics: metrics,
		Health:  core.Classify(metrics),
	}
}
