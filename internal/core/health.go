package core

import "github.com/shopspring/decimal"

// HealthStatus is the presentation-facing verdict on annual metrics.
type HealthStatus string

const (
	Healthy  HealthStatus = "healthy"
	Warning  HealthStatus = "warning"
	Critical HealthStatus = "critical"
)

// WarningPercent is the committed share of income above which a year is
// flagged as a warning.
var WarningPercent = decimal.NewFromInt(80)

// Classify applies the health policy: a negative projected balance is
// critical, more than WarningPercent committed is a warning.
func Classify(m AnnualMetrics) HealthStatus {
	switch {
	case m.ProjectedBalance.IsNegative():
		return Critical
	case m.PercentCommitted.GreaterThan(WarningPercent):
		return Warning
	default:
		return Healthy
	}
}
