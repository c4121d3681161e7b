package services

import (
	"time"

	"saldo/internal/core"
)

// Projection is the outcome of materializing recurring rules.
type Projection struct {
	// Transactions holds the input transactions followed by the new ones.
	Transactions []core.Transaction
	// Rules holds the rules with advanced watermarks, in input order.
	Rules []core.RecurringRule
	// Generated counts the new transactions; zero means nothing to persist.
	Generated int
}

// Projector turns recurring rules into dated transactions. It is pure: the
// only inputs are its arguments and the ID generator.
type Projector struct {
	newID func() core.ID
}

// ProjectorOption configures a Projector.
type ProjectorOption func(*Projector)

// WithIDGenerator replaces core.NewID, mostly for deterministic tests.
func WithIDGenerator(gen func() core.ID) ProjectorOption {
	return func(p *Projector) {
		p.newID = gen
	}
}

// NewProjector creates a projector.
func NewProjector(opts ...ProjectorOption) *Projector {
	p := &Projector{newID: core.NewID}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Project materializes every rule from its watermark (or from horizon when
// the rule was never generated) through December of the later of now's year
// and the horizon's year. Calling it again with its own output and the same
// horizon generates nothing.
func (p *Projector) Project(transactions []core.Transaction, rules []core.RecurringRule, horizon core.Month, now time.Time) Projection {
	cutoffYear := now.Year()
	if horizon.Year > cutoffYear {
		cutoffYear = horizon.Year
	}
	cutoff := core.December(cutoffYear)

	out := Projection{
		Transactions: make([]core.Transaction, len(transactions), len(transactions)+len(rules)*12),
		Rules:        make([]core.RecurringRule, len(rules)),
	}
	copy(out.Transactions, transactions)

	for i, rule := range rules {
		generated := p.projectRule(rule, horizon, cutoff)
		out.Rules[i] = rule.Advance(generated)
		out.Transactions = append(out.Transactions, generated...)
		out.Generated += len(generated)
	}
	return out
}

func (p *Projector) projectRule(rule core.RecurringRule, horizon, cutoff core.Month) []core.Transaction {
	start := resumeMonth(rule, horizon)

	var generated []core.Transaction
	for m := start; !m.After(cutoff); m = m.Next() {
		generated = append(generated, rule.Materialize(p.newID(), m))
	}
	return generated
}

// resumeMonth is the first month a rule still needs: the month after its
// watermark, or the horizon for a rule that was never generated.
func resumeMonth(rule core.RecurringRule, horizon core.Month) core.Month {
	if rule.LastGenerated == nil {
		return horizon
	}
	return core.MonthOf(*rule.LastGenerated).Next()
}
