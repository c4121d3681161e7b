package core

import "time"

// SanitizeTransactions repairs records written before newer fields existed.
// A missing date becomes now, a missing or unknown category becomes Other and
// an amount whose sign disagrees with its kind is re-signed from the kind.
// The input slice is not modified.
func SanitizeTransactions(txs []Transaction, now time.Time) []Transaction {
	out := make([]Transaction, len(txs))
	for i, t := range txs {
		if t.Date.IsZero() {
			t.Date = now
		}
		if !t.Category.Valid() {
			t.Category = ParseCategory(string(t.Category))
		}
		if !t.Kind.Valid() {
			// Legacy entries only ever omitted the kind on positive amounts.
			if t.Amount.IsNegative() {
				t.Kind = Debit
			} else {
				t.Kind = Credit
			}
		}
		t.Amount = SignedAmount(t.Kind, t.Amount)
		if t.RecurringRuleID != "" {
			t.IsRecurring = true
		}
		out[i] = t
	}
	return out
}

// SanitizeRules defaults a missing kind to debit, a missing category to
// Other and stores the amount as a magnitude. The input slice is not
// modified.
func SanitizeRules(rules []RecurringRule) []RecurringRule {
	out := make([]RecurringRule, len(rules))
	for i, r := range rules {
		if !r.Kind.Valid() {
			r.Kind = Debit
		}
		if !r.Category.Valid() {
			r.Category = ParseCategory(string(r.Category))
		}
		r.Amount = r.Amount.Abs()
		if r.LastGenerated != nil {
			last := *r.LastGenerated
			r.LastGenerated = &last
		}
		out[i] = r
	}
	return out
}
