package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Credit Kind = "credit"
	Debit  Kind = "debit"
)

const (
	Food       Category = "Food"
	Housing    Category = "Housing"
	Transport  Category = "Transport"
	Leisure    Category = "Leisure"
	Health     Category = "Health"
	Education  Category = "Education"
	Salary     Category = "Salary"
	Other      Category = "Other"
	FixedBills Category = "Fixed Bills"
)

// MaxDescriptionLength bounds user-entered descriptions.
const MaxDescriptionLength = 200

type (
	// Kind is the direction of a ledger entry.
	Kind string

	// Category is one of the fixed categories; Other is the fallback.
	Category string

	// Transaction is a dated ledger entry. Amount is signed: negative for
	// debits, non-negative for credits.
	Transaction struct {
		ID              ID              `json:"id"`
		Description     string          `json:"description"`
		Amount          decimal.Decimal `json:"amount"`
		Kind            Kind            `json:"type"`
		Date            time.Time       `json:"date"`
		Category        Category        `json:"category"`
		IsRecurring     bool            `json:"isRecurring,omitempty"`
		RecurringRuleID ID              `json:"recurringId,omitempty"`
	}

	// RecurringRule is a monthly template plus its generation watermark.
	// Amount is stored as a magnitude; the sign is applied when a
	// transaction is materialized.
	RecurringRule struct {
		ID            ID              `json:"id"`
		Description   string          `json:"description"`
		Category      Category        `json:"category"`
		Kind          Kind            `json:"type,omitempty"`
		Amount        decimal.Decimal `json:"amount"`
		DayOfMonth    int             `json:"day"`
		LastGenerated *time.Time      `json:"lastGenerated,omitempty"`
	}

	// FinanceConfig is the singleton user configuration.
	FinanceConfig struct {
		BaseSalary  decimal.Decimal `json:"salary"`
		SavingsGoal decimal.Decimal `json:"goal"`
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidKind      = errors.New("invalid kind")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyDescription = errors.New("empty description")
	ErrSignMismatch     = errors.New("amount sign does not match kind")
	ErrRecurringRef     = errors.New("recurring flag and rule reference disagree")
)

// Categories lists the fixed category set in display order.
var Categories = []Category{Food, Housing, Transport, Leisure, Health, Education, Salary, Other, FixedBills}

// Valid reports whether k is credit or debit.
func (k Kind) Valid() bool {
	return k == Credit || k == Debit
}

// ParseKind accepts "credit"/"debit" in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

// Valid reports whether c belongs to the fixed set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory matches s case-insensitively against the fixed set and
// falls back to Other.
func ParseCategory(s string) Category {
	s = strings.TrimSpace(s)
	for _, known := range Categories {
		if strings.EqualFold(s, string(known)) {
			return known
		}
	}
	return Other
}

// SignedAmount applies the sign convention to a magnitude.
func SignedAmount(kind Kind, magnitude decimal.Decimal) decimal.Decimal {
	if kind == Debit {
		return magnitude.Abs().Neg()
	}
	return magnitude.Abs()
}

func validateDescription(desc string) error {
	if len(strings.TrimSpace(desc)) == 0 {
		return ErrEmptyDescription
	}
	if len(desc) > MaxDescriptionLength {
		return fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := validateDescription(t.Description); err != nil {
		return err
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if t.Amount.IsNegative() != (t.Kind == Debit) && !t.Amount.IsZero() {
		return ErrSignMismatch
	}
	if t.IsRecurring != (t.RecurringRuleID != "") {
		return ErrRecurringRef
	}
	return nil
}

func (r RecurringRule) Validate() error {
	if err := validateDescription(r.Description); err != nil {
		return err
	}
	if !r.Kind.Valid() {
		return ErrInvalidKind
	}
	if !r.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
		return ErrInvalidDay
	}
	return nil
}

// Materialize builds the rule's transaction for month m. The day is clamped
// to the last day of m.
func (r RecurringRule) Materialize(id ID, m Month) Transaction {
	return Transaction{
		ID:              id,
		Description:     r.Description,
		Amount:          SignedAmount(r.Kind, r.Amount),
		Kind:            r.Kind,
		Date:            m.Date(r.DayOfMonth),
		Category:        r.Category,
		IsRecurring:     true,
		RecurringRuleID: r.ID,
	}
}

// Advance returns a copy of r whose watermark points at the last of the
// generated transactions. With nothing generated, r is returned unchanged.
func (r RecurringRule) Advance(generated []Transaction) RecurringRule {
	if len(generated) == 0 {
		return r
	}
	last := generated[len(generated)-1].Date
	r.LastGenerated = &last
	return r
}

// DefaultFinanceConfig is the record created on first use.
func DefaultFinanceConfig(baseSalary, savingsGoal decimal.Decimal) FinanceConfig {
	return FinanceConfig{BaseSalary: baseSalary, SavingsGoal: savingsGoal}
}

func (c FinanceConfig) Validate() error {
	if c.BaseSalary.IsNegative() || c.SavingsGoal.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}
