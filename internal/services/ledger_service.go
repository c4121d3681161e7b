package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"saldo/internal/amqp"
	"saldo/internal/core"
	"saldo/internal/ledger"
	"saldo/internal/lock"
	applog "saldo/internal/log"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrRuleNotFound        = errors.New("recurring rule not found")
	ErrInvalidHorizon      = errors.New("horizon year out of range")
)

const (
	minHorizonYear = 1970
	maxHorizonYear = 9999
)

// ChangePublisher announces ledger changes to other processes.
type ChangePublisher interface {
	PublishLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error
}

// TransactionInput is a user-entered transaction. Amount is the raw text,
// always a positive magnitude; the sign follows Kind. A zero Date means now.
type TransactionInput struct {
	Description string
	Amount      string
	Kind        core.Kind
	Date        time.Time
	Category    core.Category
}

// RuleInput is a user-entered recurring rule.
type RuleInput struct {
	Description string
	Amount      string
	Kind        core.Kind
	Category    core.Category
	DayOfMonth  int
}

// Dashboard is everything a month view renders.
type Dashboard struct {
	Horizon core.Month
	Series  core.MonthlySeries
	Metrics core.AnnualMetrics
	Health  core.HealthStatus
	// Generated is how many recurring transactions this view materialized.
	Generated int
	// MonthTransactions are the horizon month's entries, newest first.
	MonthTransactions []core.Transaction
	Config            core.FinanceConfig
}

// LedgerService orchestrates the store, the projector and the aggregation
// engine. Every read-modify-write runs under the ledger lock.
type LedgerService struct {
	store     ledger.Store
	locker    lock.Locker
	publisher ChangePublisher
	projector *Projector
	now       func() time.Time
	defaults  core.FinanceConfig
}

// LedgerOption configures a LedgerService.
type LedgerOption func(*LedgerService)

// WithPublisher enables change events.
func WithPublisher(p ChangePublisher) LedgerOption {
	return func(s *LedgerService) {
		s.publisher = p
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) LedgerOption {
	return func(s *LedgerService) {
		s.now = now
	}
}

// WithProjector replaces the default projector.
func WithProjector(p *Projector) LedgerOption {
	return func(s *LedgerService) {
		s.projector = p
	}
}

// WithDefaultConfig sets the config created on first use.
func WithDefaultConfig(cfg core.FinanceConfig) LedgerOption {
	return func(s *LedgerService) {
		s.defaults = cfg
	}
}

func NewLedgerService(store ledger.Store, locker lock.Locker, opts ...LedgerOption) *LedgerService {
	s := &LedgerService{
		store:     store,
		locker:    locker,
		projector: NewProjector(),
		now:       time.Now,
		defaults:  core.DefaultFinanceConfig(decimal.Zero, decimal.Zero),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.locker == nil {
		s.locker = lock.NewLocal()
	}
	return s
}

type snapshot struct {
	transactions []core.Transaction
	rules        []core.RecurringRule
	config       core.FinanceConfig
}

// load reads all three collections concurrently and repairs legacy records.
func (s *LedgerService) load(ctx context.Context, now time.Time) (snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		txs, err := s.store.LoadTransactions(gctx)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		snap.transactions = core.SanitizeTransactions(txs, now)
		return nil
	})
	g.Go(func() error {
		rules, err := s.store.LoadRules(gctx)
		if err != nil {
			return fmt.Errorf("load rules: %w", err)
		}
		snap.rules = core.SanitizeRules(rules)
		return nil
	})
	g.Go(func() error {
		cfg, err := s.store.LoadConfig(gctx)
		if errors.Is(err, ledger.ErrNotFound) {
			snap.config = s.defaults
			return nil
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		snap.config = cfg
		return nil
	})

	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return snap, nil
}

func (s *LedgerService) withLock(ctx context.Context, fn func() error) error {
	release, err := s.locker.Lock(ctx, lock.LedgerKey)
	if err != nil {
		return fmt.Errorf("acquire ledger lock: %w", err)
	}
	defer release()
	return fn()
}

// View materializes due recurring transactions through December of the
// relevant year, persists them when any were generated, and summarizes the
// horizon's year.
func (s *LedgerService) View(ctx context.Context, horizon core.Month) (Dashboard, error) {
	if horizon.Year < minHorizonYear || horizon.Year > maxHorizonYear {
		return Dashboard{}, fmt.Errorf("%w: %d", ErrInvalidHorizon, horizon.Year)
	}
	if horizon.Month < time.January || horizon.Month > time.December {
		return Dashboard{}, fmt.Errorf("%w: month %d", ErrInvalidHorizon, horizon.Month)
	}

	now := s.now()
	var (
		dash      Dashboard
		generated []core.Transaction
	)
	err := s.withLock(ctx, func() error {
		snap, err := s.load(ctx, now)
		if err != nil {
			return err
		}

		proj := s.projector.Project(snap.transactions, snap.rules, horizon, now)
		generated = proj.Transactions[len(snap.transactions):]
		if proj.Generated > 0 {
			// Transactions are written before the watermark that covers them.
			if err := s.store.SaveTransactions(ctx, proj.Transactions); err != nil {
				return fmt.Errorf("save transactions: %w", err)
			}
			if err := s.store.SaveRules(ctx, proj.Rules); err != nil {
				return fmt.Errorf("save rules: %w", err)
			}
			slog.InfoContext(ctx, "Materialized recurring transactions",
				applog.FieldComponent, applog.ComponentProjector,
				applog.FieldHorizon, horizon.String(),
				applog.FieldGenerated, proj.Generated)
		}

		report := YearReport(proj.Transactions, snap.config.BaseSalary, horizon.Year, now)
		dash = Dashboard{
			Horizon:           horizon,
			Series:            report.Series,
			Metrics:           report.Metrics,
			Health:            report.Health,
			Generated:         proj.Generated,
			MonthTransactions: monthTransactions(proj.Transactions, horizon),
			Config:            snap.config,
		}
		return nil
	})
	if err != nil {
		return Dashboard{}, err
	}

	// A resumed watermark can generate into more than one year.
	for _, span := range yearSpans(generated) {
		s.publish(ctx, amqp.ReasonProjected, span.first, span.count)
	}
	return dash, nil
}

func monthTransactions(txs []core.Transaction, m core.Month) []core.Transaction {
	out := make([]core.Transaction, 0)
	for _, t := range txs {
		if m.Contains(t.Date) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

func buildTransaction(in TransactionInput, now time.Time) (core.Transaction, error) {
	kind, err := core.ParseKind(string(in.Kind))
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date := in.Date
	if date.IsZero() {
		date = now
	}
	category := in.Category
	if !category.Valid() {
		category = core.ParseCategory(string(category))
	}
	t := core.Transaction{
		Description: strings.TrimSpace(in.Description),
		Amount:      core.SignedAmount(kind, amount),
		Kind:        kind,
		Date:        date,
		Category:    category,
	}
	return t, nil
}

// AddTransaction records a one-off transaction.
func (s *LedgerService) AddTransaction(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	now := s.now()
	t, err := buildTransaction(in, now)
	if err != nil {
		return core.Transaction{}, err
	}
	t.ID = core.NewID()
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	err = s.withLock(ctx, func() error {
		txs, err := s.store.LoadTransactions(ctx)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		txs = append(core.SanitizeTransactions(txs, now), t)
		return s.store.SaveTransactions(ctx, txs)
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction added",
		applog.FieldComponent, applog.ComponentLedger,
		applog.FieldTxID, t.ID.String(),
		applog.FieldKind, string(t.Kind),
		applog.FieldAmount, t.Amount.String())
	s.publish(ctx, amqp.ReasonEdited, core.MonthOf(t.Date), 0)
	return t, nil
}

// UpdateTransaction replaces the editable fields of an existing transaction.
// The recurring flag and rule reference are kept.
func (s *LedgerService) UpdateTransaction(ctx context.Context, id core.ID, in TransactionInput) (core.Transaction, error) {
	now := s.now()
	patch, err := buildTransaction(in, now)
	if err != nil {
		return core.Transaction{}, err
	}

	var (
		updated core.Transaction
		before  core.Month
	)
	err = s.withLock(ctx, func() error {
		txs, err := s.store.LoadTransactions(ctx)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		txs = core.SanitizeTransactions(txs, now)
		idx := indexOfTransaction(txs, id)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
		}

		before = core.MonthOf(txs[idx].Date)
		patch.ID = id
		patch.IsRecurring = txs[idx].IsRecurring
		patch.RecurringRuleID = txs[idx].RecurringRuleID
		if err := patch.Validate(); err != nil {
			return err
		}
		txs[idx] = patch
		updated = patch
		return s.store.SaveTransactions(ctx, txs)
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction updated",
		applog.FieldComponent, applog.ComponentLedger,
		applog.FieldTxID, id.String())
	s.publish(ctx, amqp.ReasonEdited, core.MonthOf(updated.Date), 0)
	if before.Year != updated.Date.Year() {
		s.publish(ctx, amqp.ReasonEdited, before, 0)
	}
	return updated, nil
}

// DeleteTransaction removes one transaction.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id core.ID) error {
	now := s.now()
	var removed core.Transaction
	err := s.withLock(ctx, func() error {
		txs, err := s.store.LoadTransactions(ctx)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		txs = core.SanitizeTransactions(txs, now)
		idx := indexOfTransaction(txs, id)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrTransactionNotFound, id)
		}
		removed = txs[idx]
		txs = append(txs[:idx], txs[idx+1:]...)
		return s.store.SaveTransactions(ctx, txs)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction deleted",
		applog.FieldComponent, applog.ComponentLedger,
		applog.FieldTxID, id.String())
	s.publish(ctx, amqp.ReasonEdited, core.MonthOf(removed.Date), 0)
	return nil
}

// ListTransactions returns every stored transaction, sanitized, in stored
// order.
func (s *LedgerService) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.store.LoadTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return core.SanitizeTransactions(txs, s.now()), nil
}

// ListRules returns every stored recurring rule, sanitized.
func (s *LedgerService) ListRules(ctx context.Context) ([]core.RecurringRule, error) {
	rules, err := s.store.LoadRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	return core.SanitizeRules(rules), nil
}

// AddRule stores a new recurring rule. It has no watermark, so the next view
// backfills it from that view's horizon.
func (s *LedgerService) AddRule(ctx context.Context, in RuleInput) (core.RecurringRule, error) {
	kind, err := core.ParseKind(string(in.Kind))
	if err != nil {
		return core.RecurringRule{}, err
	}
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.RecurringRule{}, err
	}
	category := in.Category
	if !category.Valid() {
		category = core.ParseCategory(string(category))
	}
	rule := core.RecurringRule{
		ID:          core.NewID(),
		Description: strings.TrimSpace(in.Description),
		Category:    category,
		Kind:        kind,
		Amount:      amount,
		DayOfMonth:  in.DayOfMonth,
	}
	if err := rule.Validate(); err != nil {
		return core.RecurringRule{}, err
	}

	err = s.withLock(ctx, func() error {
		rules, err := s.store.LoadRules(ctx)
		if err != nil {
			return fmt.Errorf("load rules: %w", err)
		}
		rules = append(core.SanitizeRules(rules), rule)
		return s.store.SaveRules(ctx, rules)
	})
	if err != nil {
		return core.RecurringRule{}, err
	}

	slog.InfoContext(ctx, "Recurring rule added",
		applog.FieldComponent, applog.ComponentLedger,
		applog.FieldRuleID, rule.ID.String(),
		applog.FieldDescription, rule.Description)
	return rule, nil
}

// DeleteRule removes a rule and every transaction it generated. It returns
// the number of transactions purged.
func (s *LedgerService) DeleteRule(ctx context.Context, id core.ID) (int, error) {
	now := s.now()
	var purged []core.Transaction
	err := s.withLock(ctx, func() error {
		rules, err := s.store.LoadRules(ctx)
		if err != nil {
			return fmt.Errorf("load rules: %w", err)
		}
		kept := make([]core.RecurringRule, 0, len(rules))
		found := false
		for _, r := range rules {
			if r.ID == id {
				found = true
				continue
			}
			kept = append(kept, r)
		}
		if !found {
			return fmt.Errorf("%w: %s", ErrRuleNotFound, id)
		}

		txs, err := s.store.LoadTransactions(ctx)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		txs = core.SanitizeTransactions(txs, now)
		remaining := make([]core.Transaction, 0, len(txs))
		for _, t := range txs {
			if t.RecurringRuleID == id {
				purged = append(purged, t)
				continue
			}
			remaining = append(remaining, t)
		}

		if err := s.store.SaveRules(ctx, core.SanitizeRules(kept)); err != nil {
			return fmt.Errorf("save rules: %w", err)
		}
		if err := s.store.SaveTransactions(ctx, remaining); err != nil {
			return fmt.Errorf("save transactions: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Recurring rule deleted",
		applog.FieldComponent, applog.ComponentLedger,
		applog.FieldRuleID, id.String(),
		applog.FieldPurged, len(purged))
	for _, span := range yearSpans(purged) {
		s.publish(ctx, amqp.ReasonEdited, span.first, 0)
	}
	return len(purged), nil
}

// Config returns the stored config, saving the defaults on first use.
func (s *LedgerService) Config(ctx context.Context) (core.FinanceConfig, error) {
	var cfg core.FinanceConfig
	err := s.withLock(ctx, func() error {
		stored, err := s.store.LoadConfig(ctx)
		if err == nil {
			cfg = stored
			return nil
		}
		if !errors.Is(err, ledger.ErrNotFound) {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = s.defaults
		if err := s.store.SaveConfig(ctx, cfg); err != nil {
			return fmt.Errorf("save default config: %w", err)
		}
		slog.InfoContext(ctx, "Created default finance config",
			applog.FieldComponent, applog.ComponentLedger)
		return nil
	})
	return cfg, err
}

// UpdateConfig replaces the config record. The base salary feeds every
// year's metrics, so a change event goes out for each year in the ledger
// and for the current one.
func (s *LedgerService) UpdateConfig(ctx context.Context, cfg core.FinanceConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	now := s.now()
	var txs []core.Transaction
	err := s.withLock(ctx, func() error {
		if err := s.store.SaveConfig(ctx, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		loaded, err := s.store.LoadTransactions(ctx)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		txs = core.SanitizeTransactions(loaded, now)
		return nil
	})
	if err != nil {
		return err
	}

	current := core.MonthOf(now)
	s.publish(ctx, amqp.ReasonEdited, current, 0)
	for _, span := range yearSpans(txs) {
		if span.first.Year != current.Year {
			s.publish(ctx, amqp.ReasonEdited, span.first, 0)
		}
	}
	return nil
}

// yearSpan summarizes the transactions of one year: its earliest month and
// how many there are.
type yearSpan struct {
	first core.Month
	count int
}

// yearSpans groups txs by year, ascending. Undated transactions are skipped.
func yearSpans(txs []core.Transaction) []yearSpan {
	byYear := map[int]*yearSpan{}
	for _, t := range txs {
		if t.Date.IsZero() {
			continue
		}
		m := core.MonthOf(t.Date)
		span, ok := byYear[m.Year]
		if !ok {
			byYear[m.Year] = &yearSpan{first: m, count: 1}
			continue
		}
		span.count++
		if m.Before(span.first) {
			span.first = m
		}
	}
	out := make([]yearSpan, 0, len(byYear))
	for _, span := range byYear {
		out = append(out, *span)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].first.Year < out[j].first.Year })
	return out
}

func (s *LedgerService) publish(ctx context.Context, reason string, m core.Month, generated int) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewLedgerChangedMessage(reason, m.Year, m.Month, generated)
	if err := s.publisher.PublishLedgerChanged(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger change",
			applog.FieldComponent, applog.ComponentAMQP,
			applog.FieldReason, reason,
			applog.FieldError, err)
	}
}

func indexOfTransaction(txs []core.Transaction, id core.ID) int {
	for i, t := range txs {
		if t.ID == id {
			return i
		}
	}
	return -1
}
