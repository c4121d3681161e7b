// Package ledger defines the persistence boundary for transactions, recurring
// rules and the finance config, and a JSON codec over a plain key-value store.
package ledger

import (
	"context"
	"errors"

	"saldo/internal/core"
)

// Storage keys. A backend stores each collection whole under its key.
const (
	KeyTransactions = "transactions"
	KeyRules        = "recurring_expenses"
	KeyConfig       = "finance_config"
)

// ErrNotFound is returned by KV.Get and Store.LoadConfig when nothing was
// stored under the key yet.
var ErrNotFound = errors.New("ledger: not found")

// Ports for outbound adapters.
type (
	// TransactionStore loads and saves the whole transaction list. A missing
	// list loads as an empty slice.
	TransactionStore interface {
		LoadTransactions(ctx context.Context) ([]core.Transaction, error)
		SaveTransactions(ctx context.Context, txs []core.Transaction) error
	}

	// RuleStore loads and saves the whole recurring rule list.
	RuleStore interface {
		LoadRules(ctx context.Context) ([]core.RecurringRule, error)
		SaveRules(ctx context.Context, rules []core.RecurringRule) error
	}

	// ConfigStore loads and saves the config record. LoadConfig returns
	// ErrNotFound before the first save.
	ConfigStore interface {
		LoadConfig(ctx context.Context) (core.FinanceConfig, error)
		SaveConfig(ctx context.Context, cfg core.FinanceConfig) error
	}

	Store interface {
		TransactionStore
		RuleStore
		ConfigStore
	}

	// KV is the byte-level primitive every backend implements.
	KV interface {
		Get(ctx context.Context, key string) ([]byte, error)
		Put(ctx context.Context, key string, value []byte) error
	}
)
