package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"saldo/internal/core"
)

// KVStore implements Store by encoding each collection as JSON under its key.
type KVStore struct {
	kv KV
}

// NewKVStore wraps a byte-level backend.
func NewKVStore(kv KV) *KVStore {
	return &KVStore{kv: kv}
}

func (s *KVStore) LoadTransactions(ctx context.Context) ([]core.Transaction, error) {
	var txs []core.Transaction
	if err := s.load(ctx, KeyTransactions, &txs); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs, nil
}

func (s *KVStore) SaveTransactions(ctx context.Context, txs []core.Transaction) error {
	if txs == nil {
		txs = []core.Transaction{}
	}
	return s.save(ctx, KeyTransactions, txs)
}

func (s *KVStore) LoadRules(ctx context.Context) ([]core.RecurringRule, error) {
	var rules []core.RecurringRule
	if err := s.load(ctx, KeyRules, &rules); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if rules == nil {
		rules = []core.RecurringRule{}
	}
	return rules, nil
}

func (s *KVStore) SaveRules(ctx context.Context, rules []core.RecurringRule) error {
	if rules == nil {
		rules = []core.RecurringRule{}
	}
	return s.save(ctx, KeyRules, rules)
}

func (s *KVStore) LoadConfig(ctx context.Context) (core.FinanceConfig, error) {
	var cfg core.FinanceConfig
	if err := s.load(ctx, KeyConfig, &cfg); err != nil {
		return core.FinanceConfig{}, err
	}
	return cfg, nil
}

func (s *KVStore) SaveConfig(ctx context.Context, cfg core.FinanceConfig) error {
	return s.save(ctx, KeyConfig, cfg)
}

func (s *KVStore) load(ctx context.Context, key string, dst any) error {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("load %s: %w", key, err)
	}
	if len(raw) == 0 {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Put(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
