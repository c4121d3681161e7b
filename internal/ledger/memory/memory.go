// Package memory is an in-process ledger backend, optionally seeded from
// JSON files on disk.
package memory

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"saldo/internal/ledger"
)

type Store struct {
	mu   sync.Mutex
	data map[string][]byte
}

func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// NewFromFiles seeds the store with <key>.json for every ledger key found in
// base. Missing or unreadable files are ignored.
func NewFromFiles(base string) *Store {
	s := New()
	for _, key := range []string{ledger.KeyTransactions, ledger.KeyRules, ledger.KeyConfig} {
		raw, err := os.ReadFile(filepath.Join(base, key+".json"))
		if err != nil || len(raw) == 0 {
			continue
		}
		s.data[key] = raw
	}
	return s
}

// Get returns a copy of the stored bytes.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *Store) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}
