package gcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectName(t *testing.T) {
	tests := []struct {
		prefix string
		key    string
		want   string
	}{
		{"saldo", "transactions", "saldo/transactions.json"},
		{"saldo/", "finance_config", "saldo/finance_config.json"},
		{"", "recurring_expenses", "recurring_expenses.json"},
		{"a/b", "transactions", "a/b/transactions.json"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			s := &Store{prefix: tt.prefix}
			assert.Equal(t, tt.want, s.objectName(tt.key))
		})
	}
}
