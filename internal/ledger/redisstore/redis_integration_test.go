//go:build integration

package redisstore

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/ledger"
)

func TestStore_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := Connect(ctx, addr, os.Getenv("REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	t.Cleanup(func() {
		rdb.Del(ctx, "saldo-test:"+ledger.KeyConfig)
		_ = rdb.Close()
	})

	s := New(rdb, "saldo-test:")
	_, err = s.Get(ctx, ledger.KeyConfig)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	require.NoError(t, s.Put(ctx, ledger.KeyConfig, []byte(`{"salary":"5"}`)))
	got, err := s.Get(ctx, ledger.KeyConfig)
	require.NoError(t, err)
	assert.JSONEq(t, `{"salary":"5"}`, string(got))
}
