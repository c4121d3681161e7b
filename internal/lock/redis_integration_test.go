//go:build integration

package lock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis_Exclusive(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	l := NewRedis(rdb, "saldo-test:", 5*time.Second)
	release, err := l.Lock(context.Background(), LedgerKey)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, LedgerKey)
	assert.ErrorIs(t, err, ErrNotObtained)

	release()
	again, err := l.Lock(context.Background(), LedgerKey)
	require.NoError(t, err)
	again()
}
