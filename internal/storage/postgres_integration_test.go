//go:build integration

package storage

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/ledger"
)

func TestPostgres_RoundTrip(t *testing.T) {
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}
	ctx := context.Background()
	repo, err := NewPostgresRepository(ctx, dsn)
	require.NoError(t, err)
	defer repo.Close()

	key := "it_" + ledger.KeyConfig
	require.NoError(t, repo.Put(ctx, key, []byte(`{"salary":"10"}`)))
	require.NoError(t, repo.Put(ctx, key, []byte(`{"salary":"20"}`)))

	got, err := repo.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"salary":"20"}`, string(got))

	_, err = repo.Get(ctx, "it_missing")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}
