//go:build integration

package gcs

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saldo/internal/ledger"
)

func TestStore_RoundTrip(t *testing.T) {
	bucket := os.Getenv("GCS_BUCKET")
	if bucket == "" {
		t.Skip("GCS_BUCKET not set")
	}
	ctx := context.Background()
	s, err := New(ctx, bucket, "saldo-integration")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(ctx, ledger.KeyRules, []byte(`[]`)))
	got, err := s.Get(ctx, ledger.KeyRules)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	_, err = s.Get(ctx, "missing-key")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}
