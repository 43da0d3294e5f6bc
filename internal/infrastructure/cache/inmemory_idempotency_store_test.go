package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_MarkProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("marks new key as processed", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "sale-req-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("returns false for already processed key", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "sale-req-2", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "sale-req-2", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew, "already processed key should return false")
	})

	t.Run("allows reprocessing after expiration", func(t *testing.T) {
		isNew, err := store.MarkProcessed(ctx, "sale-req-3", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, isNew)

		time.Sleep(20 * time.Millisecond)

		isNew, err = store.MarkProcessed(ctx, "sale-req-3", 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, isNew, "expired key should be reprocessable")
	})
}

func TestInMemoryIdempotencyStore_IsProcessed(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("reports unknown key as not processed", func(t *testing.T) {
		processed, err := store.IsProcessed(ctx, "never-seen")
		require.NoError(t, err)
		assert.False(t, processed)
	})

	t.Run("reports marked key as processed", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "sale-req-4", time.Hour)
		require.NoError(t, err)

		processed, err := store.IsProcessed(ctx, "sale-req-4")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("reports expired key as not processed", func(t *testing.T) {
		_, err := store.MarkProcessed(ctx, "sale-req-5", 5*time.Millisecond)
		require.NoError(t, err)

		time.Sleep(15 * time.Millisecond)

		processed, err := store.IsProcessed(ctx, "sale-req-5")
		require.NoError(t, err)
		assert.False(t, processed)
	})
}
