package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennywise-app/gateguard/pkg/guards/ratelimit"
)

func TestMemoryStore_IncrCountsWithinWindow(t *testing.T) {
	store := ratelimit.NewMemoryStore(nil)

	for i := 1; i <= 5; i++ {
		rec, err := store.Incr(context.Background(), "key", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, rec.Count)
	}

	rec, ok, err := store.Status(context.Background(), "key")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, rec.Count)
}

func TestMemoryStore_WindowRollsAfterExpiry(t *testing.T) {
	now := time.Now()
	store := ratelimit.NewMemoryStore(&ratelimit.MemoryStoreOpts{
		TimeProvider: func() time.Time { return now },
	})

	first, err := store.Incr(context.Background(), "key", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Count)

	now = now.Add(2 * time.Minute)

	rolled, err := store.Incr(context.Background(), "key", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, rolled.Count)
	assert.True(t, rolled.ResetTime.After(first.ResetTime))
}

func TestMemoryStore_NoOveradmissionUnderConcurrency(t *testing.T) {
	store := ratelimit.NewMemoryStore(nil)
	const limit = 50
	const extra = 25

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < limit+extra; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := store.Incr(context.Background(), "hot", time.Minute)
			if err == nil && rec.Count <= limit {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, limit, admitted)
}

func TestMemoryStore_SweepRemovesOnlyStaleRecords(t *testing.T) {
	now := time.Now()
	store := ratelimit.NewMemoryStore(&ratelimit.MemoryStoreOpts{
		TimeProvider: func() time.Time { return now },
	})

	_, err := store.Incr(context.Background(), "stale", time.Minute)
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	_, err = store.Incr(context.Background(), "fresh", time.Minute)
	require.NoError(t, err)

	now = now.Add(45 * time.Second)

	removed, err := store.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())

	_, ok, err := store.Status(context.Background(), "stale")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = store.Status(context.Background(), "fresh")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStore_ResetAndClearAll(t *testing.T) {
	store := ratelimit.NewMemoryStore(nil)

	_, err := store.Incr(context.Background(), "a", time.Minute)
	require.NoError(t, err)
	_, err = store.Incr(context.Background(), "b", time.Minute)
	require.NoError(t, err)

	require.NoError(t, store.Reset(context.Background(), "a"))
	_, ok, err := store.Status(context.Background(), "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.ClearAll(context.Background()))
	assert.Equal(t, 0, store.Len())
}
