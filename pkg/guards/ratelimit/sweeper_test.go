package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennywise-app/gateguard/pkg/guards/ratelimit"
)

func TestSweeper_ReclaimsStaleRecords(t *testing.T) {
	var mu sync.Mutex
	now := time.Now()
	store := ratelimit.NewMemoryStore(&ratelimit.MemoryStoreOpts{
		TimeProvider: func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return now
		},
	})

	_, err := store.Incr(context.Background(), "one-off", 10*time.Millisecond)
	require.NoError(t, err)

	mu.Lock()
	now = now.Add(time.Second)
	mu.Unlock()

	sweeper := ratelimit.NewSweeper(store, 10*time.Millisecond, logrus.New())
	sweeper.Start()
	defer sweeper.Stop()

	assert.Eventually(t, func() bool {
		return store.Len() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestSweeper_StopIsIdempotentAndWaits(t *testing.T) {
	store := ratelimit.NewMemoryStore(nil)
	sweeper := ratelimit.NewSweeper(store, 5*time.Millisecond, logrus.New())
	sweeper.Start()

	sweeper.Stop()
	sweeper.Stop()
}

func TestSweeper_StopWithoutStartReturns(t *testing.T) {
	sweeper := ratelimit.NewSweeper(ratelimit.NewMemoryStore(nil), 5*time.Millisecond, logrus.New())

	done := make(chan struct{})
	go func() {
		sweeper.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked without a running sweep loop")
	}
}
