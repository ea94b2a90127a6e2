package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps window records in a mutex-guarded map. Counters live
// only for the lifetime of the process; restarts start every window over.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
	nowFn   func() time.Time
}

type MemoryStoreOpts struct {
	TimeProvider func() time.Time
}

func NewMemoryStore(opts *MemoryStoreOpts) *MemoryStore {
	nowFn := time.Now
	if opts != nil && opts.TimeProvider != nil {
		nowFn = opts.TimeProvider
	}
	return &MemoryStore{
		records: make(map[string]Record),
		nowFn:   nowFn,
	}
}

func (s *MemoryStore) Incr(ctx context.Context, key string, window time.Duration) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFn()
	rec, ok := s.records[key]
	if !ok || now.After(rec.ResetTime) {
		rec = Record{Count: 0, ResetTime: now.Add(window)}
	}
	rec.Count++
	s.records[key] = rec
	return rec, nil
}

func (s *MemoryStore) Status(ctx context.Context, key string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	return rec, ok, nil
}

func (s *MemoryStore) Reset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

func (s *MemoryStore) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]Record)
	return nil
}

// Sweep deletes expired records. Staleness is re-checked under the same
// lock that guards Incr, so a record refreshed by a concurrent request is
// never dropped.
func (s *MemoryStore) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFn()
	removed := 0
	for key, rec := range s.records {
		if rec.ResetTime.Before(now) {
			delete(s.records, key)
			removed++
		}
	}
	return removed, nil
}

// Len reports how many records are currently held.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
