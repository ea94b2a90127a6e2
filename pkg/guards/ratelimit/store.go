package ratelimit

import (
	"context"
	"time"
)

// Record is one fixed window for one client key. Count only grows while
// now <= ResetTime; a stale record is replaced, never mutated.
type Record struct {
	Count     int
	ResetTime time.Time
}

// Store owns the per-key window records. The read-check-increment cycle in
// Incr must be atomic per key: two concurrent callers that both see
// count < max must not both be admitted past the limit.
//
// The in-memory implementation is the default. Deployments running several
// gateway instances can swap in the redis-backed implementation without
// touching call sites.
type Store interface {
	// Incr rolls the key's window if it expired, increments the counter and
	// returns the resulting record.
	Incr(ctx context.Context, key string, window time.Duration) (Record, error)

	// Status returns the key's current record, if any. Operator/test
	// surface; request handling never calls it.
	Status(ctx context.Context, key string) (Record, bool, error)

	// Reset drops the record for a single key.
	Reset(ctx context.Context, key string) error

	// ClearAll drops every record. Operator/test surface.
	ClearAll(ctx context.Context) error

	// Sweep removes records whose window expired, returning how many were
	// removed. It runs off the request hot path and must be safe to run
	// concurrently with live increments.
	Sweep(ctx context.Context) (int, error)
}
