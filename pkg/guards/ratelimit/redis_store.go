package ratelimit

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const defaultKeyPrefix = "ratelimit:"

// RedisStore implements Store on a shared redis instance so that several
// gateway processes count against the same windows. INCR is atomic on the
// server, which gives the same no-overadmission guarantee as the in-memory
// mutex. Redis expires the keys itself, so Sweep is a no-op here.
type RedisStore struct {
	client *redis.Client
	prefix string
	nowFn  func() time.Time
}

type RedisStoreOpts struct {
	KeyPrefix    string
	TimeProvider func() time.Time
}

func NewRedisStore(client *redis.Client, opts *RedisStoreOpts) *RedisStore {
	prefix := defaultKeyPrefix
	nowFn := time.Now
	if opts != nil {
		if opts.KeyPrefix != "" {
			prefix = opts.KeyPrefix
		}
		if opts.TimeProvider != nil {
			nowFn = opts.TimeProvider
		}
	}
	return &RedisStore{client: client, prefix: prefix, nowFn: nowFn}
}

func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (Record, error) {
	k := s.prefix + key

	count, err := s.client.Incr(ctx, k).Result()
	if err != nil {
		return Record{}, err
	}
	if count == 1 {
		if err := s.client.PExpire(ctx, k, window).Err(); err != nil {
			return Record{}, err
		}
	}

	ttl, err := s.client.PTTL(ctx, k).Result()
	if err != nil {
		return Record{}, err
	}
	if ttl < 0 {
		// Key lost its expiry (e.g. a crashed PExpire); repair it so the
		// window cannot live forever.
		ttl = window
		if err := s.client.PExpire(ctx, k, window).Err(); err != nil {
			return Record{}, err
		}
	}

	return Record{Count: int(count), ResetTime: s.nowFn().Add(ttl)}, nil
}

func (s *RedisStore) Status(ctx context.Context, key string) (Record, bool, error) {
	k := s.prefix + key

	count, err := s.client.Get(ctx, k).Int()
	if err == redis.Nil {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}

	ttl, err := s.client.PTTL(ctx, k).Result()
	if err != nil {
		return Record{}, false, err
	}
	return Record{Count: count, ResetTime: s.nowFn().Add(ttl)}, true, nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

func (s *RedisStore) ClearAll(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (s *RedisStore) Sweep(ctx context.Context) (int, error) {
	return 0, nil
}
