package ratelimit_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pennywise-app/gateguard/pkg/common"
	"github.com/pennywise-app/gateguard/pkg/guards/ratelimit"
)

func TestRedisStore_IncrFirstRequestSetsExpiry(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := ratelimit.NewRedisStore(db, nil)

	mock.ExpectIncr("ratelimit:203.0.113.7").SetVal(1)
	mock.ExpectPExpire("ratelimit:203.0.113.7", time.Minute).SetVal(true)
	mock.ExpectPTTL("ratelimit:203.0.113.7").SetVal(time.Minute)

	rec, err := store.Incr(context.Background(), "203.0.113.7", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Count)
	assert.False(t, rec.ResetTime.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_IncrSubsequentRequestKeepsWindow(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := ratelimit.NewRedisStore(db, nil)

	mock.ExpectIncr("ratelimit:203.0.113.7").SetVal(7)
	mock.ExpectPTTL("ratelimit:203.0.113.7").SetVal(30 * time.Second)

	rec, err := store.Incr(context.Background(), "203.0.113.7", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 7, rec.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_GuardBlocksOverLimit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := ratelimit.NewRedisStore(db, nil)
	guard := ratelimit.NewRateLimitGuard(store, common.EnvProduction, logrus.New(), nil)

	mock.ExpectIncr("ratelimit:203.0.113.7").SetVal(11)
	mock.ExpectPTTL("ratelimit:203.0.113.7").SetVal(5 * time.Minute)

	result := guard.Execute(context.Background(), limiterConfig(10, "15m"), requestFromIP("203.0.113.7"))
	require.NotNil(t, result)
	assert.Equal(t, http.StatusTooManyRequests, result.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_GuardAdmitsOnStoreFailure(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := ratelimit.NewRedisStore(db, nil)
	guard := ratelimit.NewRateLimitGuard(store, common.EnvProduction, logrus.New(), nil)

	mock.ExpectIncr("ratelimit:203.0.113.7").SetErr(errors.New("connection refused"))

	result := guard.Execute(context.Background(), limiterConfig(10, "15m"), requestFromIP("203.0.113.7"))
	assert.Nil(t, result)
}

func TestRedisStore_StatusMissingKey(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := ratelimit.NewRedisStore(db, nil)

	mock.ExpectGet("ratelimit:nobody").RedisNil()

	_, ok, err := store.Status(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_Reset(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := ratelimit.NewRedisStore(db, nil)

	mock.ExpectDel("ratelimit:203.0.113.7").SetVal(1)

	assert.NoError(t, store.Reset(context.Background(), "203.0.113.7"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
