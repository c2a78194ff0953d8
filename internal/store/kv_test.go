package store

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisKV) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisKV(client)
}

func TestRedisKV_GetMiss(t *testing.T) {
	_, kv := setupTestRedis(t)

	_, err := kv.Get(context.Background(), "catalog:options:nope")

	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_SetGetWithTTL(t *testing.T) {
	mr, kv := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", "v", time.Minute))

	v, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	mr.FastForward(2 * time.Minute)
	_, err = kv.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_ScanAndDelete(t *testing.T) {
	mr, kv := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("catalog:options:a", "1"))
	require.NoError(t, mr.Set("catalog:options:b", "2"))
	require.NoError(t, mr.Set("other", "3"))

	keys, err := kv.ScanKeys(ctx, "catalog:options:*")
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"catalog:options:a", "catalog:options:b"}, keys)

	require.NoError(t, kv.Delete(ctx, keys...))
	require.NoError(t, kv.Delete(ctx))

	assert.False(t, mr.Exists("catalog:options:a"))
	assert.True(t, mr.Exists("other"))
}

func TestRedisKV_Unavailable(t *testing.T) {
	mr, kv := setupTestRedis(t)
	mr.Close()

	_, err := kv.Get(context.Background(), "k")

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}
