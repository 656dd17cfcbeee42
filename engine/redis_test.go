package engine

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("KVTTL_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("KVTTL_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedis(t *testing.T) {
	client := redisClient(t)
	e := NewRedis(client, "kvttl-test", 0)
	require.NoError(t, e.ClearAll())
	testEngineContract(t, e)
	require.NoError(t, e.ClearAll())
}

func TestRedis_ClearAllKeepsOtherNamespaces(t *testing.T) {
	client := redisClient(t)
	a := NewRedis(client, "kvttl-test-[a]*", time.Second)
	b := NewRedis(client, "kvttl-test-[a]*b", time.Second)
	t.Cleanup(func() { _ = a.ClearAll(); _ = b.ClearAll() })

	require.NoError(t, a.Set("k", "a"))
	require.NoError(t, b.Set("k", "b"))
	require.NoError(t, a.ClearAll())

	_, ok, err := a.GetString("k")
	require.NoError(t, err)
	assert.False(t, ok)
	v, ok, err := b.GetString("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b", v)
}

func TestRedis_ClearAllLargeNamespace(t *testing.T) {
	client := redisClient(t)
	e := NewRedis(client, "kvttl-test-large", 0)
	t.Cleanup(func() { _ = e.ClearAll() })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pipe := client.Pipeline()
	n := redisScanBatch*8 + 3
	for i := 0; i < n; i++ {
		pipe.Set(ctx, e.key(fmt.Sprintf("k%d", i)), "v", 0)
		pipe.Set(ctx, e.key(fmt.Sprintf("k%d:__meta", i)), `{"expiresAt":1}`, 0)
	}
	_, err := pipe.Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, e.ClearAll())
	var left []string
	iter := client.Scan(ctx, 0, escapeGlob(e.prefix)+"*", 1000).Iterator()
	for iter.Next(ctx) {
		left = append(left, iter.Val())
	}
	require.NoError(t, iter.Err())
	assert.Empty(t, left)
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `app\-storage|`, escapeGlob("app-storage|"))
	assert.Equal(t, `a\*\?\[x\]\\`, escapeGlob(`a*?[x]\`))
}
