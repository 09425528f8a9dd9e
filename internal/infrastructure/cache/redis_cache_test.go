package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Bodega-api/internal/application/ports"
)

type summary struct {
	Pending int    `json:"pending"`
	Label   string `json:"label"`
}

func setupCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, time.Minute), mr
}

func TestRedisCache_GetMiss(t *testing.T) {
	c, _ := setupCache(t)
	var out summary
	err := c.Get(context.Background(), "dashboard:c1", &out)
	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestRedisCache_SetYGet(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "dashboard:c1", summary{Pending: 3, Label: "Marzo 2026"}, 0))

	var out summary
	require.NoError(t, c.Get(ctx, "dashboard:c1", &out))
	assert.Equal(t, summary{Pending: 3, Label: "Marzo 2026"}, out)

	ttl := mr.TTL(keyPrefix + "dashboard:c1")
	assert.GreaterOrEqual(t, ttl, time.Minute)
	assert.Less(t, ttl, time.Minute+time.Minute/5)
}

func TestRedisCache_Expira(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "dashboard:c1", summary{Pending: 1}, time.Second))

	mr.FastForward(2 * time.Minute)

	var out summary
	assert.ErrorIs(t, c.Get(ctx, "dashboard:c1", &out), ports.ErrCacheMiss)
}

func TestRedisCache_InvalidatePorPrefijo(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "dashboard:c1", summary{Pending: 1}, 0))
	require.NoError(t, c.Set(ctx, "dashboard:c1:extra", summary{Pending: 2}, 0))
	require.NoError(t, c.Set(ctx, "dashboard:c2", summary{Pending: 3}, 0))

	require.NoError(t, c.Invalidate(ctx, "dashboard:c1"))

	assert.False(t, mr.Exists(keyPrefix+"dashboard:c1"))
	assert.False(t, mr.Exists(keyPrefix+"dashboard:c1:extra"))
	assert.True(t, mr.Exists(keyPrefix+"dashboard:c2"))
}

func TestRedisCache_ValorCorrupto(t *testing.T) {
	c, mr := setupCache(t)
	require.NoError(t, mr.Set(keyPrefix+"dashboard:c1", "{no-json"))

	var out summary
	err := c.Get(context.Background(), "dashboard:c1", &out)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrCacheMiss)
}
