package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewFromRedis(rdb, logrus.New()), mr
}

func TestClient_GetMiss(t *testing.T) {
	c, _ := newTestClient(t)

	var target []any
	hit, err := c.Get(context.Background(), "absent", &target)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestClient_SetThenGet(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	rows := []any{map[string]any{"id": "a", "label": "project"}}
	require.NoError(t, c.SetWithTTL(ctx, "rows:0:1", rows, time.Minute))
	assert.True(t, mr.Exists("dagraph:rows:0:1"))

	var got []any
	hit, err := c.Get(ctx, "rows:0:1", &got)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, rows, got)
}

func TestClient_TTLExpiry(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.SetWithTTL(ctx, "k", "v", time.Second))
	mr.FastForward(2 * time.Second)

	var got string
	hit, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestClient_Generation(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	require.NoError(t, c.BumpGeneration(ctx))
	require.NoError(t, c.BumpGeneration(ctx))

	gen, err = c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), gen)
}

func TestClient_Delete(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 1))
	require.NoError(t, c.Delete(ctx, "k"))
	assert.False(t, mr.Exists("dagraph:k"))
}

func TestNewClient_MissingAddress(t *testing.T) {
	_, err := NewClient(context.Background(), "", "", 0, logrus.New())
	assert.Error(t, err)
}

func TestNewClient_Connects(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewClient(context.Background(), mr.Addr(), "", 0, logrus.New())
	require.NoError(t, err)
	assert.NoError(t, c.HealthCheck(context.Background()))
	assert.NoError(t, c.Close())
}

func TestClient_GetKeepsNumberPrecision(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "n", []any{int64(9007199254740993)}))

	var got []any
	hit, err := c.Get(ctx, "n", &got)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, []any{json.Number("9007199254740993")}, got)
}
