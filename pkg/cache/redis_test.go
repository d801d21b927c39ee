package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisClient_SetWithTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisClient(Options{Addr: mr.Addr()})
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.SetWithTTL(ctx, "k", 1, time.Minute))

	ok, err := c.Has(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Minute, mr.TTL("k"))

	mr.FastForward(2 * time.Minute)
	ok, err = c.Has(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisClient_RejectsNonPositiveTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedisClient(Options{Addr: mr.Addr()})
	defer c.Close()

	assert.Error(t, c.SetWithTTL(context.Background(), "k", 1, 0))
	assert.False(t, mr.Exists("k"))
}
