package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPingsServer(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := New(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
}

func TestCooldownAcquireOncePerWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cd := NewCooldown(client, "test:", time.Minute)
	ctx := context.Background()

	ok, err := cd.Acquire(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cd.Acquire(ctx, "a@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = cd.Acquire(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNilCooldownAlwaysAllows(t *testing.T) {
	var cd *Cooldown
	ok, err := cd.Acquire(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, ok)
}
