package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorEncoding(t *testing.T) {
	in := []float32{0, -1.25, 3.5, 1e-6}

	out, err := decodeVector(encodeVector(in))

	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeVector_Corrupt(t *testing.T) {
	_, err := decodeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestNewCache_RequiresAddr(t *testing.T) {
	_, err := NewCache(context.Background(), Config{})
	assert.Error(t, err)
}

func TestNewCache_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewCache(ctx, Config{Addr: "127.0.0.1:1"})
	assert.ErrorContains(t, err, "redis ping")
}

// TestCache_RoundTrip runs against a live server when RAGENT_TEST_REDIS_ADDR is set.
func TestCache_RoundTrip(t *testing.T) {
	addr := os.Getenv("RAGENT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("RAGENT_TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	c, err := NewCache(ctx, Config{Addr: addr, TTL: time.Minute, KeyPrefix: "ragent:test:"})
	require.NoError(t, err)
	defer c.Close()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", []float32{1, 2, 3}))
	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3}, got)
}
