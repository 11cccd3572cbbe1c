// Package redis provides a driven.EmbeddingCache shared across processes
// through a Redis server.
package redis

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/ragent/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.EmbeddingCache = (*Cache)(nil)

// Default configuration values.
const (
	DefaultKeyPrefix   = "ragent:emb:"
	DefaultDialTimeout = 5 * time.Second
)

// Config holds configuration for the Redis cache.
type Config struct {
	// Addr is the host:port of the Redis server (required).
	Addr string

	// Password authenticates the connection when set.
	Password string

	// TTL expires entries. Zero keeps them until evicted by Redis.
	TTL time.Duration

	// KeyPrefix namespaces keys (default: ragent:emb:).
	KeyPrefix string
}

// Cache stores vectors as little-endian float32 strings.
type Cache struct {
	rdb    *goredis.Client
	ttl    time.Duration
	prefix string
}

// NewCache connects to Redis and verifies the connection with PING.
func NewCache(ctx context.Context, cfg Config) (*Cache, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("redis: address is required")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = DefaultKeyPrefix
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DialTimeout: DefaultDialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, DefaultDialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Cache{rdb: rdb, ttl: cfg.TTL, prefix: cfg.KeyPrefix}, nil
}

// Get returns the cached vector and whether it was present.
func (c *Cache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	raw, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	vec, err := decodeVector(raw)
	if err != nil {
		return nil, false, err
	}
	return vec, true, nil
}

// Set stores a vector with the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, vector []float32) error {
	if err := c.rdb.Set(ctx, c.prefix+key, encodeVector(vector), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the client.
func (c *Cache) Close() error {
	return c.rdb.Close()
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(raw []byte) ([]float32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("redis: corrupt vector of %d bytes", len(raw))
	}
	vec := make([]float32, len(raw)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return vec, nil
}
