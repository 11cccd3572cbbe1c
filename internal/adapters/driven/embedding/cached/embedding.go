// Package cached decorates an EmbeddingService with an EmbeddingCache.
package cached

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService serves repeat texts from a cache. Cache failures are
// logged and fall through to the wrapped service.
type EmbeddingService struct {
	inner driven.EmbeddingService
	cache driven.EmbeddingCache
	group singleflight.Group
}

// New wraps inner with cache.
func New(inner driven.EmbeddingService, cache driven.EmbeddingCache) *EmbeddingService {
	return &EmbeddingService{inner: inner, cache: cache}
}

// Key returns the cache key for text under the given model.
func Key(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return model + ":" + hex.EncodeToString(sum[:])
}

// Embed returns the cached vector or computes and stores it.
// Concurrent calls for the same text share one backend request. The shared
// request ignores any single caller's cancellation; each caller stops
// waiting when its own ctx is done.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	key := Key(s.inner.ModelName(), text)
	if vec, ok := s.lookup(ctx, key); ok {
		return vec, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		vec, err := s.inner.Embed(shared, text)
		if err != nil {
			return nil, err
		}
		s.store(shared, key, vec)
		return vec, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]float32), nil
	}
}

// EmbedBatch embeds only the cache misses, in one call to the wrapped service.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	model := s.inner.ModelName()
	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))
	var missIdx []int
	var missTexts []string
	for i, text := range texts {
		keys[i] = Key(model, text)
		if vec, ok := s.lookup(ctx, keys[i]); ok {
			out[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		logger.Debug("embedding cache: %d/%d hits", len(texts), len(texts))
		return out, nil
	}

	vecs, err := s.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("embedding: got %d vectors for %d inputs", len(vecs), len(missTexts))
	}
	for j, i := range missIdx {
		out[i] = vecs[j]
		s.store(ctx, keys[i], vecs[j])
	}

	logger.Debug("embedding cache: %d/%d hits", len(texts)-len(missTexts), len(texts))
	return out, nil
}

func (s *EmbeddingService) lookup(ctx context.Context, key string) ([]float32, bool) {
	vec, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("embedding cache get failed: %v", err)
		return nil, false
	}
	return vec, ok
}

func (s *EmbeddingService) store(ctx context.Context, key string, vec []float32) {
	if err := s.cache.Set(ctx, key, vec); err != nil {
		logger.Warn("embedding cache set failed: %v", err)
	}
}

// Dimensions returns the wrapped service's vector size.
func (s *EmbeddingService) Dimensions() int { return s.inner.Dimensions() }

// ModelName returns the wrapped service's model.
func (s *EmbeddingService) ModelName() string { return s.inner.ModelName() }

// Ping checks the wrapped service.
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

// Close releases the cache and the wrapped service.
func (s *EmbeddingService) Close() error {
	cacheErr := s.cache.Close()
	if err := s.inner.Close(); err != nil {
		return err
	}
	return cacheErr
}
