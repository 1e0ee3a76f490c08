package ai

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/custodia-labs/docgap/internal/core/ports/driven"
	"github.com/custodia-labs/docgap/internal/logger"
)

// Ensure CachedEmbedding implements the interface.
var _ driven.EmbeddingService = (*CachedEmbedding)(nil)

const embeddingKeyPrefix = "emb:"

// CachedEmbedding serves embeddings from a cache before calling the provider.
// Keys are sha256(model + text), so switching models never reuses vectors.
// Cache failures are logged and treated as misses.
type CachedEmbedding struct {
	inner driven.EmbeddingService
	cache driven.Cache
	ttl   time.Duration
}

// NewCachedEmbedding wraps an embedding service with a cache.
func NewCachedEmbedding(inner driven.EmbeddingService, cache driven.Cache, ttl time.Duration) *CachedEmbedding {
	return &CachedEmbedding{inner: inner, cache: cache, ttl: ttl}
}

// EmbeddingKey returns the cache key for a model and text.
func EmbeddingKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return embeddingKeyPrefix + hex.EncodeToString(sum[:])
}

// Embed returns the cached vector or embeds and stores it.
func (c *CachedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	key := EmbeddingKey(c.inner.ModelName(), text)
	if v, ok := c.lookup(ctx, key); ok {
		return v, nil
	}

	v, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, v)
	return v, nil
}

// EmbedBatch embeds only the texts that miss the cache, in one call.
func (c *CachedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	model := c.inner.ModelName()
	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))

	var missIdx []int
	var missTexts []string
	for i, text := range texts {
		keys[i] = EmbeddingKey(model, text)
		if v, ok := c.lookup(ctx, keys[i]); ok {
			out[i] = v
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		logger.Debug("[embedding-cache] batch of %d served from cache", len(texts))
		return out, nil
	}

	vectors, err := c.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missTexts) {
		return nil, fmt.Errorf("embedding cache: expected %d vectors, got %d", len(missTexts), len(vectors))
	}

	for j, i := range missIdx {
		out[i] = vectors[j]
		c.store(ctx, keys[i], vectors[j])
	}
	logger.Debug("[embedding-cache] batch of %d: %d hits, %d misses",
		len(texts), len(texts)-len(missTexts), len(missTexts))
	return out, nil
}

func (c *CachedEmbedding) lookup(ctx context.Context, key string) ([]float32, bool) {
	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("[embedding-cache] get failed: %v", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	v, err := decodeVector(raw)
	if err != nil {
		logger.Warn("[embedding-cache] dropping corrupt entry: %v", err)
		return nil, false
	}
	return v, true
}

func (c *CachedEmbedding) store(ctx context.Context, key string, v []float32) {
	if err := c.cache.Set(ctx, key, encodeVector(v), c.ttl); err != nil {
		logger.Warn("[embedding-cache] set failed: %v", err)
	}
}

// encodeVector packs a vector as little-endian float32 bits.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(raw []byte) ([]float32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("vector length %d is not a multiple of 4", len(raw))
	}
	v := make([]float32, len(raw)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return v, nil
}

// Dimensions returns the embedding vector size.
func (c *CachedEmbedding) Dimensions() int { return c.inner.Dimensions() }

// ModelName returns the wrapped model name.
func (c *CachedEmbedding) ModelName() string { return c.inner.ModelName() }

// Ping checks the wrapped service.
func (c *CachedEmbedding) Ping(ctx context.Context) error { return c.inner.Ping(ctx) }

// Close releases the wrapped service. The cache is owned by the caller.
func (c *CachedEmbedding) Close() error { return c.inner.Close() }
