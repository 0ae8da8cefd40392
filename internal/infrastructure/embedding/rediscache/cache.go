// Package rediscache decorates an embedding model with a read-through Redis
// cache. Groundedness checking re-embeds response sentences on every Validate
// call; repeated sentences and queries hit the cache instead of the model.
package rediscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/grantpilot/ragengine/internal/core/ports"
)

const keyPrefix = "emb:"

type Cache struct {
	inner  ports.EmbeddingModel
	client *redis.Client
	model  string
	ttl    time.Duration
	logger *slog.Logger
}

type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// New connects to Redis and wraps inner. The model name is part of the cache
// key so switching embedding models never serves stale vectors.
func New(ctx context.Context, inner ports.EmbeddingModel, model string, options Options, logger *slog.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     options.Addr,
		Password: options.Password,
		DB:       options.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	ttl := options.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{inner: inner, client: client, model: model, ttl: ttl, logger: logger}, nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	missIdx := make([]int, 0, len(texts))
	missTexts := make([]string, 0, len(texts))

	cached := c.lookup(ctx, texts)
	for i, text := range texts {
		if vector, ok := cachedVector(cached, i); ok {
			out[i] = vector
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) > 0 {
		vectors, err := c.inner.Embed(ctx, missTexts)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(missTexts) {
			return nil, fmt.Errorf("embed cache: got %d vectors for %d inputs", len(vectors), len(missTexts))
		}
		for i, vector := range vectors {
			out[missIdx[i]] = vector
			c.store(ctx, missTexts[i], vector)
		}
	}
	return out, nil
}

func (c *Cache) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

// lookup probes all keys in one MGET round trip. A groundedness pass embeds
// every response sentence, so per-text GETs would cost one round trip each.
func (c *Cache) lookup(ctx context.Context, texts []string) []any {
	keys := make([]string, len(texts))
	for i, text := range texts {
		keys[i] = c.key(text)
	}
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		// Redis outages fall through to the model.
		return nil
	}
	return values
}

// cachedVector reads one MGET slot: nil means a miss, anything that fails to
// decode is treated the same way.
func cachedVector(values []any, i int) ([]float32, bool) {
	if i >= len(values) {
		return nil, false
	}
	raw, ok := values[i].(string)
	if !ok {
		return nil, false
	}
	vector, err := decodeVector([]byte(raw))
	if err != nil {
		return nil, false
	}
	return vector, true
}

func (c *Cache) store(ctx context.Context, text string, vector []float32) {
	raw, err := encodeVector(vector)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(text), raw, c.ttl).Err(); err != nil && c.logger != nil {
		c.logger.Warn("embedding_cache_store_failed", "error", err)
	}
}

func (c *Cache) key(text string) string {
	return keyPrefix + hashKey(c.model, text)
}

func hashKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "|" + text))
	return hex.EncodeToString(sum[:])
}

func encodeVector(vector []float32) ([]byte, error) {
	return json.Marshal(vector)
}

func decodeVector(raw []byte) ([]float32, error) {
	var vector []float32
	if err := json.Unmarshal(raw, &vector); err != nil {
		return nil, err
	}
	return vector, nil
}
