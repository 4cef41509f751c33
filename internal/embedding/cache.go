package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

// Backend is the slice of the redis API the cache needs. *redis.Client
// satisfies it; tests substitute a fake built on redis.NewStringResult.
type Backend interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Cache is a read-through Provider decorator. Recomputing an embedding is
// idempotent, so cache failures are soft: on any redis error the lookup
// falls through to the underlying provider and the miss is logged.
type Cache struct {
	next   Provider
	redis  Backend
	model  string
	ttl    time.Duration
	logger *slog.Logger
}

// NewCache wraps a provider with a redis cache. The model name is part of
// the key so a model change never serves stale vectors.
func NewCache(next Provider, redis Backend, model string, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{next: next, redis: redis, model: model, ttl: ttl, logger: logger}
}

func (c *Cache) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)

	raw, err := c.redis.Get(ctx, key).Bytes()
	if err == nil {
		if vec, decodeErr := decodeVector(raw); decodeErr == nil {
			return vec, nil
		}
		// Unreadable entry: treat as a miss and overwrite below.
	}

	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if setErr := c.redis.Set(ctx, key, encodeVector(vec), c.ttl).Err(); setErr != nil {
		c.logger.WarnContext(ctx, "embedding cache write failed", "error", setErr)
	}
	return vec, nil
}

func (c *Cache) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("emb:%s:%s", c.model, hex.EncodeToString(sum[:]))
}

func encodeVector(vec []float32) []byte {
	out := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func decodeVector(raw []byte) ([]float32, error) {
	if len(raw) == 0 || len(raw)%4 != 0 {
		return nil, fmt.Errorf("malformed cached vector of %d bytes", len(raw))
	}
	vec := make([]float32, len(raw)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return vec, nil
}
