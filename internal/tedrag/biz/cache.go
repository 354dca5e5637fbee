package biz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/tedrag/internal/model"
	"github.com/kart-io/tedrag/pkg/utils/json"
)

// AnswerCacheConfig configures the Redis answer cache.
type AnswerCacheConfig struct {
	// Enabled turns caching on.
	Enabled bool
	// TTL is the answer expiry.
	TTL time.Duration
	// KeyPrefix namespaces the cache keys.
	KeyPrefix string
}

// AnswerCache caches final answers keyed by question text. Lookup and
// store failures degrade to cache misses so Redis outages never fail a
// request.
type AnswerCache struct {
	redis  *goredis.Client
	config *AnswerCacheConfig
}

// NewAnswerCache creates an answer cache. A nil client or disabled config
// yields a cache that always misses.
func NewAnswerCache(redis *goredis.Client, config *AnswerCacheConfig) *AnswerCache {
	if config == nil {
		config = &AnswerCacheConfig{
			Enabled:   false,
			TTL:       time.Hour,
			KeyPrefix: "tedrag:answer:",
		}
	}
	return &AnswerCache{redis: redis, config: config}
}

func (c *AnswerCache) enabled() bool {
	return c != nil && c.config.Enabled && c.redis != nil
}

// cacheKey hashes the question so arbitrary text is safe as a Redis key.
func (c *AnswerCache) cacheKey(question string) string {
	hash := sha256.Sum256([]byte(question))
	return c.config.KeyPrefix + hex.EncodeToString(hash[:])
}

// Get returns the cached answer for a question, or nil on a miss.
func (c *AnswerCache) Get(ctx context.Context, question string) *model.Answer {
	if !c.enabled() {
		return nil
	}

	key := c.cacheKey(question)
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			logger.Warnw("failed to read answer cache", "error", err.Error(), "key", key)
		}
		return nil
	}

	var answer model.Answer
	if err := json.Unmarshal(data, &answer); err != nil {
		logger.Warnw("failed to unmarshal cached answer", "error", err.Error(), "key", key)
		_ = c.redis.Del(ctx, key).Err()
		return nil
	}

	return &answer
}

// Set stores an answer. Failures are logged and otherwise ignored.
func (c *AnswerCache) Set(ctx context.Context, question string, answer *model.Answer) {
	if !c.enabled() || answer == nil {
		return
	}

	data, err := json.Marshal(answer)
	if err != nil {
		logger.Warnw("failed to marshal answer for cache", "error", err.Error())
		return
	}

	key := c.cacheKey(question)
	if err := c.redis.Set(ctx, key, data, c.config.TTL).Err(); err != nil {
		logger.Warnw("failed to write answer cache", "error", err.Error(), "key", key)
	}
}
