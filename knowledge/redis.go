package knowledge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskmesh/taskmesh/core"
	"github.com/taskmesh/taskmesh/logging"
)

// CachedRetriever decorates another Retriever with a redis query cache.
// Cache trouble is never fatal: misses and redis errors both fall through
// to the inner retriever, keeping planning's never-fail contract intact.
type CachedRetriever struct {
	inner  core.Retriever
	client *redis.Client
	ttl    time.Duration
	logger logging.Logger
}

// CachedRetrieverOptions holds overrides passed to NewCachedRetriever.
type CachedRetrieverOptions struct {
	// TTL bounds cached entry lifetime. Defaults to 5 minutes.
	TTL time.Duration
	// Logger receives cache records. Defaults to NoOpLogger.
	Logger logging.Logger
}

// NewCachedRetriever wraps inner with a redis cache.
func NewCachedRetriever(inner core.Retriever, client *redis.Client, optFns ...func(o *CachedRetrieverOptions)) *CachedRetriever {
	opts := CachedRetrieverOptions{
		TTL:    5 * time.Minute,
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &CachedRetriever{inner: inner, client: client, ttl: opts.TTL, logger: opts.Logger}
}

// cacheKey hashes the query so arbitrary text stays a valid redis key.
func cacheKey(query string, topK int) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("taskmesh:retrieval:%s:%d", hex.EncodeToString(sum[:8]), topK)
}

// Retrieve implements core.Retriever.
func (r *CachedRetriever) Retrieve(ctx context.Context, query string, topK int) ([]string, error) {
	key := cacheKey(query, topK)

	if data, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var cached []string
		if err := json.Unmarshal(data, &cached); err == nil {
			r.logger.Debug("knowledge.cache.hit", "key", key)
			return cached, nil
		}
		// Corrupt entry: drop it and refill below.
		r.client.Del(ctx, key)
	}

	items, err := r.inner.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(items); err == nil {
		if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
			r.logger.Warn("knowledge.cache.store_failed", "key", key, "error", err.Error())
		}
	}

	return items, nil
}
