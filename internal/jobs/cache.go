package jobs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"skillgap-backend/internal/shared/telemetry"
)

// Cache stores raw search pages between requests.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedSource memoizes another Source. Cache failures are logged and the
// inner source is used directly.
type CachedSource struct {
	Inner  Source
	Cache  Cache
	TTL    time.Duration
	Prefix string
}

// Search returns a cached page when available, otherwise delegates and stores
// the result. Errors from the inner source are never cached.
func (c *CachedSource) Search(ctx context.Context, query string, page int) ([]Posting, error) {
	if c.Cache == nil {
		return c.Inner.Search(ctx, query, page)
	}
	key := c.key(query, page)

	raw, ok, err := c.Cache.Get(ctx, key)
	if err != nil {
		telemetry.Warn("jobs.cache.get_failed", map[string]any{"key": key, "error": err.Error()})
	} else if ok {
		var postings []Posting
		if err := json.Unmarshal(raw, &postings); err == nil {
			return postings, nil
		}
		telemetry.Warn("jobs.cache.decode_failed", map[string]any{"key": key})
	}

	postings, err := c.Inner.Search(ctx, query, page)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(postings); err == nil {
		if err := c.Cache.Set(ctx, key, encoded, c.ttl()); err != nil {
			telemetry.Warn("jobs.cache.set_failed", map[string]any{"key": key, "error": err.Error()})
		}
	}
	return postings, nil
}

func (c *CachedSource) ttl() time.Duration {
	if c.TTL <= 0 {
		return time.Hour
	}
	return c.TTL
}

func (c *CachedSource) key(query string, page int) string {
	prefix := c.Prefix
	if prefix == "" {
		prefix = "jobs:search"
	}
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return fmt.Sprintf("%s:%s:%d", prefix, hex.EncodeToString(sum[:8]), page)
}

// RedisCache implements Cache on a go-redis client.
type RedisCache struct {
	Client *redis.Client
}

// NewRedisCache connects to addr and verifies the connection.
func NewRedisCache(ctx context.Context, addr, password string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &RedisCache{Client: client}, nil
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return val, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.Client.Set(ctx, key, value, ttl).Err()
}

// Close releases the underlying client.
func (r *RedisCache) Close() error {
	return r.Client.Close()
}
