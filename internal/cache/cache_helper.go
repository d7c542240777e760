package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache errors
var (
	ErrCacheNotAvailable = fmt.Errorf("cache not available")
	ErrCacheNotFound     = fmt.Errorf("cache not found")
)

// CacheHelper provides common caching operations for repositories. All
// operations degrade gracefully when no Redis client is configured.
type CacheHelper struct {
	client *redis.Client
	prefix string
}

func NewCacheHelper(client *redis.Client, prefix string) *CacheHelper {
	return &CacheHelper{client: client, prefix: prefix}
}

// CacheConfig defines cache configuration for different data types.
type CacheConfig struct {
	TTL    time.Duration
	Prefix string
}

var (
	// Account lookups happen on every authenticated request.
	AccountCacheConfig = CacheConfig{TTL: 5 * time.Minute, Prefix: "account:"}

	// Join-code lookups are read-heavy and spaces never change codes.
	SpaceCacheConfig = CacheConfig{TTL: 10 * time.Minute, Prefix: "space:"}

	// Very short cache for existence checks.
	ExistsCacheConfig = CacheConfig{TTL: 2 * time.Minute, Prefix: "exists:"}
)

func (c *CacheHelper) GetCacheKey(key string) string {
	return c.prefix + key
}

// Get retrieves and unmarshals data from cache.
func (c *CacheHelper) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrCacheNotAvailable
	}

	data, err := c.client.Get(ctx, c.GetCacheKey(key)).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheNotFound
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}
	return nil
}

// Set marshals and stores data in cache.
func (c *CacheHelper) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil // Graceful degradation when cache not available
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	return c.client.Set(ctx, c.GetCacheKey(key), data, ttl).Err()
}

// Delete removes keys from cache.
func (c *CacheHelper) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}

	cacheKeys := make([]string, len(keys))
	for i, key := range keys {
		cacheKeys[i] = c.GetCacheKey(key)
	}
	return c.client.Del(ctx, cacheKeys...).Err()
}

// Exists checks whether a key is present in cache.
func (c *CacheHelper) Exists(ctx context.Context, key string) (bool, error) {
	if c.client == nil {
		return false, ErrCacheNotAvailable
	}

	count, err := c.client.Exists(ctx, c.GetCacheKey(key)).Result()
	if err != nil {
		return false, fmt.Errorf("cache exists error: %w", err)
	}
	return count > 0, nil
}

// CacheManager bundles the domain cache helpers.
type CacheManager struct {
	Account *CacheHelper
	Space   *CacheHelper
	Exists  *CacheHelper
}

func NewCacheManager(client *redis.Client) *CacheManager {
	if client == nil {
		return &CacheManager{
			Account: NewCacheHelper(nil, ""),
			Space:   NewCacheHelper(nil, ""),
			Exists:  NewCacheHelper(nil, ""),
		}
	}

	return &CacheManager{
		Account: NewCacheHelper(client, AccountCacheConfig.Prefix),
		Space:   NewCacheHelper(client, SpaceCacheConfig.Prefix),
		Exists:  NewCacheHelper(client, ExistsCacheConfig.Prefix),
	}
}

// HealthCheck verifies cache connectivity.
func (cm *CacheManager) HealthCheck(ctx context.Context) error {
	if cm.Space.client == nil {
		return ErrCacheNotAvailable
	}

	if _, err := cm.Space.client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}
	return nil
}
