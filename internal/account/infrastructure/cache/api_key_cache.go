// Package cache fronts the admin API-key lookup with a short-TTL cache, per
// the requirement that hot-path auth not hit Postgres on every request. A
// Redis-backed cache is preferred when configured; otherwise an in-process
// map with the same TTL is used, so a single-instance deployment still gets
// the behavior without requiring Redis.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TTL is how long a resolved account id is cached for its API key.
const TTL = 5 * time.Minute

const keyPrefix = "nitro:apikey:"

// APIKeyCache resolves a secret API key to an account id, caching hits for
// TTL so repeated admin requests don't re-query the accounts table.
type APIKeyCache struct {
	redis *redis.Client

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	accountID uuid.UUID
	expiresAt time.Time
}

// NewAPIKeyCache creates an APIKeyCache. redisClient may be nil, in which
// case the in-process fallback is used exclusively.
func NewAPIKeyCache(redisClient *redis.Client) *APIKeyCache {
	return &APIKeyCache{redis: redisClient, entries: make(map[string]cacheEntry)}
}

// Get returns the cached account id for apiKey, if present and unexpired.
func (c *APIKeyCache) Get(ctx context.Context, apiKey string) (uuid.UUID, bool) {
	if c.redis != nil {
		raw, err := c.redis.Get(ctx, keyPrefix+apiKey).Result()
		if err == nil {
			var id uuid.UUID
			if jsonErr := json.Unmarshal([]byte(raw), &id); jsonErr == nil {
				return id, true
			}
		}
		if err != nil && err != redis.Nil {
			// Redis unavailable: fall through to the in-process cache rather
			// than failing every authenticated request.
			return c.getLocal(apiKey)
		}
		return uuid.Nil, false
	}
	return c.getLocal(apiKey)
}

func (c *APIKeyCache) getLocal(apiKey string) (uuid.UUID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[apiKey]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(c.entries, apiKey)
		return uuid.Nil, false
	}
	return entry.accountID, true
}

// Set caches accountID for apiKey for TTL.
func (c *APIKeyCache) Set(ctx context.Context, apiKey string, accountID uuid.UUID) {
	if c.redis != nil {
		if raw, err := json.Marshal(accountID); err == nil {
			_ = c.redis.Set(ctx, keyPrefix+apiKey, raw, TTL).Err()
		}
	}
	c.mu.Lock()
	c.entries[apiKey] = cacheEntry{accountID: accountID, expiresAt: time.Now().Add(TTL)}
	c.mu.Unlock()
}

// Invalidate removes any cached entry for apiKey, used when an account's
// secret key is rotated.
func (c *APIKeyCache) Invalidate(ctx context.Context, apiKey string) {
	if c.redis != nil {
		_ = c.redis.Del(ctx, keyPrefix+apiKey).Err()
	}
	c.mu.Lock()
	delete(c.entries, apiKey)
	c.mu.Unlock()
}
