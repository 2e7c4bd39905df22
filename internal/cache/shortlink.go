package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/scanlink/scanlink/internal/model"
)

// Cache key prefixes and TTLs.
const (
	linkKeyPrefix     = "sl:"
	negCacheKeySuffix = ":neg"

	// DefaultLinkTTL caps how long a cached link may live; entries
	// expiring sooner get a TTL clamped to their expiry.
	DefaultLinkTTL = time.Hour

	// NegativeCacheTTL is the TTL for negative cache entries.
	NegativeCacheTTL = 5 * time.Minute
)

// ErrCacheMiss is returned when a link is not in the cache.
var ErrCacheMiss = errors.New("cache miss")

// GetLink retrieves a cached link by short code.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetLink(ctx context.Context, code string) (*model.CachedShortLink, error) {
	key := linkKeyPrefix + code

	result, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 {
		return nil, ErrCacheMiss
	}

	cached := &model.CachedShortLink{
		ID:          result["id"],
		ContentKind: result["content_kind"],
		Payload:     result["payload"],
		IsActive:    result["is_active"],
		ExpiresAt:   result["expires_at"],
	}

	return cached, nil
}

// SetLink stores a link in cache with a TTL clamped to its expiry.
// Already-expired links are evicted instead.
func (c *Cache) SetLink(ctx context.Context, code string, link *model.ShortLink) error {
	key := linkKeyPrefix + code

	ttl := DefaultLinkTTL
	expiresIn := time.Until(link.ExpiresAt)
	if expiresIn <= 0 {
		c.client.Del(ctx, key, key+negCacheKeySuffix)
		return nil
	}
	if expiresIn < ttl {
		ttl = expiresIn
	}

	cached := link.ToCachedShortLink()
	fields := map[string]any{
		"id":           cached.ID,
		"content_kind": cached.ContentKind,
		"payload":      cached.Payload,
		"is_active":    cached.IsActive,
		"expires_at":   cached.ExpiresAt,
	}

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache link: %w", err)
	}

	// Remove negative cache if present.
	c.client.Del(ctx, key+negCacheKeySuffix)

	return nil
}

// DeleteLink removes a link and its negative-cache marker.
func (c *Cache) DeleteLink(ctx context.Context, code string) error {
	key := linkKeyPrefix + code

	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.Del(ctx, key+negCacheKeySuffix)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete link from cache: %w", err)
	}

	return nil
}

// IsNegativelyCached checks if a short code is marked as not found.
func (c *Cache) IsNegativelyCached(ctx context.Context, code string) (bool, error) {
	key := linkKeyPrefix + code + negCacheKeySuffix

	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check negative cache: %w", err)
	}

	return exists > 0, nil
}

// SetNegativeCache marks a short code as not found.
func (c *Cache) SetNegativeCache(ctx context.Context, code string) error {
	key := linkKeyPrefix + code + negCacheKeySuffix

	if err := c.client.SetEx(ctx, key, "", NegativeCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set negative cache: %w", err)
	}

	return nil
}
