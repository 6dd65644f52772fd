package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// SharedList is a depleted-products message published under a share token.
type SharedList struct {
	Token     string    `json:"token"`
	Message   string    `json:"message"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ShareCache stores shared lists in Redis.
type ShareCache struct {
	redis *RedisClient
}

// NewShareCache creates a new ShareCache.
func NewShareCache(redis *RedisClient) *ShareCache {
	return &ShareCache{redis: redis}
}

// key returns the Redis key of a shared list: share:{token}
func (c *ShareCache) key(token string) string {
	return fmt.Sprintf("share:%s", token)
}

// Save stores list until ttl elapses.
func (c *ShareCache) Save(ctx context.Context, list *SharedList, ttl time.Duration) error {
	now := time.Now()
	list.CreatedAt = now
	list.ExpiresAt = now.Add(ttl)

	jsonData, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal shared list: %w", err)
	}
	if err := c.redis.Set(ctx, c.key(list.Token), string(jsonData), ttl); err != nil {
		return fmt.Errorf("failed to store shared list: %w", err)
	}
	return nil
}

// Get retrieves a shared list. A missing or expired token returns ErrCacheMiss.
func (c *ShareCache) Get(ctx context.Context, token string) (*SharedList, error) {
	jsonData, err := c.redis.Get(ctx, c.key(token))
	if err != nil {
		return nil, err
	}

	var list SharedList
	if err := json.Unmarshal([]byte(jsonData), &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shared list: %w", err)
	}
	return &list, nil
}
