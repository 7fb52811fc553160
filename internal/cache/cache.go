package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	currenciesKey = "directory:currencies"
	defaultTTL    = time.Hour
)

// Cache keeps a Redis copy of the full currency list so the read path does
// not hit Postgres on every request. The list is always stored and served as
// one unit, so a reader sees a complete snapshot of a single refresh
// generation, never a partial one.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a Cache with a 1-hour TTL.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client, ttl: defaultTTL}
}

// GetCurrencies retrieves the cached currency list.
// Returns nil, nil on a cache miss (not an error).
func (c *Cache) GetCurrencies(ctx context.Context) ([]string, error) {
	val, err := c.client.Get(ctx, currenciesKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get currencies: %w", err)
	}

	var codes []string
	if err := json.Unmarshal([]byte(val), &codes); err != nil {
		return nil, fmt.Errorf("unmarshaling cached currencies: %w", err)
	}

	return codes, nil
}

// SetCurrencies stores the currency list with the configured TTL.
func (c *Cache) SetCurrencies(ctx context.Context, codes []string) error {
	if len(codes) == 0 {
		return nil
	}

	b, err := json.Marshal(codes)
	if err != nil {
		return fmt.Errorf("marshaling currencies: %w", err)
	}

	if err := c.client.Set(ctx, currenciesKey, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set currencies: %w", err)
	}

	return nil
}

// Invalidate drops the cached currency list. Called after a refresh commits
// so the next read repopulates from the new generation.
func (c *Cache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, currenciesKey).Err(); err != nil {
		return fmt.Errorf("cache invalidate currencies: %w", err)
	}
	return nil
}
