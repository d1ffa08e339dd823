package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// ErrMiss reports a cache key with no stored value.
var ErrMiss = errors.New("cache miss")

// NewClient builds a Redis client for the caching layer.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// Cache stores JSON-encoded values in Redis with a fixed TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// GetJSON loads the value stored under key into out. ErrMiss is returned when
// the key is absent.
func (c *Cache) GetJSON(ctx context.Context, key string, out interface{}) error {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return errors.Wrap(err, "cache get")
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return errors.Wrap(err, "decode cached value")
	}
	return nil
}

// SetJSON stores value under key for the cache's TTL.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "encode cached value")
	}
	return errors.Wrap(c.client.Set(ctx, key, payload, c.ttl).Err(), "cache set")
}

// Invalidate removes the given keys.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return errors.Wrap(c.client.Del(ctx, keys...).Err(), "cache invalidate")
}
