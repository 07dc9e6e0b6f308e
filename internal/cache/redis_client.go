package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultTTL bounds how long a cached result page may be served.
const DefaultTTL = 5 * time.Minute

// Client wraps a Redis client with JSON caching helpers. Every key is
// namespaced under prefix.
type Client struct {
	client *redis.Client
	logger *logrus.Logger
	prefix string
	ttl    time.Duration
}

// NewClient connects to Redis at addr and verifies connectivity.
func NewClient(ctx context.Context, addr, password string, db int, logger *logrus.Logger) (*Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address missing")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password, // Empty string if no password
		DB:       db,
	})

	// Fail fast on startup
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	c := NewFromRedis(rdb, logger)
	c.logger.WithField("addr", addr).Info("redis client connected")
	return c, nil
}

// NewFromRedis wraps an existing go-redis client.
func NewFromRedis(rdb *redis.Client, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Client{
		client: rdb,
		logger: logger,
		prefix: "dagraph",
		ttl:    DefaultTTL,
	}
}

// WithPrefix changes the key namespace.
func (c *Client) WithPrefix(prefix string) *Client {
	c.prefix = prefix
	return c
}

// Close closes the Redis client connection
func (c *Client) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}
	c.logger.Info("redis client closed")
	return nil
}

// HealthCheck verifies Redis connectivity
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// Get retrieves a cached value by key and unmarshals into target.
// Numbers decoded into interface values are json.Number.
// A miss returns false without error.
func (c *Client) Get(ctx context.Context, key string, target any) (bool, error) {
	key = c.key(key)
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.WithField("key", key).Debug("cache miss")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed for key %s: %w", key, err)
	}

	dec := json.NewDecoder(bytes.NewReader(val))
	dec.UseNumber()
	if err := dec.Decode(target); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value for key %s: %w", key, err)
	}

	c.logger.WithField("key", key).Debug("cache hit")
	return true, nil
}

// Set stores a value with the default TTL
func (c *Client) Set(ctx context.Context, key string, value any) error {
	return c.SetWithTTL(ctx, key, value, c.ttl)
}

// SetWithTTL stores a value marshaled as JSON. A non-positive ttl uses the default.
func (c *Client) SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	key = c.key(key)

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed for key %s: %w", key, err)
	}

	c.logger.WithFields(logrus.Fields{"key": key, "ttl": ttl}).Debug("cache set")
	return nil
}

// Delete removes a key from cache
func (c *Client) Delete(ctx context.Context, key string) error {
	key = c.key(key)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed for key %s: %w", key, err)
	}

	c.logger.WithField("key", key).Debug("cache delete")
	return nil
}

// Generation returns the current cache generation; zero when never bumped.
func (c *Client) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.key("generation")).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation failed: %w", err)
	}
	return gen, nil
}

// BumpGeneration advances the generation, orphaning every entry keyed by
// an older one. Orphans expire through their TTL.
func (c *Client) BumpGeneration(ctx context.Context) error {
	gen, err := c.client.Incr(ctx, c.key("generation")).Result()
	if err != nil {
		return fmt.Errorf("redis bump generation failed: %w", err)
	}
	c.logger.WithField("generation", gen).Debug("cache generation bumped")
	return nil
}

func (c *Client) key(key string) string {
	return c.prefix + ":" + key
}
