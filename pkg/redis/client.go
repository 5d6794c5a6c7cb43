package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Payphone-Digital/openpayments/config"
	"github.com/Payphone-Digital/openpayments/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

type Client struct {
	rdb *redis.Client
}

// NewClient connects using the Redis section of cfg and fails if the server does not answer.
func NewClient(cfg *config.Config) (*Client, error) {
	client, err := NewClientWithOptions(&redis.Options{
		Addr:         cfg.RedisAddress(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.Database,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		logger.GetLogger().Error("Failed to connect to Redis",
			zap.String("address", cfg.RedisAddress()),
			zap.Error(err),
		)
		return nil, err
	}

	logger.GetLogger().Info("Successfully connected to Redis",
		zap.String("address", cfg.RedisAddress()),
		zap.Int("database", cfg.Redis.Database),
	)
	return client, nil
}

func NewClientWithOptions(opts *redis.Options) (*Client, error) {
	client := &Client{rdb: redis.NewClient(opts)}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// GetInt64 returns the integer stored at key. found is false on a miss.
func (c *Client) GetInt64(ctx context.Context, key string) (value int64, found bool, err error) {
	raw, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get cache: %w", err)
	}

	value, err = strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("cache value at %s is not an integer: %w", key, err)
	}
	return value, true, nil
}

// SetInt64 stores value at key for ttl.
func (c *Client) SetInt64(ctx context.Context, key string, value int64, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Delete removes cache entries.
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache: %w", err)
	}
	return nil
}

// DeleteByPattern removes every key matching pattern, walking the keyspace with SCAN.
func (c *Client) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan keys: %w", err)
		}
		if err := c.Delete(ctx, keys...); err != nil {
			return deleted, err
		}
		deleted += len(keys)

		cursor = next
		if cursor == 0 {
			break
		}
	}

	logger.GetLogger().Info("Cache deleted by pattern",
		zap.String("pattern", pattern),
		zap.Int("deleted_count", deleted),
	)
	return deleted, nil
}
