// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"listing-service/internal/common/config"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPoolSize    = 10
	defaultRedisMinIdle     = 2
	defaultRedisDialTimeout = 5 * time.Second
	defaultRedisReadTimeout = 3 * time.Second
)

// RedisClient holds the connection pool shared by the listing cache and
// the favorites store.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis builds a pool from cfg. It does not dial; call Ping.
func NewRedis(cfg config.RedisConfig) (*RedisClient, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	return &RedisClient{Client: redis.NewClient(opts)}, nil
}

func redisOptions(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is empty")
	}
	if cfg.DB < 0 {
		return nil, fmt.Errorf("redis db must not be negative, got %d", cfg.DB)
	}

	opts := &redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  config.GetDuration(cfg.DialTimeout),
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = defaultRedisPoolSize
	}
	if opts.MinIdleConns <= 0 {
		opts.MinIdleConns = defaultRedisMinIdle
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = defaultRedisDialTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultRedisReadTimeout
	}
	opts.WriteTimeout = opts.ReadTimeout
	return opts, nil
}

// Ping checks the server answers.
func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

func (c *RedisClient) GetClient() *redis.Client {
	return c.Client
}
