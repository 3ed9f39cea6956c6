// internal/repository/cached.go
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"listing-service/internal/common/logger"
	"listing-service/internal/common/metrics"

	"github.com/karlseguin/ccache/v3"
	"github.com/redis/go-redis/v9"
)

// CacheConfig sizes the two cache tiers.
type CacheConfig struct {
	L1Size int64
	TTL    time.Duration
}

// CachedRepository fronts listing detail reads with a process-local cache
// and, when a redis client is given, a shared redis tier. Writes go to the
// underlying repository and evict both tiers.
type CachedRepository struct {
	Repository
	local  *ccache.Cache[*Property]
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedRepository(inner Repository, rdb *redis.Client, cfg CacheConfig, log logger.Logger) *CachedRepository {
	size := cfg.L1Size
	if size <= 0 {
		size = 1000
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedRepository{
		Repository: inner,
		local:      ccache.New(ccache.Configure[*Property]().MaxSize(size)),
		redis:      rdb,
		ttl:        ttl,
		logger:     log,
	}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("listing:%d", id)
}

func (c *CachedRepository) Get(ctx context.Context, id int64) (*Property, error) {
	key := cacheKey(id)

	if item := c.local.Get(key); item != nil && !item.Expired() {
		metrics.ListingCacheHits.WithLabelValues("local", "hit").Inc()
		p := clone(*item.Value())
		return &p, nil
	}
	metrics.ListingCacheHits.WithLabelValues("local", "miss").Inc()

	if c.redis != nil {
		data, err := c.redis.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var p Property
			if err := json.Unmarshal(data, &p); err == nil {
				metrics.ListingCacheHits.WithLabelValues("redis", "hit").Inc()
				c.local.Set(key, &p, c.ttl)
				out := clone(p)
				return &out, nil
			}
			c.logger.Warn("Discarding unreadable cached listing", map[string]interface{}{"key": key})
		case errors.Is(err, redis.Nil):
			metrics.ListingCacheHits.WithLabelValues("redis", "miss").Inc()
		default:
			metrics.ListingCacheHits.WithLabelValues("redis", "error").Inc()
			c.logger.Warn("Redis cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}

	p, err := c.Repository.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, p)
	return p, nil
}

func (c *CachedRepository) store(ctx context.Context, key string, p *Property) {
	cp := clone(*p)
	c.local.Set(key, &cp, c.ttl)

	if c.redis == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Redis cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}

func (c *CachedRepository) evict(ctx context.Context, ids ...int64) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		key := cacheKey(id)
		c.local.Delete(key)
		keys = append(keys, key)
	}
	if c.redis == nil || len(keys) == 0 {
		return
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("Redis cache evict failed", map[string]interface{}{"keys": keys, "error": err.Error()})
	}
}

func (c *CachedRepository) Update(ctx context.Context, agentID int64, p *Property) error {
	if err := c.Repository.Update(ctx, agentID, p); err != nil {
		return err
	}
	c.evict(ctx, p.ID)
	return nil
}

func (c *CachedRepository) Delete(ctx context.Context, agentID, id int64) error {
	if err := c.Repository.Delete(ctx, agentID, id); err != nil {
		return err
	}
	c.evict(ctx, id)
	return nil
}

func (c *CachedRepository) Save(ctx context.Context, props []Property) error {
	if err := c.Repository.Save(ctx, props); err != nil {
		return err
	}
	ids := make([]int64, 0, len(props))
	for _, p := range props {
		ids = append(ids, p.ID)
	}
	c.evict(ctx, ids...)
	return nil
}

// Close stops the local cache's background worker.
func (c *CachedRepository) Close() {
	c.local.Stop()
}
