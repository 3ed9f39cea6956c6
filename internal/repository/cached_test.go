// internal/repository/cached_test.go
package repository

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"listing-service/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRepository struct {
	Repository
	gets atomic.Int32
}

func (c *countingRepository) Get(ctx context.Context, id int64) (*Property, error) {
	c.gets.Add(1)
	return c.Repository.Get(ctx, id)
}

func newCachedRepo(t *testing.T, withRedis bool) (*CachedRepository, *countingRepository, *miniredis.Miniredis) {
	inner := &countingRepository{Repository: NewMemoryRepository(DemoProperties(3, 1)...)}

	var (
		mr  *miniredis.Miniredis
		rdb *redis.Client
	)
	if withRedis {
		mr = miniredis.RunT(t)
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { rdb.Close() })
	}

	cached := NewCachedRepository(inner, rdb, CacheConfig{L1Size: 10, TTL: time.Minute}, logger.NewTestLogger(t))
	t.Cleanup(cached.Close)
	return cached, inner, mr
}

func TestCachedRepository_LocalHit(t *testing.T) {
	ctx := context.Background()
	repo, inner, _ := newCachedRepo(t, false)

	first, err := repo.Get(ctx, 2)
	require.NoError(t, err)
	second, err := repo.Get(ctx, 2)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), inner.gets.Load())
}

func TestCachedRepository_WritesThroughToRedis(t *testing.T) {
	ctx := context.Background()
	repo, inner, mr := newCachedRepo(t, true)

	_, err := repo.Get(ctx, 2)
	require.NoError(t, err)
	assert.True(t, mr.Exists("listing:2"))

	ttl := mr.TTL("listing:2")
	assert.Equal(t, time.Minute, ttl)

	// a fresh process only has the redis tier
	other := NewCachedRepository(inner, redis.NewClient(&redis.Options{Addr: mr.Addr()}), CacheConfig{}, logger.NewNoOpLogger())
	defer other.Close()

	got, err := other.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.ID)
	assert.Equal(t, int32(1), inner.gets.Load())
}

func TestCachedRepository_UpdateEvicts(t *testing.T) {
	ctx := context.Background()
	repo, inner, mr := newCachedRepo(t, true)

	_, err := repo.Get(ctx, 2)
	require.NoError(t, err)

	upd, err := repo.Get(ctx, 2)
	require.NoError(t, err)
	upd.Title = "Repainted"
	require.NoError(t, repo.Update(ctx, 1, upd))
	assert.False(t, mr.Exists("listing:2"))

	got, err := repo.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Repainted", got.Title)
	assert.Equal(t, int32(2), inner.gets.Load())
}

func TestCachedRepository_DeleteEvicts(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newCachedRepo(t, true)

	_, err := repo.Get(ctx, 3)
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, 1, 3))

	_, err = repo.Get(ctx, 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCachedRepository_RedisDownFallsThrough(t *testing.T) {
	ctx := context.Background()
	repo, inner, mr := newCachedRepo(t, true)
	mr.Close()

	got, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, int32(1), inner.gets.Load())
}

func TestCachedRepository_FailedWriteKeepsCache(t *testing.T) {
	ctx := context.Background()
	repo, inner, _ := newCachedRepo(t, false)

	_, err := repo.Get(ctx, 1)
	require.NoError(t, err)

	upd := newProperty(1, "Hijack")
	upd.ID = 1
	assert.ErrorIs(t, repo.Update(ctx, 99, upd), ErrForbidden)

	_, err = repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), inner.gets.Load())
}
