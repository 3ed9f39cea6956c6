// internal/favorites/store_test.go
package favorites

import (
	"context"
	"errors"
	"testing"

	"listing-service/internal/common/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStore(client, logger.NewTestLogger(t)), mr
}

// ==========================
// Core Functionality Tests
// ==========================

func TestStore_AddAndList(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	require.NoError(t, store.Add(ctx, 1, 12))
	require.NoError(t, store.Add(ctx, 1, 3))
	require.NoError(t, store.Add(ctx, 2, 12))

	ids, err := store.List(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 12}, ids)

	members, err := mr.SMembers("favorites:1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"3", "12"}, members)
}

func TestStore_AddDuplicate(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.Add(ctx, 1, 12))
	assert.ErrorIs(t, store.Add(ctx, 1, 12), ErrAlreadyFavorite)
}

func TestStore_RemoveAndCheck(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	require.NoError(t, store.Add(ctx, 1, 12))

	ok, err := store.IsFavorite(ctx, 1, 12)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Remove(ctx, 1, 12))
	ok, err = store.IsFavorite(ctx, 1, 12)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.ErrorIs(t, store.Remove(ctx, 1, 12), ErrNotFavorite)
}

func TestStore_ListEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	ids, err := store.List(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestStore_ListSkipsMalformed(t *testing.T) {
	store, mr := newTestStore(t)
	_, err := mr.SAdd("favorites:1", "7", "garbage")
	require.NoError(t, err)

	ids, err := store.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, ids)
}

func TestStore_InvalidUser(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	assert.ErrorIs(t, store.Add(ctx, 0, 1), ErrInvalidUser)
	_, err := store.List(ctx, -1)
	assert.ErrorIs(t, err, ErrInvalidUser)
}

// ==========================
// Error Path Tests
// ==========================

func TestStore_RedisErrors(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	store := NewStore(client, logger.NewNoOpLogger())

	mock.ExpectSAdd("favorites:1", int64(12)).SetErr(errors.New("READONLY"))
	assert.ErrorContains(t, store.Add(ctx, 1, 12), "READONLY")

	mock.ExpectSIsMember("favorites:1", int64(12)).SetErr(errors.New("timeout"))
	_, err := store.IsFavorite(ctx, 1, 12)
	assert.ErrorContains(t, err, "timeout")

	assert.NoError(t, mock.ExpectationsWereMet())
}
