// internal/common/database/database_test.go
package database

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"listing-service/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresClient_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for range schema {
		mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, NewPostgresFromDB(db).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClient_EnsureSchemaFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS properties").WillReturnError(errors.New("permission denied"))

	err = NewPostgresFromDB(db).EnsureSchema(context.Background())
	assert.ErrorContains(t, err, "permission denied")
}

func TestNewPostgres_DoesNotDial(t *testing.T) {
	pg, err := NewPostgres(config.PostgresConfig{Host: "localhost", Port: 1, Database: "x", User: "u", SSLMode: "disable", MaxConnections: 2, MaxIdle: 1})
	require.NoError(t, err)
	assert.NotNil(t, pg.GetDB())
	assert.NoError(t, pg.Close())
}

func TestRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	rc, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer rc.Close()

	assert.NoError(t, rc.Ping(context.Background()))

	mr.Close()
	assert.Error(t, rc.Ping(context.Background()))
}

func TestNewRedis_RequiresAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.Error(t, err)

	_, err = NewRedis(config.RedisConfig{Address: "localhost:6379", DB: -1})
	assert.Error(t, err)
}

func TestRedisOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		opts, err := redisOptions(config.RedisConfig{Address: "localhost:6379"})
		require.NoError(t, err)
		assert.Equal(t, defaultRedisPoolSize, opts.PoolSize)
		assert.Equal(t, defaultRedisMinIdle, opts.MinIdleConns)
		assert.Equal(t, defaultRedisDialTimeout, opts.DialTimeout)
		assert.Equal(t, defaultRedisReadTimeout, opts.ReadTimeout)
		assert.Equal(t, opts.ReadTimeout, opts.WriteTimeout)
	})

	t.Run("configured", func(t *testing.T) {
		opts, err := redisOptions(config.RedisConfig{
			Address:      "cache:6379",
			DB:           2,
			PoolSize:     40,
			MinIdleConns: 8,
			DialTimeout:  1500,
			ReadTimeout:  250,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, opts.DB)
		assert.Equal(t, 40, opts.PoolSize)
		assert.Equal(t, 8, opts.MinIdleConns)
		assert.Equal(t, 1500*time.Millisecond, opts.DialTimeout)
		assert.Equal(t, 250*time.Millisecond, opts.WriteTimeout)
	})
}

func TestElasticsearchClient_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	es, err := NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
	require.NoError(t, err)
	assert.NoError(t, es.Ping(context.Background()))
}
