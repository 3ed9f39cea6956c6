// internal/catalog/service_test.go
package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"listing-service/internal/common/logger"
	"listing-service/internal/common/retry"
	"listing-service/internal/listing"
	"listing-service/internal/pagination"
	"listing-service/internal/search"
	"listing-service/internal/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, src source.Source, ttl time.Duration) *Service {
	log := logger.NewTestLogger(t)
	loader := source.NewLoader(src, source.LoaderConfig{Name: "test", Retry: retry.Policy{MaxAttempts: 1}}, log)
	return NewService(loader, nil, nil, Config{Window: pagination.DefaultWindowOptions, SnapshotTTL: ttl}, log)
}

func TestService_Browse(t *testing.T) {
	svc := newTestService(t, source.StaticSource(listing.DemoRaw(20)), time.Minute)
	state := listing.NewBrowseState(6).WithSort(listing.SortPriceAsc).WithPage(2)

	page, err := svc.Browse(context.Background(), EntryAPI, state)
	require.NoError(t, err)

	assert.False(t, page.Fallback)
	assert.Empty(t, page.Message)
	assert.Equal(t, 20, page.Total)
	assert.Len(t, page.Items, 6)
	assert.Equal(t, 2, page.Meta.CurrentPage)
	for i := 1; i < len(page.Items); i++ {
		assert.LessOrEqual(t, page.Items[i-1].Price, page.Items[i].Price)
	}
}

func TestService_Browse_Fallback(t *testing.T) {
	failing := source.Func(func(ctx context.Context) ([]listing.Raw, error) {
		return nil, errors.New("connection refused")
	})
	svc := newTestService(t, failing, time.Minute)

	page, err := svc.Browse(context.Background(), EntryWorker, listing.NewBrowseState(6))
	require.NoError(t, err)

	assert.True(t, page.Fallback)
	assert.Equal(t, source.FallbackMessage, page.Message)
	assert.Equal(t, listing.DemoSize, page.Total)
}

func TestService_Browse_ReusesSnapshot(t *testing.T) {
	var fetches atomic.Int32
	src := source.Func(func(ctx context.Context) ([]listing.Raw, error) {
		fetches.Add(1)
		return listing.DemoRaw(3), nil
	})
	svc := newTestService(t, src, time.Minute)

	for i := 0; i < 3; i++ {
		_, err := svc.Browse(context.Background(), EntryAPI, listing.NewBrowseState(6))
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), fetches.Load())

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), fetches.Load())
}

func TestService_Browse_CanceledContext(t *testing.T) {
	svc := newTestService(t, source.StaticSource(listing.DemoRaw(3)), 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Browse(ctx, EntryAPI, listing.NewBrowseState(6))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_Search_Disabled(t *testing.T) {
	svc := newTestService(t, source.StaticSource(nil), 0)

	assert.False(t, svc.SearchEnabled())
	_, err := svc.Search(context.Background(), listing.NewBrowseState(6))
	assert.ErrorIs(t, err, search.ErrSearchQueryFailed)
}
