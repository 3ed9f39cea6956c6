// internal/dashboard/service_test.go
package dashboard

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"listing-service/internal/common/logger"
	"listing-service/internal/events"
	"listing-service/internal/inquiry"
	"listing-service/internal/listing"
	"listing-service/internal/pagination"
	"listing-service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

const (
	agentID = int64(3)
	otherID = int64(9)
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

type failingRepository struct {
	repository.Repository
}

func (failingRepository) ListByAgent(ctx context.Context, agentID int64) ([]repository.Property, error) {
	return nil, errors.New("connection refused")
}

type fixture struct {
	svc       *Service
	repo      *repository.MemoryRepository
	store     *inquiry.MemoryStore
	publisher *recordingPublisher
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	mine := repository.DemoProperties(4, agentID)
	theirs := repository.DemoProperties(6, otherID)[4:]
	repo := repository.NewMemoryRepository(append(mine, theirs...)...)

	store := inquiry.NewMemoryStore()
	pub := &recordingPublisher{}
	log := logger.NewTestLogger(t)
	inquiries := inquiry.NewService(store, repo, inquiry.NopNotifier{}, log)

	svc := NewService(repo, inquiries, pub, nil, pagination.DefaultWindowOptions, log)
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return &fixture{svc: svc, repo: repo, store: store, publisher: pub, now: now}
}

func (f *fixture) addInquiry(t *testing.T, propertyID int64, age time.Duration) {
	require.NoError(t, f.store.Create(context.Background(), &inquiry.Inquiry{
		PropertyID: propertyID,
		BuyerID:    40,
		Message:    "Still available?",
		CreatedAt:  f.now.Add(-age),
	}))
}

// ==========================
// MyListings Tests
// ==========================

func TestService_MyListings(t *testing.T) {
	f := newFixture(t)
	state := listing.NewBrowseState(3)

	res, err := f.svc.MyListings(context.Background(), agentID, state)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Total)
	assert.Len(t, res.Items, 3)
	assert.Equal(t, 2, res.Meta.TotalPages)
	for _, r := range res.Items {
		assert.LessOrEqual(t, r.ID.Int(), 4.0)
	}
}

func TestService_MyListings_FilterAndClamp(t *testing.T) {
	f := newFixture(t)
	state := listing.NewBrowseState(10).
		WithFilter(listing.Filter{PropertyType: "apartment"}).
		WithPage(5)

	res, err := f.svc.MyListings(context.Background(), agentID, state)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Meta.CurrentPage)
	for _, r := range res.Items {
		assert.Equal(t, "apartment", r.PropertyType)
	}
}

func TestService_MyListings_NoListings(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.MyListings(context.Background(), 100, listing.NewBrowseState(5))
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.Empty(t, res.Items)
}

// ==========================
// Write Tests
// ==========================

func TestService_Create(t *testing.T) {
	f := newFixture(t)
	p := &repository.Property{
		AgentID:  otherID, // overwritten with the caller
		Title:    "Garden Loft",
		Price:    900000,
		Type:     "Apartment",
		Location: "Bandung",
	}

	require.NoError(t, f.svc.Create(context.Background(), agentID, p))

	assert.Equal(t, agentID, p.AgentID)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, events.ListingCreated, f.publisher.events[0].Type)
	assert.Equal(t, p.ID, f.publisher.events[0].ListingID)
}

func TestService_Create_Invalid(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Create(context.Background(), agentID, &repository.Property{Title: "x"})
	assert.ErrorIs(t, err, repository.ErrInvalidProperty)
	assert.Empty(t, f.publisher.events)
}

func TestService_Update(t *testing.T) {
	tests := []struct {
		name      string
		caller    int64
		wantErr   error
		wantEvent bool
	}{
		{name: "owner updates", caller: agentID, wantEvent: true},
		{name: "other agent forbidden", caller: otherID, wantErr: repository.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			p, err := f.repo.Get(context.Background(), 1)
			require.NoError(t, err)
			p.Price = 1

			err = f.svc.Update(context.Background(), tt.caller, p)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			if tt.wantEvent {
				require.Len(t, f.publisher.events, 1)
				assert.Equal(t, events.ListingUpdated, f.publisher.events[0].Type)
			} else {
				assert.Empty(t, f.publisher.events)
			}
		})
	}
}

func TestService_Delete(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Delete(context.Background(), agentID, 2))

	_, err := f.repo.Get(context.Background(), 2)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, events.ListingDeleted, f.publisher.events[0].Type)

	assert.ErrorIs(t, f.svc.Delete(context.Background(), agentID, 2), repository.ErrNotFound)
	assert.Len(t, f.publisher.events, 1)
}

// ==========================
// Stats Tests
// ==========================

func TestService_Stats(t *testing.T) {
	f := newFixture(t)
	f.addInquiry(t, 1, time.Hour)
	f.addInquiry(t, 2, 3*24*time.Hour)
	f.addInquiry(t, 2, 30*24*time.Hour)
	f.addInquiry(t, 5, time.Hour) // other agent's listing

	stats, err := f.svc.Stats(context.Background(), agentID)
	require.NoError(t, err)

	props, err := f.repo.ListByAgent(context.Background(), agentID)
	require.NoError(t, err)
	var sum float64
	for _, p := range props {
		sum += p.Price
	}

	assert.Equal(t, 4, stats.TotalProperties)
	assert.Equal(t, 3, stats.TotalInquiries)
	assert.Equal(t, 2, stats.NewInquiries)
	assert.Equal(t, math.Round(sum/4*100)/100, stats.AveragePrice)
}

func TestService_Stats_Empty(t *testing.T) {
	f := newFixture(t)

	stats, err := f.svc.Stats(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
}

func TestService_Stats_RepositoryError(t *testing.T) {
	f := newFixture(t)
	f.svc.repo = failingRepository{f.repo}

	_, err := f.svc.Stats(context.Background(), agentID)
	assert.ErrorContains(t, err, "connection refused")
}

func TestService_Overview(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 7; i++ {
		f.addInquiry(t, 1, time.Duration(i)*time.Hour)
	}

	ov, err := f.svc.Overview(context.Background(), agentID, listing.NewBrowseState(2))
	require.NoError(t, err)

	assert.Equal(t, 7, ov.Stats.TotalInquiries)
	assert.Len(t, ov.RecentInquiries, recentInquiries)
	assert.True(t, ov.RecentInquiries[0].CreatedAt.After(ov.RecentInquiries[1].CreatedAt))
	assert.Len(t, ov.Listings.Items, 2)
	assert.Equal(t, 4, ov.Listings.Total)
}
