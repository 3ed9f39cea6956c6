// internal/catalog/service.go
package catalog

import (
	"context"
	"time"

	"listing-service/internal/common/logger"
	"listing-service/internal/common/metrics"
	"listing-service/internal/listing"
	"listing-service/internal/pagination"
	"listing-service/internal/search"
	"listing-service/internal/source"
)

// Entry points, used as a metric label.
const (
	EntryAPI    = "api"
	EntryWorker = "worker"
	EntrySearch = "search"
)

// Page is one browse page plus the load status the caller should surface.
type Page struct {
	listing.Result
	Fallback bool   `json:"fallback"`
	Message  string `json:"message,omitempty"`
}

// Config tunes the public browse view.
type Config struct {
	Window      pagination.WindowOptions
	SnapshotTTL time.Duration
}

// Service is the public listing catalogue: the browse pipeline over the
// loaded snapshot and, when an index is configured, over the search index.
type Service struct {
	loader     *source.Loader
	normalizer *listing.Normalizer
	index      *search.Index
	config     Config
	logger     logger.Logger
}

// NewService builds a catalogue. index may be nil.
func NewService(loader *source.Loader, normalizer *listing.Normalizer, index *search.Index, cfg Config, log logger.Logger) *Service {
	if normalizer == nil {
		normalizer = listing.DefaultNormalizer()
	}
	return &Service{
		loader:     loader,
		normalizer: normalizer,
		index:      index,
		config:     cfg,
		logger:     log,
	}
}

// Browse loads the collection, reusing a snapshot younger than the configured
// TTL, and runs the pipeline for state. A failed source still yields a page
// of demo data with Fallback set.
func (s *Service) Browse(ctx context.Context, entry string, state listing.BrowseState) (*Page, error) {
	start := time.Now()
	defer func() {
		metrics.ListingQueryDuration.WithLabelValues(entry).Observe(time.Since(start).Seconds())
	}()
	metrics.ListingQueries.WithLabelValues(entry, string(state.Sort)).Inc()

	snap, err := s.loader.Get(ctx, s.config.SnapshotTTL)
	if err != nil {
		return nil, err
	}

	return &Page{
		Result:   s.normalizer.Browse(snap.Raw, state, s.config.Window),
		Fallback: snap.Fallback,
		Message:  snap.Message,
	}, nil
}

// Refresh forces a new load, discarding the cached snapshot.
func (s *Service) Refresh(ctx context.Context) (*source.Snapshot, error) {
	return s.loader.Load(ctx)
}

// SearchEnabled reports whether Search can be used.
func (s *Service) SearchEnabled() bool {
	return s.index != nil
}

// Search runs the same filter, sort and pagination against the search index.
func (s *Service) Search(ctx context.Context, state listing.BrowseState) (*Page, error) {
	if s.index == nil {
		return nil, search.ErrSearchQueryFailed
	}
	start := time.Now()
	defer func() {
		metrics.ListingQueryDuration.WithLabelValues(EntrySearch).Observe(time.Since(start).Seconds())
	}()
	metrics.ListingQueries.WithLabelValues(EntrySearch, string(state.Sort)).Inc()

	res, err := s.index.Browse(ctx, state, s.config.Window)
	if err != nil {
		return nil, err
	}
	return &Page{Result: res}, nil
}

// Normalizer returns the alias table in use.
func (s *Service) Normalizer() *listing.Normalizer {
	return s.normalizer
}
