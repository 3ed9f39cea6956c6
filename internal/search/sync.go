// internal/search/sync.go
package search

import (
	"context"
	"errors"

	"listing-service/internal/events"
	"listing-service/internal/listing"
	"listing-service/internal/repository"
)

// Syncer keeps the index in step with the repository as change events arrive.
type Syncer struct {
	index *Index
	repo  repository.Repository
}

func NewSyncer(index *Index, repo repository.Repository) *Syncer {
	return &Syncer{index: index, repo: repo}
}

// Handle applies one change event. A listing that is gone by the time a
// create or update arrives is removed from the index.
func (s *Syncer) Handle(ctx context.Context, e events.Event) error {
	id := listing.IntID(e.ListingID)
	if e.Type == events.ListingDeleted {
		return s.index.Delete(ctx, id)
	}

	p, err := s.repo.Get(ctx, e.ListingID)
	if errors.Is(err, repository.ErrNotFound) {
		return s.index.Delete(ctx, id)
	}
	if err != nil {
		return err
	}
	rec := listing.DefaultNormalizer().Normalize(p.ToRaw(), 0)
	return s.index.IndexRecords(ctx, []listing.Record{rec})
}

// Reindex loads every stored listing into the index.
func (s *Syncer) Reindex(ctx context.Context) (int, error) {
	props, err := s.repo.List(ctx)
	if err != nil {
		return 0, err
	}
	records := listing.DefaultNormalizer().NormalizeAll(repository.ToRaws(props))
	if err := s.index.IndexRecords(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}
