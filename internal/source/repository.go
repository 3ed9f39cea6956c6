// internal/source/repository.go
package source

import (
	"context"
	"fmt"

	"listing-service/internal/listing"
	"listing-service/internal/repository"
)

// RepositorySource serves the service's own stored listings in the backend
// shape, so browse queries run the same normalization path as remote data.
type RepositorySource struct {
	repo repository.Repository
}

func NewRepositorySource(repo repository.Repository) *RepositorySource {
	return &RepositorySource{repo: repo}
}

func (s *RepositorySource) Fetch(ctx context.Context) ([]listing.Raw, error) {
	props, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	return repository.ToRaws(props), nil
}
