// internal/dashboard/service.go
package dashboard

import (
	"context"
	"math"
	"time"

	"listing-service/internal/common/logger"
	"listing-service/internal/events"
	"listing-service/internal/inquiry"
	"listing-service/internal/listing"
	"listing-service/internal/pagination"
	"listing-service/internal/repository"

	"golang.org/x/sync/errgroup"
)

const (
	// NewInquiryWindow is how far back an inquiry still counts as new.
	NewInquiryWindow = 7 * 24 * time.Hour
	recentInquiries  = 5
)

// Stats summarises an agent's portfolio.
type Stats struct {
	TotalProperties int     `json:"totalProperties"`
	TotalInquiries  int     `json:"totalInquiries"`
	NewInquiries    int     `json:"newInquiries"`
	AveragePrice    float64 `json:"averagePrice"`
}

// Overview is everything the agent dashboard shows at once.
type Overview struct {
	Stats           Stats             `json:"stats"`
	Listings        listing.Result    `json:"listings"`
	RecentInquiries []inquiry.Inquiry `json:"recentInquiries"`
}

// Service is the agent-facing side of listings: the agent's own browse view,
// listing writes and portfolio stats.
type Service struct {
	repo       repository.Repository
	inquiries  *inquiry.Service
	publisher  events.Publisher
	normalizer *listing.Normalizer
	window     pagination.WindowOptions
	logger     logger.Logger
	now        func() time.Time
}

func NewService(
	repo repository.Repository,
	inquiries *inquiry.Service,
	publisher events.Publisher,
	normalizer *listing.Normalizer,
	window pagination.WindowOptions,
	log logger.Logger,
) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if normalizer == nil {
		normalizer = listing.DefaultNormalizer()
	}
	return &Service{
		repo:       repo,
		inquiries:  inquiries,
		publisher:  publisher,
		normalizer: normalizer,
		window:     window,
		logger:     log,
		now:        time.Now,
	}
}

// MyListings runs the browse pipeline over the agent's own listings.
func (s *Service) MyListings(ctx context.Context, agentID int64, state listing.BrowseState) (listing.Result, error) {
	props, err := s.repo.ListByAgent(ctx, agentID)
	if err != nil {
		return listing.Result{}, err
	}
	return s.normalizer.Browse(repository.ToRaws(props), state, s.window), nil
}

func (s *Service) Create(ctx context.Context, agentID int64, p *repository.Property) error {
	p.AgentID = agentID
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	s.logger.Info("Listing created", map[string]interface{}{"listingId": p.ID, "agentId": agentID})
	return s.publisher.Publish(ctx, events.NewEvent(events.ListingCreated, p.ID, agentID))
}

func (s *Service) Update(ctx context.Context, agentID int64, p *repository.Property) error {
	if err := s.repo.Update(ctx, agentID, p); err != nil {
		return err
	}
	return s.publisher.Publish(ctx, events.NewEvent(events.ListingUpdated, p.ID, agentID))
}

func (s *Service) Delete(ctx context.Context, agentID, id int64) error {
	if err := s.repo.Delete(ctx, agentID, id); err != nil {
		return err
	}
	s.logger.Info("Listing deleted", map[string]interface{}{"listingId": id, "agentId": agentID})
	return s.publisher.Publish(ctx, events.NewEvent(events.ListingDeleted, id, agentID))
}

// Stats loads listings and inquiries concurrently.
func (s *Service) Stats(ctx context.Context, agentID int64) (Stats, error) {
	stats, _, err := s.load(ctx, agentID)
	return stats, err
}

// Overview returns the stats, the first page of the agent's listings as
// selected by state, and the most recent inquiries.
func (s *Service) Overview(ctx context.Context, agentID int64, state listing.BrowseState) (*Overview, error) {
	stats, inqs, err := s.load(ctx, agentID)
	if err != nil {
		return nil, err
	}
	res, err := s.MyListings(ctx, agentID, state)
	if err != nil {
		return nil, err
	}
	return &Overview{
		Stats:           stats,
		Listings:        res,
		RecentInquiries: inqs[:min(len(inqs), recentInquiries)],
	}, nil
}

func (s *Service) load(ctx context.Context, agentID int64) (Stats, []inquiry.Inquiry, error) {
	var (
		props []repository.Property
		inqs  []inquiry.Inquiry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		props, err = s.repo.ListByAgent(gctx, agentID)
		return err
	})
	g.Go(func() error {
		var err error
		inqs, err = s.inquiries.ForAgent(gctx, agentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, nil, err
	}

	stats := Stats{TotalProperties: len(props), TotalInquiries: len(inqs)}
	if len(props) > 0 {
		var sum float64
		for _, p := range props {
			sum += p.Price
		}
		stats.AveragePrice = math.Round(sum/float64(len(props))*100) / 100
	}
	cutoff := s.now().Add(-NewInquiryWindow)
	for _, inq := range inqs {
		if inq.CreatedAt.After(cutoff) {
			stats.NewInquiries++
		}
	}
	return stats, inqs, nil
}
