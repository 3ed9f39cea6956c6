// internal/inquiry/service.go
package inquiry

import (
	"context"
	"fmt"

	"listing-service/internal/common/logger"
	"listing-service/internal/repository"

	"github.com/google/uuid"
)

// CreateRequest is a buyer's new inquiry.
type CreateRequest struct {
	PropertyID int64  `json:"property_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Message    string `json:"message"`
}

// Service applies the access rules around inquiries: a buyer sees their
// own, an agent sees those on listings they own.
type Service struct {
	store    Store
	listings repository.Repository
	notifier Notifier
	logger   logger.Logger
}

func NewService(store Store, listings repository.Repository, notifier Notifier, log logger.Logger) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Service{store: store, listings: listings, notifier: notifier, logger: log}
}

// Create stores the inquiry and notifies the listing's agent. A failed
// notification is logged and does not fail the request.
func (s *Service) Create(ctx context.Context, buyerID int64, req CreateRequest) (*Inquiry, error) {
	inq := &Inquiry{
		PropertyID: req.PropertyID,
		BuyerID:    buyerID,
		Name:       req.Name,
		Email:      req.Email,
		Message:    req.Message,
	}
	if err := inq.Validate(); err != nil {
		return nil, err
	}

	prop, err := s.listings.Get(ctx, inq.PropertyID)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, inq); err != nil {
		return nil, err
	}

	if _, err := s.notifier.Notify(ctx, NewNotification(*inq, prop.Title, prop.AgentID)); err != nil {
		s.logger.Warn("Inquiry notification failed", map[string]interface{}{
			"inquiryId": inq.ID.String(),
			"error":     err.Error(),
		})
	}
	return inq, nil
}

// ForProperty lists a listing's inquiries for its owning agent.
func (s *Service) ForProperty(ctx context.Context, agentID, propertyID int64) ([]Inquiry, error) {
	prop, err := s.listings.Get(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if prop.AgentID != agentID {
		return nil, fmt.Errorf("%w: listing %d belongs to another agent", repository.ErrForbidden, propertyID)
	}
	return s.store.ListByProperties(ctx, []int64{propertyID})
}

// ForAgent lists inquiries across every listing the agent owns.
func (s *Service) ForAgent(ctx context.Context, agentID int64) ([]Inquiry, error) {
	props, err := s.listings.ListByAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(props))
	for _, p := range props {
		ids = append(ids, p.ID)
	}
	return s.store.ListByProperties(ctx, ids)
}

func (s *Service) ForBuyer(ctx context.Context, buyerID int64) ([]Inquiry, error) {
	return s.store.ListByBuyer(ctx, buyerID)
}

// Get returns an inquiry the user wrote or received.
func (s *Service) Get(ctx context.Context, userID int64, id uuid.UUID) (*Inquiry, error) {
	inq, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, userID, inq); err != nil {
		return nil, err
	}
	return inq, nil
}

func (s *Service) Delete(ctx context.Context, userID int64, id uuid.UUID) error {
	inq, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, userID, inq); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

func (s *Service) authorize(ctx context.Context, userID int64, inq *Inquiry) error {
	if inq.BuyerID == userID {
		return nil
	}
	prop, err := s.listings.Get(ctx, inq.PropertyID)
	if err == nil && prop.AgentID == userID {
		return nil
	}
	return fmt.Errorf("%w: inquiry %s", repository.ErrForbidden, inq.ID)
}
