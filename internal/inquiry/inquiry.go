// internal/inquiry/inquiry.go
package inquiry

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInquiry  = errors.New("INVALID_INQUIRY")
	ErrInquiryNotFound = errors.New("INQUIRY_NOT_FOUND")
)

// maxMessageLength bounds a buyer's message.
const maxMessageLength = 2000

// Inquiry is a buyer's message about a listing.
type Inquiry struct {
	ID         uuid.UUID `json:"id"`
	PropertyID int64     `json:"property_id"`
	BuyerID    int64     `json:"buyer_id"`
	Name       string    `json:"name,omitempty"`
	Email      string    `json:"email,omitempty"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// Validate trims the free-text fields and checks what a stored inquiry needs.
func (i *Inquiry) Validate() error {
	i.Name = strings.TrimSpace(i.Name)
	i.Email = strings.TrimSpace(i.Email)
	i.Message = strings.TrimSpace(i.Message)

	switch {
	case i.PropertyID <= 0:
		return fmt.Errorf("%w: property_id is required", ErrInvalidInquiry)
	case i.Message == "":
		return fmt.Errorf("%w: message is required", ErrInvalidInquiry)
	case len(i.Message) > maxMessageLength:
		return fmt.Errorf("%w: message exceeds %d characters", ErrInvalidInquiry, maxMessageLength)
	}
	if i.Email != "" {
		if _, err := mail.ParseAddress(i.Email); err != nil {
			return fmt.Errorf("%w: invalid email %q", ErrInvalidInquiry, i.Email)
		}
	}
	return nil
}

// Store persists inquiries.
type Store interface {
	Create(ctx context.Context, inq *Inquiry) error
	Get(ctx context.Context, id uuid.UUID) (*Inquiry, error)
	// ListByProperties returns inquiries for any of the given listings, newest first.
	ListByProperties(ctx context.Context, propertyIDs []int64) ([]Inquiry, error)
	ListByBuyer(ctx context.Context, buyerID int64) ([]Inquiry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// MemoryStore is a Store for the in-process deployment.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]Inquiry
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[uuid.UUID]Inquiry), now: time.Now}
}

func (m *MemoryStore) Create(ctx context.Context, inq *Inquiry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inq.ID == uuid.Nil {
		inq.ID = uuid.New()
	}
	if inq.CreatedAt.IsZero() {
		inq.CreatedAt = m.now().UTC()
	}
	m.byID[inq.ID] = *inq
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*Inquiry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inq, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInquiryNotFound, id)
	}
	return &inq, nil
}

func (m *MemoryStore) ListByProperties(ctx context.Context, propertyIDs []int64) ([]Inquiry, error) {
	return m.filter(func(i Inquiry) bool { return slices.Contains(propertyIDs, i.PropertyID) }), nil
}

func (m *MemoryStore) ListByBuyer(ctx context.Context, buyerID int64) ([]Inquiry, error) {
	return m.filter(func(i Inquiry) bool { return i.BuyerID == buyerID }), nil
}

func (m *MemoryStore) filter(keep func(Inquiry) bool) []Inquiry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Inquiry{}
	for _, inq := range m.byID {
		if keep(inq) {
			out = append(out, inq)
		}
	}
	slices.SortFunc(out, func(a, b Inquiry) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return out
}

func (m *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return fmt.Errorf("%w: %s", ErrInquiryNotFound, id)
	}
	delete(m.byID, id)
	return nil
}
