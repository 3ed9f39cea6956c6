// internal/repository/property.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"listing-service/internal/listing"
)

var (
	ErrNotFound        = errors.New("LISTING_NOT_FOUND")
	ErrInvalidProperty = errors.New("INVALID_LISTING")
	ErrForbidden       = errors.New("FORBIDDEN")
)

// Property types accepted by the store.
const (
	TypeHouse     = "house"
	TypeApartment = "apartment"
)

// Property is an agent-owned listing as stored.
type Property struct {
	ID          int64     `json:"id"`
	AgentID     int64     `json:"agent_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Type        string    `json:"type"`
	Location    string    `json:"location"`
	Bedrooms    int       `json:"bedrooms"`
	Bathrooms   int       `json:"bathrooms"`
	Area        float64   `json:"area"`
	Photos      []string  `json:"photos,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks the fields the store requires and normalizes Type to lower case.
func (p *Property) Validate() error {
	p.Title = strings.TrimSpace(p.Title)
	p.Location = strings.TrimSpace(p.Location)
	p.Type = strings.ToLower(strings.TrimSpace(p.Type))

	switch {
	case p.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidProperty)
	case p.Location == "":
		return fmt.Errorf("%w: location is required", ErrInvalidProperty)
	case p.Type != TypeHouse && p.Type != TypeApartment:
		return fmt.Errorf("%w: type must be %s or %s", ErrInvalidProperty, TypeHouse, TypeApartment)
	case p.Price < 0:
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProperty)
	case p.Bedrooms < 0 || p.Bathrooms < 0 || p.Area < 0:
		return fmt.Errorf("%w: bedrooms, bathrooms and area must not be negative", ErrInvalidProperty)
	}
	return nil
}

// ToRaw renders the property in the backend's JSON shape, which the listing
// normalizer understands.
func (p Property) ToRaw() listing.Raw {
	photos := make([]interface{}, 0, len(p.Photos))
	for _, url := range p.Photos {
		photos = append(photos, map[string]interface{}{"property_id": p.ID, "photo_url": url})
	}

	raw := listing.Raw{
		"id":          p.ID,
		"agent_id":    p.AgentID,
		"title":       p.Title,
		"description": p.Description,
		"price":       p.Price,
		"type":        p.Type,
		"location":    p.Location,
		"bedrooms":    p.Bedrooms,
		"bathrooms":   p.Bathrooms,
		"area":        p.Area,
		"photos":      photos,
	}
	if !p.CreatedAt.IsZero() {
		raw["created_at"] = p.CreatedAt.UTC().Format(time.RFC3339)
	}
	if len(p.Photos) > 0 {
		raw["image_url"] = p.Photos[0]
	}
	return raw
}

// ToRaws converts a batch.
func ToRaws(props []Property) []listing.Raw {
	out := make([]listing.Raw, 0, len(props))
	for _, p := range props {
		out = append(out, p.ToRaw())
	}
	return out
}

// Repository stores agent listings.
type Repository interface {
	List(ctx context.Context) ([]Property, error)
	ListByAgent(ctx context.Context, agentID int64) ([]Property, error)
	Get(ctx context.Context, id int64) (*Property, error)
	Create(ctx context.Context, p *Property) error
	// Update replaces p.ID's fields. Only the owning agent may update.
	Update(ctx context.Context, agentID int64, p *Property) error
	Delete(ctx context.Context, agentID, id int64) error
	// Save upserts a batch as-is, keeping ids and owners. Used for seeding.
	Save(ctx context.Context, props []Property) error
}

// DemoProperties returns the demo dataset as stored properties owned by agentID.
func DemoProperties(n int, agentID int64) []Property {
	records := listing.DefaultNormalizer().NormalizeAll(listing.DemoRaw(n))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	out := make([]Property, 0, len(records))
	for i, r := range records {
		out = append(out, Property{
			ID:        int64(r.ID.Int()),
			AgentID:   agentID,
			Title:     r.Title,
			Price:     r.Price,
			Type:      strings.ToLower(r.PropertyType),
			Location:  r.Location,
			Bedrooms:  r.Bedrooms,
			Bathrooms: r.Bathrooms,
			Area:      r.Area,
			Photos:    []string{r.PhotoURL},
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	return out
}
