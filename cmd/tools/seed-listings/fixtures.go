// cmd/tools/seed-listings/fixtures.go
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"listing-service/internal/repository"
)

// fixtureFile is the on-disk seed format.
type fixtureFile struct {
	Agent    int64     `yaml:"agent"`
	Listings []fixture `yaml:"listings"`
}

type fixture struct {
	ID          int64     `yaml:"id"`
	Agent       int64     `yaml:"agent,omitempty"`
	Title       string    `yaml:"title"`
	Description string    `yaml:"description,omitempty"`
	Price       float64   `yaml:"price"`
	Type        string    `yaml:"type"`
	Location    string    `yaml:"location"`
	Bedrooms    int       `yaml:"bedrooms"`
	Bathrooms   int       `yaml:"bathrooms"`
	Area        float64   `yaml:"area"`
	Photos      []string  `yaml:"photos,omitempty"`
	CreatedAt   time.Time `yaml:"created_at,omitempty"`
}

func readFixtures(path string) ([]repository.Property, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixtures: %w", err)
	}
	defer f.Close()
	return parseFixtures(f)
}

// parseFixtures decodes and validates a fixture document. Listings without an
// agent inherit the file-level one; ids must be positive and unique.
func parseFixtures(r io.Reader) ([]repository.Property, error) {
	var file fixtureFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}

	seen := make(map[int64]bool, len(file.Listings))
	props := make([]repository.Property, 0, len(file.Listings))
	for i, fx := range file.Listings {
		if fx.ID <= 0 {
			return nil, fmt.Errorf("listing #%d: id must be positive", i+1)
		}
		if seen[fx.ID] {
			return nil, fmt.Errorf("listing #%d: duplicate id %d", i+1, fx.ID)
		}
		seen[fx.ID] = true

		agent := fx.Agent
		if agent == 0 {
			agent = file.Agent
		}
		if agent <= 0 {
			return nil, fmt.Errorf("listing %d: agent is required", fx.ID)
		}

		p := repository.Property{
			ID:          fx.ID,
			AgentID:     agent,
			Title:       fx.Title,
			Description: fx.Description,
			Price:       fx.Price,
			Type:        fx.Type,
			Location:    fx.Location,
			Bedrooms:    fx.Bedrooms,
			Bathrooms:   fx.Bathrooms,
			Area:        fx.Area,
			Photos:      fx.Photos,
			CreatedAt:   fx.CreatedAt,
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("listing %d: %w", fx.ID, err)
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now().UTC()
		}
		props = append(props, p)
	}
	return props, nil
}

// writeFixtures renders props in the fixture format.
func writeFixtures(w io.Writer, props []repository.Property) error {
	file := fixtureFile{Listings: make([]fixture, 0, len(props))}
	for _, p := range props {
		file.Listings = append(file.Listings, fixture{
			ID:          p.ID,
			Agent:       p.AgentID,
			Title:       p.Title,
			Description: p.Description,
			Price:       p.Price,
			Type:        p.Type,
			Location:    p.Location,
			Bedrooms:    p.Bedrooms,
			Bathrooms:   p.Bathrooms,
			Area:        p.Area,
			Photos:      p.Photos,
			CreatedAt:   p.CreatedAt,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&file); err != nil {
		return err
	}
	return enc.Close()
}
