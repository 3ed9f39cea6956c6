// internal/listing/filter.go
package listing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidFilterFormat is returned when a filter value cannot be parsed.
var ErrInvalidFilterFormat = errors.New("INVALID_FILTER_FORMAT")

// Filter narrows a listing collection. Zero-valued fields impose no constraint.
type Filter struct {
	NameQuery    string   `json:"nameQuery,omitempty"`
	MinPrice     *float64 `json:"minPrice,omitempty"`
	MaxPrice     *float64 `json:"maxPrice,omitempty"`
	PropertyType string   `json:"propertyType,omitempty"`
	Location     string   `json:"location,omitempty"`
}

// Price returns a pointer for use as a price bound.
func Price(v float64) *float64 { return &v }

// IsEmpty reports whether the filter lets every record through.
func (f Filter) IsEmpty() bool {
	return strings.TrimSpace(f.NameQuery) == "" &&
		strings.TrimSpace(f.PropertyType) == "" &&
		strings.TrimSpace(f.Location) == "" &&
		f.MinPrice == nil && f.MaxPrice == nil
}

// Equal compares filters by value, including the price bounds.
func (f Filter) Equal(o Filter) bool {
	return f.NameQuery == o.NameQuery &&
		f.PropertyType == o.PropertyType &&
		f.Location == o.Location &&
		equalBound(f.MinPrice, o.MinPrice) &&
		equalBound(f.MaxPrice, o.MaxPrice)
}

func equalBound(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Matches reports whether r satisfies every active constraint.
func (f Filter) Matches(r Record) bool {
	if q := strings.TrimSpace(f.NameQuery); q != "" {
		if !strings.Contains(strings.ToLower(r.Title), strings.ToLower(q)) {
			return false
		}
	}
	if t := strings.TrimSpace(f.PropertyType); t != "" && r.PropertyType != t {
		return false
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		if !strings.Contains(strings.ToLower(r.Location), strings.ToLower(loc)) {
			return false
		}
	}
	if f.MinPrice != nil && r.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && r.Price > *f.MaxPrice {
		return false
	}
	return true
}

// Apply returns the matching records in their original relative order.
// records is not modified.
func (f Filter) Apply(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// ParseFilter builds a filter from string parameters as they arrive in a query
// string. Blank values are ignored; malformed prices fail.
func ParseFilter(name, minPrice, maxPrice, propertyType, location string) (Filter, error) {
	f := Filter{
		NameQuery:    strings.TrimSpace(name),
		PropertyType: strings.TrimSpace(propertyType),
		Location:     strings.TrimSpace(location),
	}

	var err error
	if f.MinPrice, err = parseBound("min_price", minPrice); err != nil {
		return Filter{}, err
	}
	if f.MaxPrice, err = parseBound("max_price", maxPrice); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func parseBound(field, v string) (*float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q is not a number", ErrInvalidFilterFormat, field, v)
	}
	if _, ok := toFloat(f); !ok {
		return nil, fmt.Errorf("%w: %s %q is not finite", ErrInvalidFilterFormat, field, v)
	}
	return &f, nil
}
