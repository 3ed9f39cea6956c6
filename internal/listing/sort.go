// internal/listing/sort.go
package listing

import (
	"cmp"
	"slices"
	"strings"
)

// SortKey selects the ordering of a listing collection.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortAreaDesc  SortKey = "area_desc"
	SortBedsDesc  SortKey = "beds_desc"
)

// DefaultSort is used whenever no or an unknown key is given.
const DefaultSort = SortNewest

// SortKeys lists every supported key.
var SortKeys = []SortKey{SortNewest, SortPriceAsc, SortPriceDesc, SortAreaDesc, SortBedsDesc}

// Valid reports whether k is a supported key.
func (k SortKey) Valid() bool {
	return slices.Contains(SortKeys, k)
}

// ParseSortKey maps a request value to a key. Unknown values yield DefaultSort.
func ParseSortKey(s string) SortKey {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if k.Valid() {
		return k
	}
	return DefaultSort
}

func (k SortKey) compare() func(a, b Record) int {
	switch k {
	case SortPriceAsc:
		return func(a, b Record) int { return cmp.Compare(a.Price, b.Price) }
	case SortPriceDesc:
		return func(a, b Record) int { return cmp.Compare(b.Price, a.Price) }
	case SortAreaDesc:
		return func(a, b Record) int { return cmp.Compare(b.Area, a.Area) }
	case SortBedsDesc:
		return func(a, b Record) int { return cmp.Compare(b.Bedrooms, a.Bedrooms) }
	default:
		return func(a, b Record) int { return cmp.Compare(b.ID.Int(), a.ID.Int()) }
	}
}

// Sort returns a reordered copy of records. Ties keep their input order.
func Sort(records []Record, key SortKey) []Record {
	out := slices.Clone(records)
	if out == nil {
		out = []Record{}
	}
	slices.SortStableFunc(out, key.compare())
	return out
}
