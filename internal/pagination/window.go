// internal/pagination/window.go
package pagination

import (
	"encoding/json"
	"strconv"
)

// EllipsisMarker is how an ellipsis entry renders.
const EllipsisMarker = "…"

// Entry is one slot of a pagination window: either a page number or an ellipsis.
type Entry struct {
	Page     int
	Ellipsis bool
}

// PageEntry returns an entry for page n.
func PageEntry(n int) Entry { return Entry{Page: n} }

// EllipsisEntry returns an ellipsis entry.
func EllipsisEntry() Entry { return Entry{Ellipsis: true} }

// IsEllipsis reports whether the entry stands for elided pages.
func (e Entry) IsEllipsis() bool { return e.Ellipsis }

func (e Entry) String() string {
	if e.Ellipsis {
		return EllipsisMarker
	}
	return strconv.Itoa(e.Page)
}

// MarshalJSON encodes pages as numbers and ellipses as the marker string.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Ellipsis {
		return json.Marshal(EllipsisMarker)
	}
	return json.Marshal(e.Page)
}

// UnmarshalJSON accepts either a page number or the marker string.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*e = PageEntry(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*e = EllipsisEntry()
	return nil
}

// WindowOptions controls how many numbers surround the current page and the edges.
type WindowOptions struct {
	SiblingCount  int
	BoundaryCount int
}

// DefaultWindowOptions matches the browse page controls: one sibling, one boundary.
var DefaultWindowOptions = WindowOptions{SiblingCount: 1, BoundaryCount: 1}

// BuildWindow returns the ordered page selector entries for the given position.
//
// All inputs are clamped: totalPages to >= 1, page into [1, totalPages], and the
// sibling and boundary counts to >= 0. A gap of exactly one page is always shown
// as that page; only gaps of two or more collapse into an ellipsis.
func BuildWindow(page, totalPages, siblingCount, boundaryCount int) []Entry {
	totalPages = max(totalPages, 1)
	page = Clamp(page, 1, totalPages)
	// Counts past totalPages already select every page; capping keeps the
	// block arithmetic from overflowing.
	s := Clamp(siblingCount, 0, totalPages)
	b := Clamp(boundaryCount, 0, totalPages)

	totalNumbers := s*2 + 1 + b*2
	totalBlocks := totalNumbers + 2

	if totalPages <= totalBlocks {
		entries := make([]Entry, 0, totalPages)
		for n := 1; n <= totalPages; n++ {
			entries = append(entries, PageEntry(n))
		}
		return entries
	}

	siblingsStart := max(min(page-s, totalPages-b-s*2-1), b+2)
	siblingsEnd := min(max(page+s, b+s*2+2), totalPages-b-1)

	entries := make([]Entry, 0, totalBlocks)
	for n := 1; n <= b; n++ {
		entries = append(entries, PageEntry(n))
	}

	if siblingsStart > b+2 {
		entries = append(entries, EllipsisEntry())
	} else if b+1 < totalPages-b {
		entries = append(entries, PageEntry(b+1))
	}

	for n := siblingsStart; n <= siblingsEnd; n++ {
		entries = append(entries, PageEntry(n))
	}

	if siblingsEnd < totalPages-b-1 {
		entries = append(entries, EllipsisEntry())
	} else if totalPages-b > b {
		entries = append(entries, PageEntry(totalPages-b))
	}

	for n := totalPages - b + 1; n <= totalPages; n++ {
		entries = append(entries, PageEntry(n))
	}

	return entries
}

// Window is BuildWindow with the options struct.
func (o WindowOptions) Window(page, totalPages int) []Entry {
	return BuildWindow(page, totalPages, o.SiblingCount, o.BoundaryCount)
}

// Clamp bounds v into [lo, hi]. hi wins when lo > hi.
func Clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
