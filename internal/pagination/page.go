// internal/pagination/page.go
package pagination

// DefaultPageSize is the number of cards shown per browse page.
const DefaultPageSize = 6

// State is the paging position of a view. Consumers clamp Page; it is never trusted as given.
type State struct {
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	PageSize   int `json:"pageSize"`
}

// TotalPages returns max(1, ceil(count/pageSize)). A non-positive pageSize counts as 1.
func TotalPages(count, pageSize int) int {
	pageSize = max(pageSize, 1)
	if count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

// NewState derives a clamped state for count items.
func NewState(page, pageSize, count int) State {
	pageSize = max(pageSize, 1)
	total := TotalPages(count, pageSize)
	return State{
		Page:       Clamp(page, 1, total),
		TotalPages: total,
		PageSize:   pageSize,
	}
}

// Offset is the index of the first item on the state's page.
func (s State) Offset() int {
	return (Clamp(s.Page, 1, max(s.TotalPages, 1)) - 1) * max(s.PageSize, 1)
}

// Slice returns the items that belong on the state's page. The input is not modified.
func Slice[T any](items []T, s State) []T {
	s = NewState(s.Page, s.PageSize, len(items))
	start := s.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := min(start+s.PageSize, len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}

// Meta describes a page of results for API responses.
type Meta struct {
	CurrentPage int  `json:"current_page"`
	PageSize    int  `json:"page_size"`
	TotalPages  int  `json:"total_pages"`
	TotalItems  int  `json:"total_items"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// NewMeta builds metadata for count items at the given page and size.
func NewMeta(page, pageSize, count int) Meta {
	s := NewState(page, pageSize, count)
	return Meta{
		CurrentPage: s.Page,
		PageSize:    s.PageSize,
		TotalPages:  s.TotalPages,
		TotalItems:  max(count, 0),
		HasPrevious: s.Page > 1,
		HasNext:     s.Page < s.TotalPages,
	}
}
