// internal/listing/query.go
package listing

import (
	"listing-service/internal/pagination"
)

// Query normalizes, filters and sorts raw records with the default normalizer.
func Query(raw []Raw, filter Filter, sort SortKey) []Record {
	return defaultNormalizer.Query(raw, filter, sort)
}

// Query runs the pipeline with this normalizer's alias table.
func (n *Normalizer) Query(raw []Raw, filter Filter, sort SortKey) []Record {
	return Sort(filter.Apply(n.NormalizeAll(raw)), sort)
}

// BrowseState is the caller-held state of a browse view.
type BrowseState struct {
	Filter   Filter  `json:"filter"`
	Sort     SortKey `json:"sort"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
}

// NewBrowseState returns the state of a freshly opened view.
func NewBrowseState(pageSize int) BrowseState {
	if pageSize < 1 {
		pageSize = pagination.DefaultPageSize
	}
	return BrowseState{Sort: DefaultSort, Page: 1, PageSize: pageSize}
}

// WithFilter replaces the filter. A changed filter sends the view back to page 1.
func (s BrowseState) WithFilter(f Filter) BrowseState {
	if !s.Filter.Equal(f) {
		s.Page = 1
	}
	s.Filter = f
	return s
}

// WithSort replaces the sort key. A changed key sends the view back to page 1.
func (s BrowseState) WithSort(k SortKey) BrowseState {
	if !k.Valid() {
		k = DefaultSort
	}
	if s.Sort != k {
		s.Page = 1
	}
	s.Sort = k
	return s
}

// WithPage moves to page p. Clamping happens when the state is paginated.
func (s BrowseState) WithPage(p int) BrowseState {
	s.Page = p
	return s
}

// Result is one page of a browse view.
type Result struct {
	Items  []Record           `json:"items"`
	Total  int                `json:"total"`
	Meta   pagination.Meta    `json:"pagination"`
	Window []pagination.Entry `json:"window"`
}

// Paginate slices already filtered and sorted records for s and builds the
// matching page selector. s.Page is clamped.
func Paginate(records []Record, s BrowseState, opts pagination.WindowOptions) Result {
	st := pagination.NewState(s.Page, s.PageSize, len(records))
	return Result{
		Items:  pagination.Slice(records, st),
		Total:  len(records),
		Meta:   pagination.NewMeta(st.Page, st.PageSize, len(records)),
		Window: opts.Window(st.Page, st.TotalPages),
	}
}

// Browse runs the pipeline for s over raw and paginates the outcome.
func (n *Normalizer) Browse(raw []Raw, s BrowseState, opts pagination.WindowOptions) Result {
	return Paginate(n.Query(raw, s.Filter, s.Sort), s, opts)
}
