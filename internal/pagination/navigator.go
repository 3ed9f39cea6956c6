// internal/pagination/navigator.go
package pagination

// ChangeFunc receives the new page after a navigation that moved.
type ChangeFunc func(page int)

// Navigator tracks the current page of a paged view and emits change events.
// It is not safe for concurrent use; each view owns its navigator.
type Navigator struct {
	page       int
	totalPages int
	onChange   ChangeFunc
}

// NewNavigator returns a navigator positioned at page, clamped into range.
func NewNavigator(page, totalPages int, onChange ChangeFunc) *Navigator {
	totalPages = max(totalPages, 1)
	return &Navigator{
		page:       Clamp(page, 1, totalPages),
		totalPages: totalPages,
		onChange:   onChange,
	}
}

// Page returns the current page.
func (n *Navigator) Page() int { return n.page }

// TotalPages returns the page count the navigator clamps against.
func (n *Navigator) TotalPages() int { return n.totalPages }

// GoToPage moves to requested, clamped into [1, TotalPages]. It returns true and
// fires the change callback only when the effective page differs from the current one.
func (n *Navigator) GoToPage(requested int) bool {
	next := Clamp(requested, 1, n.totalPages)
	if next == n.page {
		return false
	}
	n.page = next
	if n.onChange != nil {
		n.onChange(next)
	}
	return true
}

// Next moves one page forward.
func (n *Navigator) Next() bool { return n.GoToPage(n.page + 1) }

// Prev moves one page back.
func (n *Navigator) Prev() bool { return n.GoToPage(n.page - 1) }

// HasPrev reports whether a previous page exists.
func (n *Navigator) HasPrev() bool { return n.page > 1 }

// HasNext reports whether a following page exists.
func (n *Navigator) HasNext() bool { return n.page < n.totalPages }

// SetTotalPages updates the page count and pulls the current page back into range.
// A page moved by shrinking the range is reported through the change callback.
func (n *Navigator) SetTotalPages(totalPages int) {
	n.totalPages = max(totalPages, 1)
	if n.page > n.totalPages {
		n.page = n.totalPages
		if n.onChange != nil {
			n.onChange(n.page)
		}
	}
}

// Window builds the entries for the navigator's current position.
func (n *Navigator) Window(opts WindowOptions) []Entry {
	return opts.Window(n.page, n.totalPages)
}
