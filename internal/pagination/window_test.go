// internal/pagination/window_test.go
package pagination

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// w builds an expected window; 0 stands for an ellipsis.
func w(pages ...int) []Entry {
	out := make([]Entry, 0, len(pages))
	for _, p := range pages {
		if p == 0 {
			out = append(out, EllipsisEntry())
			continue
		}
		out = append(out, PageEntry(p))
	}
	return out
}

func TestBuildWindow(t *testing.T) {
	const gap = 0

	tests := []struct {
		name          string
		page          int
		totalPages    int
		siblingCount  int
		boundaryCount int
		want          []Entry
	}{
		{"single page", 1, 1, 1, 1, w(1)},
		{"fits without collapsing", 4, 7, 1, 1, w(1, 2, 3, 4, 5, 6, 7)},
		{"first page bridges leading gap", 1, 10, 1, 1, w(1, 2, 3, 4, 5, gap, 10)},
		{"third page", 3, 10, 1, 1, w(1, 2, 3, 4, 5, gap, 10)},
		{"fourth page still bridged", 4, 10, 1, 1, w(1, 2, 3, 4, 5, gap, 10)},
		{"middle collapses both sides", 5, 10, 1, 1, w(1, gap, 4, 5, 6, gap, 10)},
		{"page six", 6, 10, 1, 1, w(1, gap, 5, 6, 7, gap, 10)},
		{"page seven bridges trailing gap", 7, 10, 1, 1, w(1, gap, 6, 7, 8, 9, 10)},
		{"last page", 10, 10, 1, 1, w(1, gap, 6, 7, 8, 9, 10)},
		{"one over the limit, left", 4, 8, 1, 1, w(1, 2, 3, 4, 5, gap, 8)},
		{"one over the limit, right", 5, 8, 1, 1, w(1, gap, 4, 5, 6, 7, 8)},
		{"no siblings", 5, 10, 0, 1, w(1, gap, 5, gap, 10)},
		{"no boundaries", 5, 10, 1, 0, w(gap, 4, 5, 6, gap)},
		{"two boundaries", 10, 20, 1, 2, w(1, 2, gap, 9, 10, 11, gap, 19, 20)},
		{"two siblings", 10, 20, 2, 1, w(1, gap, 8, 9, 10, 11, 12, gap, 20)},
		{"page below range clamps to first", 0, 10, 1, 1, w(1, 2, 3, 4, 5, gap, 10)},
		{"page above range clamps to last", 99, 10, 1, 1, w(1, gap, 6, 7, 8, 9, 10)},
		{"zero total pages clamps to one", 3, 0, 1, 1, w(1)},
		{"negative counts clamp to zero", 5, 10, -3, -1, w(gap, 5, gap)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildWindow(tt.page, tt.totalPages, tt.siblingCount, tt.boundaryCount)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("BuildWindow(%d, %d, %d, %d) mismatch (-want +got):\n%s",
					tt.page, tt.totalPages, tt.siblingCount, tt.boundaryCount, diff)
			}
		})
	}
}

func TestBuildWindow_Properties(t *testing.T) {
	for s := 0; s <= 3; s++ {
		for b := 0; b <= 3; b++ {
			totalBlocks := s*2 + 1 + b*2 + 2
			for total := 1; total <= 40; total++ {
				for page := 1; page <= total; page++ {
					name := fmt.Sprintf("s=%d/b=%d/total=%d/page=%d", s, b, total, page)
					got := BuildWindow(page, total, s, b)
					checkWindow(t, name, got, page, total, b, totalBlocks)
				}
			}
		}
	}
}

func checkWindow(t *testing.T, name string, got []Entry, page, total, b, totalBlocks int) {
	t.Helper()

	if len(got) != min(total, totalBlocks) {
		t.Fatalf("%s: len = %d, want %d", name, len(got), min(total, totalBlocks))
	}

	if total <= totalBlocks {
		for i, e := range got {
			if e.IsEllipsis() || e.Page != i+1 {
				t.Fatalf("%s: expected full range, got %v", name, got)
			}
		}
		return
	}

	for i := 1; i <= b; i++ {
		if got[i-1] != PageEntry(i) {
			t.Fatalf("%s: leading boundary page %d missing in %v", name, i, got)
		}
		if got[len(got)-b+i-1] != PageEntry(total-b+i) {
			t.Fatalf("%s: trailing boundary page %d missing in %v", name, total-b+i, got)
		}
	}

	ellipses := 0
	seenCurrent := false
	prev := 0
	for i, e := range got {
		if e.IsEllipsis() {
			ellipses++
			if i > 0 && got[i-1].IsEllipsis() {
				t.Fatalf("%s: adjacent ellipses in %v", name, got)
			}
			next := total + 1
			if i+1 < len(got) {
				next = got[i+1].Page
			}
			if next-prev-1 < 2 {
				t.Fatalf("%s: ellipsis hides fewer than two pages in %v", name, got)
			}
			continue
		}
		if e.Page == page {
			seenCurrent = true
		}
		if i > 0 && !got[i-1].IsEllipsis() && e.Page != prev+1 {
			t.Fatalf("%s: pages skipped without ellipsis in %v", name, got)
		}
		if e.Page <= prev {
			t.Fatalf("%s: pages not increasing in %v", name, got)
		}
		prev = e.Page
	}

	if ellipses > 2 {
		t.Fatalf("%s: %d ellipses in %v", name, ellipses, got)
	}
	if !seenCurrent {
		t.Fatalf("%s: current page missing in %v", name, got)
	}
}

func TestBuildWindow_SingleGapIsBridged(t *testing.T) {
	got := BuildWindow(3, 10, 1, 1)
	assert.Equal(t, PageEntry(2), got[1], "gap of one page must show the page number")

	got = BuildWindow(8, 10, 1, 1)
	assert.Equal(t, PageEntry(9), got[len(got)-2])
}

func TestBuildWindow_HugeCounts(t *testing.T) {
	const huge = 1 << 62

	assert.Equal(t, w(1, 2, 3, 4, 5, 6, 7, 8, 9, 10), BuildWindow(1, 10, huge, 0))
	assert.Equal(t, w(1, 2, 3, 4, 5, 6, 7, 8, 9, 10), BuildWindow(5, 10, 0, huge))
	assert.Equal(t, w(1, 2, 3), BuildWindow(2, 3, huge, huge))
}

func TestBuildWindow_Deterministic(t *testing.T) {
	first := BuildWindow(6, 25, 1, 1)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, BuildWindow(6, 25, 1, 1))
	}
}

func TestEntry_JSON(t *testing.T) {
	data, err := json.Marshal(w(1, 0, 5, 6, 7, 0, 10))
	require.NoError(t, err)
	assert.JSONEq(t, `[1,"…",5,6,7,"…",10]`, string(data))

	var back []Entry
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, w(1, 0, 5, 6, 7, 0, 10), back)
}

func TestEntry_String(t *testing.T) {
	assert.Equal(t, "4", PageEntry(4).String())
	assert.Equal(t, EllipsisMarker, EllipsisEntry().String())
}

func TestWindowOptions_Window(t *testing.T) {
	assert.Equal(t, BuildWindow(5, 12, 1, 1), DefaultWindowOptions.Window(5, 12))
}
