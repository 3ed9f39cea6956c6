// internal/listing/query_test.go
package listing

import (
	"testing"

	"listing-service/internal/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(records []Record) []ID {
	out := make([]ID, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func prices(records []Record) []float64 {
	out := make([]float64, 0, len(records))
	for _, r := range records {
		out = append(out, r.Price)
	}
	return out
}

// ==========================
// Filter
// ==========================

func TestFilter_Conjunction(t *testing.T) {
	raw := []Raw{
		{"title": "Modern Villa", "location": "Jakarta", "price": 100},
		{"title": "Old Flat", "location": "Bali", "price": 500},
	}

	got := Query(raw, Filter{NameQuery: "villa", MinPrice: Price(50)}, SortNewest)

	require.Len(t, got, 1)
	assert.Equal(t, "Modern Villa", got[0].Title)
}

func TestFilter_Constraints(t *testing.T) {
	records := DefaultNormalizer().NormalizeAll(DemoRaw(8))

	tests := []struct {
		name   string
		filter Filter
		want   []ID
	}{
		{"empty filter keeps everything", Filter{}, ids(records)},
		{"type is exact", Filter{PropertyType: "Apartment"}, []ID{IntID(2), IntID(4), IntID(6), IntID(8)}},
		{"type is case sensitive", Filter{PropertyType: "apartment"}, []ID{}},
		{"location substring ignores case", Filter{Location: "  JAK "}, []ID{IntID(1), IntID(5)}},
		{"max price inclusive", Filter{MaxPrice: Price(775000000)}, []ID{IntID(1), IntID(2)}},
		{"min price inclusive", Filter{MinPrice: Price(1400000000)}, []ID{IntID(7), IntID(8)}},
		{"all constraints", Filter{NameQuery: "villa 5", Location: "jakarta", PropertyType: "House"}, []ID{IntID(5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.filter.Apply(records)))
		})
	}
}

func TestFilter_ApplyDoesNotModifyInput(t *testing.T) {
	records := DefaultNormalizer().NormalizeAll(DemoRaw(4))
	before := append([]Record(nil), records...)

	_ = Filter{PropertyType: "House"}.Apply(records)

	assert.Equal(t, before, records)
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter(" villa ", "100", "", "House", "")
	require.NoError(t, err)
	assert.Equal(t, "villa", f.NameQuery)
	require.NotNil(t, f.MinPrice)
	assert.Equal(t, float64(100), *f.MinPrice)
	assert.Nil(t, f.MaxPrice)
	assert.Equal(t, "House", f.PropertyType)

	_, err = ParseFilter("", "cheap", "", "", "")
	assert.ErrorIs(t, err, ErrInvalidFilterFormat)

	_, err = ParseFilter("", "", "Inf", "", "")
	assert.ErrorIs(t, err, ErrInvalidFilterFormat)
}

func TestFilter_Equal(t *testing.T) {
	assert.True(t, Filter{MinPrice: Price(5)}.Equal(Filter{MinPrice: Price(5)}))
	assert.False(t, Filter{MinPrice: Price(5)}.Equal(Filter{MinPrice: Price(6)}))
	assert.False(t, Filter{MinPrice: Price(5)}.Equal(Filter{}))
	assert.True(t, Filter{}.IsEmpty())
	assert.False(t, Filter{Location: "Bali"}.IsEmpty())
}

// ==========================
// Sort
// ==========================

func TestSort_PriceAscending(t *testing.T) {
	raw := []Raw{{"price": 300}, {"price": 100}, {"price": 200}}
	got := Query(raw, Filter{}, SortPriceAsc)
	assert.Equal(t, []float64{100, 200, 300}, prices(got))
}

func TestSort_NewestByID(t *testing.T) {
	raw := []Raw{{"id": 3}, {"id": 1}, {"id": 2}}
	got := Query(raw, Filter{}, SortNewest)
	assert.Equal(t, []ID{IntID(3), IntID(2), IntID(1)}, ids(got))
}

func TestSort_Keys(t *testing.T) {
	records := []Record{
		{ID: IntID(1), Price: 200, Area: 50, Bedrooms: 2},
		{ID: IntID(2), Price: 100, Area: 90, Bedrooms: 4},
		{ID: IntID(3), Price: 300, Area: 70, Bedrooms: 3},
	}

	tests := []struct {
		key  SortKey
		want []ID
	}{
		{SortNewest, []ID{IntID(3), IntID(2), IntID(1)}},
		{SortPriceAsc, []ID{IntID(2), IntID(1), IntID(3)}},
		{SortPriceDesc, []ID{IntID(3), IntID(1), IntID(2)}},
		{SortAreaDesc, []ID{IntID(2), IntID(3), IntID(1)}},
		{SortBedsDesc, []ID{IntID(2), IntID(3), IntID(1)}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Sort(records, tt.key)))
		})
	}
}

func TestSort_TiesKeepFilterOrder(t *testing.T) {
	records := []Record{
		{ID: IntID(1), Price: 100},
		{ID: IntID(2), Price: 50},
		{ID: IntID(3), Price: 100},
		{ID: IntID(4), Price: 100},
	}

	got := Sort(records, SortPriceDesc)

	assert.Equal(t, []ID{IntID(1), IntID(3), IntID(4), IntID(2)}, ids(got))
	assert.Equal(t, IntID(1), records[0].ID)
	assert.Equal(t, IntID(2), records[1].ID, "input must not be reordered")
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, SortPriceAsc, ParseSortKey("price_asc"))
	assert.Equal(t, SortBedsDesc, ParseSortKey(" BEDS_DESC "))
	assert.Equal(t, SortNewest, ParseSortKey(""))
	assert.Equal(t, SortNewest, ParseSortKey("cheapest"))
}

// ==========================
// Browse
// ==========================

func TestPaginate_EighteenRecords(t *testing.T) {
	records := Query(DemoRaw(DemoSize), Filter{}, SortPriceAsc)
	state := NewBrowseState(pagination.DefaultPageSize).WithPage(3)

	res := Paginate(records, state, pagination.DefaultWindowOptions)

	assert.Equal(t, 18, res.Total)
	assert.Equal(t, 3, res.Meta.TotalPages)
	assert.Equal(t, 3, res.Meta.CurrentPage)
	assert.Equal(t, records[12:], res.Items)
	assert.Equal(t, pagination.BuildWindow(3, 3, 1, 1), res.Window)
}

func TestPaginate_ShortLastPage(t *testing.T) {
	records := Query(DemoRaw(14), Filter{}, SortNewest)

	res := Paginate(records, BrowseState{Page: 3, PageSize: 6}, pagination.DefaultWindowOptions)

	require.Len(t, res.Items, 2)
	assert.Equal(t, []ID{IntID(2), IntID(1)}, ids(res.Items))
}

func TestPaginate_ClampsPage(t *testing.T) {
	records := Query(DemoRaw(10), Filter{}, SortNewest)

	res := Paginate(records, BrowseState{Page: 40, PageSize: 6}, pagination.DefaultWindowOptions)
	assert.Equal(t, 2, res.Meta.CurrentPage)
	assert.Len(t, res.Items, 4)

	res = Paginate(nil, BrowseState{Page: 0, PageSize: 6}, pagination.DefaultWindowOptions)
	assert.Equal(t, 1, res.Meta.CurrentPage)
	assert.Equal(t, 1, res.Meta.TotalPages)
	assert.Empty(t, res.Items)
}

func TestBrowseState_Transitions(t *testing.T) {
	s := NewBrowseState(0)
	assert.Equal(t, pagination.DefaultPageSize, s.PageSize)
	assert.Equal(t, SortNewest, s.Sort)

	s = s.WithPage(3)
	assert.Equal(t, 3, s.Page)

	s = s.WithFilter(Filter{Location: "Bali"})
	assert.Equal(t, 1, s.Page, "filter change resets page")

	s = s.WithPage(2).WithFilter(Filter{Location: "Bali"})
	assert.Equal(t, 2, s.Page, "same filter keeps page")

	s = s.WithSort(SortPriceDesc)
	assert.Equal(t, 1, s.Page, "sort change resets page")

	s = s.WithPage(2).WithSort(SortPriceDesc)
	assert.Equal(t, 2, s.Page, "same sort keeps page")

	s = s.WithSort("bogus")
	assert.Equal(t, SortNewest, s.Sort)
	assert.Equal(t, 1, s.Page)
}

func TestBrowse_FilterThenPaginate(t *testing.T) {
	state := NewBrowseState(6).WithFilter(Filter{PropertyType: "House"}).WithSort(SortPriceDesc)

	res := DefaultNormalizer().Browse(DemoRaw(DemoSize), state, pagination.DefaultWindowOptions)

	assert.Equal(t, 9, res.Total)
	assert.Equal(t, 2, res.Meta.TotalPages)
	require.Len(t, res.Items, 6)
	assert.Equal(t, IntID(17), res.Items[0].ID)
	for _, r := range res.Items {
		assert.Equal(t, "House", r.PropertyType)
	}
}

func TestDemoRaw(t *testing.T) {
	records := DefaultNormalizer().NormalizeAll(DemoRaw(DemoSize))
	require.Len(t, records, DemoSize)

	first := records[0]
	assert.Equal(t, Record{
		ID: IntID(1), Title: "Modern Sunset Villa 1", Location: "Jakarta", PropertyType: "House",
		Price: 650000000, Bedrooms: 1, Bathrooms: 1, Area: 60, PhotoURL: FallbackPhotos[1],
	}, first)

	last := records[17]
	assert.Equal(t, "Bali", last.Location)
	assert.Equal(t, "Apartment", last.PropertyType)
	assert.Equal(t, float64(650000000+17*125000000), last.Price)
	assert.Equal(t, 3, last.Bedrooms)
	assert.Equal(t, 3, last.Bathrooms)
	assert.Equal(t, float64(60+3*25), last.Area)

	assert.Empty(t, DemoRaw(0))
}
