// internal/search/query.go
package search

import (
	"strings"

	"listing-service/internal/listing"
)

// maxPageSize caps a single search request.
const maxPageSize = 100

// BuildQuery translates a browse filter and sort key into a search body.
// Text matches are case-insensitive substrings, price bounds are inclusive.
func BuildQuery(f listing.Filter, sort listing.SortKey, from, size int) map[string]interface{} {
	filterClauses := []interface{}{}

	if q := strings.TrimSpace(f.NameQuery); q != "" {
		filterClauses = append(filterClauses, wildcard("title.keyword", q))
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		filterClauses = append(filterClauses, wildcard("location.keyword", loc))
	}
	if t := strings.TrimSpace(f.PropertyType); t != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"type": t},
		})
	}

	priceRange := map[string]interface{}{}
	if f.MinPrice != nil {
		priceRange["gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		priceRange["lte"] = *f.MaxPrice
	}
	if len(priceRange) > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{"price": priceRange},
		})
	}

	if from < 0 {
		from = 0
	}
	if size < 1 || size > maxPageSize {
		size = maxPageSize
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"filter": filterClauses},
		},
		"sort":             sortClauses(sort),
		"from":             from,
		"size":             size,
		"track_total_hits": true,
	}
}

func wildcard(field, value string) map[string]interface{} {
	return map[string]interface{}{
		"wildcard": map[string]interface{}{
			field: map[string]interface{}{
				"value":            "*" + escapeWildcard(value) + "*",
				"case_insensitive": true,
			},
		},
	}
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(s string) string {
	return wildcardEscaper.Replace(s)
}

// sortClauses orders hits the way listing.Sort orders records. Ties fall back
// to descending rank, the numeric value of the id, where the in-memory sort
// keeps filter order instead.
func sortClauses(key listing.SortKey) []interface{} {
	desc := func(field string) map[string]interface{} {
		return map[string]interface{}{field: map[string]interface{}{"order": "desc"}}
	}
	asc := func(field string) map[string]interface{} {
		return map[string]interface{}{field: map[string]interface{}{"order": "asc"}}
	}

	switch key {
	case listing.SortPriceAsc:
		return []interface{}{asc("price"), desc("rank")}
	case listing.SortPriceDesc:
		return []interface{}{desc("price"), desc("rank")}
	case listing.SortAreaDesc:
		return []interface{}{desc("area"), desc("rank")}
	case listing.SortBedsDesc:
		return []interface{}{desc("beds"), desc("rank")}
	default:
		return []interface{}{desc("rank")}
	}
}
