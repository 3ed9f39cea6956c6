// internal/search/index.go
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"listing-service/internal/common/logger"
	"listing-service/internal/listing"
	"listing-service/internal/pagination"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrSearchQueryFailed = errors.New("SEARCH_QUERY_FAILED")
	ErrIndexFailed       = errors.New("SEARCH_INDEX_FAILED")
	ErrMissingIndex      = errors.New("index name is required")
)

// indexMapping keeps text fields as keywords so wildcard filters and exact
// type matches behave like the in-memory filter.
const indexMapping = `{
  "mappings": {
    "properties": {
      "id":       {"type": "keyword"},
      "rank":     {"type": "double"},
      "title":    {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "location": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "type":     {"type": "keyword"},
      "price":    {"type": "double"},
      "beds":     {"type": "integer"},
      "baths":    {"type": "integer"},
      "area":     {"type": "double"},
      "photoUrl": {"type": "keyword", "index": false}
    }
  }
}`

// document is a normalized record as indexed.
type document struct {
	listing.Record
	Rank float64 `json:"rank"`
}

// Hits is one page of search results.
type Hits struct {
	Raw   []listing.Raw
	Total int
	Took  int64
}

// Index is the listing search index.
type Index struct {
	client *elasticsearch.Client
	name   string
	logger logger.Logger
}

func NewIndex(client *elasticsearch.Client, name string, log logger.Logger) (*Index, error) {
	if name == "" {
		return nil, ErrMissingIndex
	}
	return &Index{
		client: client,
		name:   name,
		logger: log.WithFields(map[string]interface{}{"index": name}),
	}, nil
}

func (ix *Index) Name() string { return ix.name }

// EnsureIndex creates the index with its mapping if it does not exist.
func (ix *Index) EnsureIndex(ctx context.Context) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{ix.name}}.Do(ctx, ix.client)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = esapi.IndicesCreateRequest{
		Index: ix.name,
		Body:  strings.NewReader(indexMapping),
	}.Do(ctx, ix.client)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("%w: create index: %s", ErrIndexFailed, res.String())
	}
	ix.logger.Info("Created search index", nil)
	return nil
}

// IndexRecords bulk-indexes records keyed by id.
func (ix *Index) IndexRecords(ctx context.Context, records []listing.Record) error {
	if len(records) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range records {
		meta := map[string]interface{}{
			"index": map[string]interface{}{"_index": ix.name, "_id": r.ID.String()},
		}
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("%w: %v", ErrIndexFailed, err)
		}
		if err := enc.Encode(document{Record: r, Rank: r.ID.Int()}); err != nil {
			return fmt.Errorf("%w: %v", ErrIndexFailed, err)
		}
	}

	res, err := esapi.BulkRequest{
		Body:    &buf,
		Refresh: "true",
	}.Do(ctx, ix.client)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("%w: bulk: %s", ErrIndexFailed, res.String())
	}

	var body struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: decode bulk response: %v", ErrIndexFailed, err)
	}
	if body.Errors {
		return fmt.Errorf("%w: bulk response reported item errors", ErrIndexFailed)
	}

	ix.logger.Info("Indexed listings", map[string]interface{}{"count": len(records)})
	return nil
}

// Delete removes one listing. A missing document is not an error.
func (ix *Index) Delete(ctx context.Context, id listing.ID) error {
	res, err := esapi.DeleteRequest{Index: ix.name, DocumentID: id.String()}.Do(ctx, ix.client)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("%w: delete: %s", ErrIndexFailed, res.String())
	}
	return nil
}

// Search runs BuildQuery against the index.
func (ix *Index) Search(ctx context.Context, f listing.Filter, sort listing.SortKey, from, size int) (*Hits, error) {
	body, err := json.Marshal(BuildQuery(f, sort, from, size))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}

	start := time.Now()
	res, err := esapi.SearchRequest{
		Index: []string{ix.name},
		Body:  bytes.NewReader(body),
	}.Do(ctx, ix.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearchQueryFailed, res.String())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchQueryFailed, err)
	}

	hits := &Hits{
		Raw:   make([]listing.Raw, 0, len(r.Hits.Hits)),
		Total: r.Hits.Total.Value,
		Took:  time.Since(start).Milliseconds(),
	}
	for _, h := range r.Hits.Hits {
		dec := json.NewDecoder(bytes.NewReader(h.Source))
		dec.UseNumber()
		raw := listing.Raw{}
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: decode hit: %v", ErrSearchQueryFailed, err)
		}
		hits.Raw = append(hits.Raw, raw)
	}
	return hits, nil
}

// MaxResultWindow is the deepest from+size the cluster serves
// (index.max_result_window, 10000 by default).
const MaxResultWindow = 10000

// Count returns the number of documents matching f.
func (ix *Index) Count(ctx context.Context, f listing.Filter) (int, error) {
	q := BuildQuery(f, listing.DefaultSort, 0, 1)
	body, err := json.Marshal(map[string]interface{}{"query": q["query"]})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}

	res, err := esapi.CountRequest{
		Index: []string{ix.name},
		Body:  bytes.NewReader(body),
	}.Do(ctx, ix.client)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("%w: %s", ErrSearchQueryFailed, res.String())
	}

	var r struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, fmt.Errorf("%w: decode count: %v", ErrSearchQueryFailed, err)
	}
	return r.Count, nil
}

// Browse serves one page of a browse view from the index. A page past the end
// is clamped to the last page, as the in-memory pipeline does. Pages beyond
// MaxResultWindow are clamped to the deepest page the cluster can serve.
func (ix *Index) Browse(ctx context.Context, s listing.BrowseState, opts pagination.WindowOptions) (listing.Result, error) {
	if s.PageSize < 1 {
		s.PageSize = pagination.DefaultPageSize
	}
	s.PageSize = min(s.PageSize, maxPageSize)
	page := max(s.Page, 1)

	var (
		hits *Hits
		st   pagination.State
		err  error
	)
	if page <= MaxResultWindow/s.PageSize {
		hits, err = ix.Search(ctx, s.Filter, s.Sort, (page-1)*s.PageSize, s.PageSize)
		if err != nil {
			return listing.Result{}, err
		}
		st = pagination.NewState(page, s.PageSize, hits.Total)
		if st.Page == page {
			return ix.result(hits, st, opts), nil
		}
	} else {
		total, err := ix.Count(ctx, s.Filter)
		if err != nil {
			return listing.Result{}, err
		}
		st = pagination.NewState(page, s.PageSize, total)
	}

	st.Page = min(st.Page, max(MaxResultWindow/s.PageSize, 1))
	hits, err = ix.Search(ctx, s.Filter, s.Sort, st.Offset(), s.PageSize)
	if err != nil {
		return listing.Result{}, err
	}
	st = pagination.NewState(st.Page, s.PageSize, hits.Total)
	return ix.result(hits, st, opts), nil
}

func (ix *Index) result(hits *Hits, st pagination.State, opts pagination.WindowOptions) listing.Result {
	return listing.Result{
		Items:  listing.DefaultNormalizer().NormalizeAll(hits.Raw),
		Total:  hits.Total,
		Meta:   pagination.NewMeta(st.Page, st.PageSize, hits.Total),
		Window: opts.Window(st.Page, st.TotalPages),
	}
}
