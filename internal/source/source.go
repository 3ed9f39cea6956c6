// internal/source/source.go
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	commonhttp "listing-service/internal/common/http"
	"listing-service/internal/common/retry"
	"listing-service/internal/listing"
)

var (
	ErrSourceUnavailable = errors.New("SOURCE_UNAVAILABLE")
	ErrMalformedPayload  = errors.New("MALFORMED_PAYLOAD")
)

// Source produces the raw listing collection.
type Source interface {
	Fetch(ctx context.Context) ([]listing.Raw, error)
}

// Func adapts a function to Source.
type Func func(ctx context.Context) ([]listing.Raw, error)

func (f Func) Fetch(ctx context.Context) ([]listing.Raw, error) { return f(ctx) }

// StaticSource always returns the same records.
type StaticSource []listing.Raw

func (s StaticSource) Fetch(context.Context) ([]listing.Raw, error) {
	return append([]listing.Raw(nil), s...), nil
}

// ListingsPath is where the backend serves its collection.
const ListingsPath = "/api/properties"

// HTTPSource reads listings from the backend REST API.
type HTTPSource struct {
	baseURL string
	client  *commonhttp.Client
}

// HTTPConfig configures an HTTPSource.
type HTTPConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewHTTPSource builds a source for the backend at cfg.BaseURL. Retries are
// left to the Loader so a single policy governs a load.
func NewHTTPSource(cfg HTTPConfig) *HTTPSource {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  commonhttp.NewClient(timeout, commonhttp.WithRetry(retry.Policy{MaxAttempts: 1})),
	}
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]listing.Raw, error) {
	if s.baseURL == "" {
		return nil, retry.Stop(fmt.Errorf("%w: no base url configured", ErrSourceUnavailable))
	}

	body, err := s.client.Get(ctx, s.baseURL+ListingsPath)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		var se *commonhttp.StatusError
		if errors.As(err, &se) && !se.Retryable() {
			return nil, retry.Stop(err)
		}
		return nil, err
	}

	raws, err := DecodeListings(body)
	if err != nil {
		return nil, retry.Stop(err)
	}
	return raws, nil
}

// envelopeKeys are the object keys a collection may be wrapped in, in order.
var envelopeKeys = []string{"items", "results", "properties"}

// DecodeListings accepts a bare JSON array or an object wrapping one under
// items, results or properties. Numbers are kept as json.Number.
func DecodeListings(body []byte) ([]listing.Raw, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload interface{}
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	var list []interface{}
	switch v := payload.(type) {
	case []interface{}:
		list = v
	case map[string]interface{}:
		for _, k := range envelopeKeys {
			if inner, ok := v[k].([]interface{}); ok {
				list = inner
				break
			}
		}
		if list == nil {
			list = []interface{}{}
		}
	default:
		return nil, fmt.Errorf("%w: expected array or object, got %T", ErrMalformedPayload, payload)
	}

	out := make([]listing.Raw, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]interface{})
		if !ok {
			// a non-object element still occupies a position
			obj = map[string]interface{}{}
		}
		out = append(out, listing.Raw(obj))
	}
	return out, nil
}
