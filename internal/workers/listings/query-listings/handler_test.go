package querylistings

import (
	"context"
	"errors"
	"testing"
	"time"

	"listing-service/internal/catalog"
	stderrors "listing-service/internal/common/errors"
	"listing-service/internal/common/logger"
	"listing-service/internal/listing"
	"listing-service/internal/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// ==========================
// Test Helper Functions
// ==========================

type mockCatalog struct {
	state    listing.BrowseState
	fallback bool
	err      error
}

func (m *mockCatalog) Browse(ctx context.Context, entry string, state listing.BrowseState) (*catalog.Page, error) {
	m.state = state
	if m.err != nil {
		return nil, m.err
	}
	res := listing.DefaultNormalizer().Browse(listing.DemoRaw(10), state, pagination.DefaultWindowOptions)
	page := &catalog.Page{Result: res, Fallback: m.fallback}
	if m.fallback {
		page.Message = "fallback"
	}
	return page, nil
}

type mockAgents struct {
	agentID int64
}

func (m *mockAgents) MyListings(ctx context.Context, agentID int64, state listing.BrowseState) (listing.Result, error) {
	m.agentID = agentID
	return listing.DefaultNormalizer().Browse(listing.DemoRaw(2), state, pagination.DefaultWindowOptions), nil
}

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second, PageSize: 6}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		validate func(t *testing.T, cat *mockCatalog, out *Output)
	}{
		{
			name:  "defaults",
			input: &Input{},
			validate: func(t *testing.T, cat *mockCatalog, out *Output) {
				assert.Equal(t, 6, cat.state.PageSize)
				assert.Equal(t, listing.DefaultSort, cat.state.Sort)
				assert.Equal(t, 1, cat.state.Page)
				assert.Len(t, out.Listings, 6)
				assert.Equal(t, 10, out.Total)
				assert.Equal(t, 2, out.Pagination.TotalPages)
			},
		},
		{
			name:  "numeric and string price bounds",
			input: &Input{MinPrice: float64(1500000), MaxPrice: "2500000", Type: "House"},
			validate: func(t *testing.T, cat *mockCatalog, out *Output) {
				require.NotNil(t, cat.state.Filter.MinPrice)
				require.NotNil(t, cat.state.Filter.MaxPrice)
				assert.Equal(t, 1500000.0, *cat.state.Filter.MinPrice)
				assert.Equal(t, 2500000.0, *cat.state.Filter.MaxPrice)
				for _, r := range out.Listings {
					assert.Equal(t, "House", r.PropertyType)
				}
			},
		},
		{
			name:  "page clamped to last",
			input: &Input{Page: 9, PageSize: 4, Sort: "price_desc"},
			validate: func(t *testing.T, cat *mockCatalog, out *Output) {
				assert.Equal(t, listing.SortPriceDesc, cat.state.Sort)
				assert.Equal(t, 3, out.Pagination.CurrentPage)
				assert.Len(t, out.Listings, 2)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := &mockCatalog{}
			h := NewHandler(createTestConfig(), cat, &mockAgents{}, createTestLogger(t))

			out, err := h.Execute(context.Background(), tt.input)
			require.NoError(t, err)
			tt.validate(t, cat, out)
		})
	}
}

func TestHandler_Execute_Fallback(t *testing.T) {
	h := NewHandler(createTestConfig(), &mockCatalog{fallback: true}, &mockAgents{}, createTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.True(t, out.Fallback)
	assert.Equal(t, "fallback", out.FallbackMessage)
}

func TestHandler_Execute_AgentListings(t *testing.T) {
	agents := &mockAgents{}
	cat := &mockCatalog{}
	h := NewHandler(createTestConfig(), cat, agents, createTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{AgentID: 7})
	require.NoError(t, err)
	assert.Equal(t, int64(7), agents.agentID)
	assert.Equal(t, 2, out.Total)
	assert.Zero(t, cat.state.PageSize, "catalog must not be queried")
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    *Input
		catErr   error
		wantCode stderrors.ErrorCode
	}{
		{name: "nil input", input: nil, wantCode: stderrors.ErrCodeInvalidRequest},
		{name: "malformed price", input: &Input{MinPrice: "cheap"}, wantCode: stderrors.ErrCodeInvalidFilterFormat},
		{name: "canceled load", input: &Input{}, catErr: context.DeadlineExceeded, wantCode: stderrors.ErrCodeTimeout},
		{name: "unexpected", input: &Input{}, catErr: errors.New("boom"), wantCode: stderrors.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(createTestConfig(), &mockCatalog{err: tt.catErr}, &mockAgents{}, createTestLogger(t))

			_, err := h.Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, stderrors.FromError(err).Code)
		})
	}
}

// ==========================
// Input Parsing Tests
// ==========================

func TestParseInput(t *testing.T) {
	tests := []struct {
		name      string
		variables string
		wantErr   bool
		validate  func(t *testing.T, in *Input)
	}{
		{
			name:      "full input",
			variables: `{"name":"villa","minPrice":100,"maxPrice":"900","sort":"area_desc","page":2,"pageSize":3}`,
			validate: func(t *testing.T, in *Input) {
				assert.Equal(t, "villa", in.Name)
				assert.Equal(t, float64(100), in.MinPrice)
				assert.Equal(t, "900", in.MaxPrice)
				assert.Equal(t, 2, in.Page)
			},
		},
		{name: "null fields", variables: `{"name":null,"minPrice":null}`},
		{name: "page size too large", variables: `{"pageSize":1000}`, wantErr: true},
		{name: "wrong type", variables: `{"page":"two"}`, wantErr: true},
		{name: "not json", variables: `{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := parseInput(tt.variables)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, stderrors.ErrCodeInvalidRequest, stderrors.FromError(err).Code)
				return
			}
			require.NoError(t, err)
			if tt.validate != nil {
				tt.validate(t, in)
			}
		})
	}
}
