// internal/workers/listings/query-listings/models.go
package querylistings

import (
	"listing-service/internal/listing"
	"listing-service/internal/pagination"
)

// Input mirrors the public browse query. Prices may arrive as numbers or as
// the raw strings a form submitted.
type Input struct {
	Name     string      `json:"name,omitempty"`
	MinPrice interface{} `json:"minPrice,omitempty"`
	MaxPrice interface{} `json:"maxPrice,omitempty"`
	Type     string      `json:"type,omitempty"`
	Location string      `json:"location,omitempty"`
	Sort     string      `json:"sort,omitempty"`
	Page     int         `json:"page,omitempty"`
	PageSize int         `json:"pageSize,omitempty"`
	AgentID  int64       `json:"agentId,omitempty"` // restricts to one agent's listings
}

type Output struct {
	Listings        []listing.Record   `json:"listings"`
	Total           int                `json:"total"`
	Pagination      pagination.Meta    `json:"pagination"`
	Window          []pagination.Entry `json:"window"`
	Fallback        bool               `json:"fallback"`
	FallbackMessage string             `json:"fallbackMessage,omitempty"`
}
