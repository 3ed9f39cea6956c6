// internal/events/events.go
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"listing-service/internal/common/logger"
	"listing-service/internal/common/metrics"
)

var (
	ErrPublishFailed = errors.New("EVENT_PUBLISH_FAILED")
	ErrInvalidEvent  = errors.New("INVALID_EVENT")
)

// Type names a listing change.
type Type string

const (
	ListingCreated  Type = "listing.created"
	ListingUpdated  Type = "listing.updated"
	ListingDeleted  Type = "listing.deleted"
	InquiryReceived Type = "inquiry.received"
)

// Action is the short verb consumers key on.
func (t Type) Action() string {
	switch t {
	case ListingCreated:
		return "create"
	case ListingUpdated:
		return "update"
	case ListingDeleted:
		return "delete"
	case InquiryReceived:
		return "inquiry"
	}
	return ""
}

// Event is a listing change notice.
type Event struct {
	Type       Type      `json:"type"`
	Action     string    `json:"action"`
	ListingID  int64     `json:"property_id"`
	AgentID    int64     `json:"agent_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent stamps an event of type t for a listing.
func NewEvent(t Type, listingID, agentID int64) Event {
	return Event{
		Type:       t,
		Action:     t.Action(),
		ListingID:  listingID,
		AgentID:    agentID,
		OccurredAt: time.Now().UTC(),
	}
}

// Decode parses an event body and checks it names a listing.
func Decode(body []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if e.ListingID <= 0 {
		return Event{}, fmt.Errorf("%w: missing property_id", ErrInvalidEvent)
	}
	if e.Type == "" {
		switch e.Action {
		case "create":
			e.Type = ListingCreated
		case "update":
			e.Type = ListingUpdated
		case "delete":
			e.Type = ListingDeleted
		default:
			return Event{}, fmt.Errorf("%w: unknown action %q", ErrInvalidEvent, e.Action)
		}
	}
	return e, nil
}

// Publisher announces listing changes.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// Recorder wraps a Publisher with metrics and logging. Publish failures are
// logged and swallowed so a broker outage never fails a listing write.
type Recorder struct {
	next   Publisher
	logger logger.Logger
}

func NewRecorder(next Publisher, log logger.Logger) *Recorder {
	if next == nil {
		next = NopPublisher{}
	}
	return &Recorder{next: next, logger: log}
}

func (r *Recorder) Publish(ctx context.Context, e Event) error {
	if err := r.next.Publish(ctx, e); err != nil {
		metrics.ListingEventsPublished.WithLabelValues(string(e.Type), "error").Inc()
		r.logger.Warn("Failed to publish listing event", map[string]interface{}{
			"type":      string(e.Type),
			"listingId": e.ListingID,
			"error":     err.Error(),
		})
		return nil
	}
	metrics.ListingEventsPublished.WithLabelValues(string(e.Type), "ok").Inc()
	return nil
}

func (r *Recorder) Close() error { return r.next.Close() }

// Inline publishes to next, then hands the event to handler in process.
// It stands in for a queue consumer when the publisher has no queue to
// consume from. Handler failures are logged, not returned.
type Inline struct {
	next    Publisher
	handler Handler
	logger  logger.Logger
}

func NewInline(next Publisher, handler Handler, log logger.Logger) *Inline {
	if next == nil {
		next = NopPublisher{}
	}
	return &Inline{next: next, handler: handler, logger: log}
}

func (p *Inline) Publish(ctx context.Context, e Event) error {
	if err := p.next.Publish(ctx, e); err != nil {
		return err
	}
	if err := p.handler(ctx, e); err != nil {
		p.logger.Warn("Listing event handler failed", map[string]interface{}{
			"type":      string(e.Type),
			"listingId": e.ListingID,
			"error":     err.Error(),
		})
	}
	return nil
}

func (p *Inline) Close() error { return p.next.Close() }
