// internal/events/sns.go
package events

import (
	"context"
	"encoding/json"
	"fmt"

	awsx "listing-service/internal/common/aws"
)

// SNSPublisher publishes events to an SNS topic with the event type as a
// message attribute.
type SNSPublisher struct {
	client   awsx.SNSAPI
	topicARN string
}

func NewSNSPublisher(client awsx.SNSAPI, topicARN string) *SNSPublisher {
	return &SNSPublisher{client: client, topicARN: topicARN}
}

func (p *SNSPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}
	in := awsx.TopicMessage(p.topicARN, "", string(body), map[string]string{
		"eventType": string(e.Type),
		"action":    e.Action,
	})
	if _, err := p.client.Publish(ctx, in); err != nil {
		return fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}
	return nil
}

func (p *SNSPublisher) Close() error { return nil }
