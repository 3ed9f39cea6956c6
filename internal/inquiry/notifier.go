// internal/inquiry/notifier.go
package inquiry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	awsx "listing-service/internal/common/aws"
	"listing-service/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
)

var ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")

// Notification tells an agent about a new inquiry.
type Notification struct {
	InquiryID     string `json:"inquiryId"`
	PropertyID    int64  `json:"propertyId"`
	PropertyTitle string `json:"propertyTitle"`
	AgentID       int64  `json:"agentId"`
	AgentEmail    string `json:"agentEmail,omitempty"`
	BuyerName     string `json:"buyerName,omitempty"`
	BuyerEmail    string `json:"buyerEmail,omitempty"`
	Message       string `json:"message"`
}

// NewNotification describes inq on the given listing.
func NewNotification(inq Inquiry, propertyTitle string, agentID int64) Notification {
	return Notification{
		InquiryID:     inq.ID.String(),
		PropertyID:    inq.PropertyID,
		PropertyTitle: propertyTitle,
		AgentID:       agentID,
		BuyerName:     inq.Name,
		BuyerEmail:    inq.Email,
		Message:       inq.Message,
	}
}

// Notifier delivers inquiry notifications and returns the provider message id.
type Notifier interface {
	Notify(ctx context.Context, n Notification) (string, error)
}

// NopNotifier drops notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Notification) (string, error) { return "", nil }

// SESNotifier emails the agent through SES. Notifications without an agent
// address go to the shared inbox.
type SESNotifier struct {
	client awsx.SESAPI
	from   string
	inbox  string
	logger logger.Logger
}

func NewSESNotifier(client awsx.SESAPI, from, inbox string, log logger.Logger) *SESNotifier {
	return &SESNotifier{client: client, from: from, inbox: inbox, logger: log}
}

func (s *SESNotifier) Notify(ctx context.Context, n Notification) (string, error) {
	to := n.AgentEmail
	if to == "" {
		to = s.inbox
	}
	if to == "" {
		return "", fmt.Errorf("%w: no recipient for agent %d", ErrNotificationSendFailed, n.AgentID)
	}

	subject, body := render(n)
	out, err := s.client.SendEmail(ctx, awsx.TextEmail(s.from, to, n.BuyerEmail, subject, body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotificationSendFailed, err)
	}

	messageID := aws.ToString(out.MessageId)
	s.logger.Info("Inquiry notification sent", map[string]interface{}{
		"inquiryId": n.InquiryID,
		"agentId":   n.AgentID,
		"messageId": messageID,
	})
	return messageID, nil
}

func render(n Notification) (string, string) {
	title := n.PropertyTitle
	if title == "" {
		title = fmt.Sprintf("listing #%d", n.PropertyID)
	}
	subject := "New inquiry for " + title

	var b strings.Builder
	fmt.Fprintf(&b, "A buyer sent an inquiry about %s (listing #%d).\n\n", title, n.PropertyID)
	if n.BuyerName != "" {
		fmt.Fprintf(&b, "Name: %s\n", n.BuyerName)
	}
	if n.BuyerEmail != "" {
		fmt.Fprintf(&b, "Email: %s\n", n.BuyerEmail)
	}
	fmt.Fprintf(&b, "\n%s\n\nInquiry %s\n", n.Message, n.InquiryID)
	return subject, b.String()
}
