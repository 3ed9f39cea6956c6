// internal/workers/listings/notify-inquiry/models.go
package notifyinquiry

import "time"

type Input struct {
	InquiryID string `json:"inquiryId"`
}

type Output struct {
	InquiryID  string    `json:"inquiryId"`
	PropertyID int64     `json:"propertyId"`
	AgentID    int64     `json:"agentId"`
	MessageID  string    `json:"messageId"`
	NotifiedAt time.Time `json:"notifiedAt"`
}
