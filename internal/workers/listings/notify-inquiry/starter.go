// internal/workers/listings/notify-inquiry/starter.go
package notifyinquiry

import (
	"context"
	"strconv"

	"listing-service/internal/common/camunda"
	"listing-service/internal/inquiry"
)

// DefaultProcessID is the BPMN process whose service task runs this worker.
const DefaultProcessID = "inquiry-notification"

// Starter is an inquiry.Notifier that hands delivery to the workflow engine:
// it starts a process instance and returns its key. The process's
// notify-inquiry task then sends the email with engine-managed retries.
type Starter struct {
	create func(ctx context.Context, vars Input) (int64, error)
}

// NewStarter starts processID on c for each notification.
func NewStarter(c *camunda.Client, processID string) *Starter {
	if processID == "" {
		processID = DefaultProcessID
	}
	return newStarter(func(ctx context.Context, vars Input) (int64, error) {
		var key int64
		err := c.ExecuteWithRetry(ctx, "create "+processID+" instance", func(ctx context.Context) error {
			cmd, err := c.GetClient().NewCreateInstanceCommand().
				BPMNProcessId(processID).
				LatestVersion().
				VariablesFromObject(vars)
			if err != nil {
				return err
			}
			resp, err := cmd.Send(ctx)
			if err != nil {
				return err
			}
			key = resp.GetProcessInstanceKey()
			return nil
		})
		return key, err
	})
}

func newStarter(create func(ctx context.Context, vars Input) (int64, error)) *Starter {
	return &Starter{create: create}
}

func (s *Starter) Notify(ctx context.Context, n inquiry.Notification) (string, error) {
	key, err := s.create(ctx, Input{InquiryID: n.InquiryID})
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(key, 10), nil
}
