// internal/workers/listings/notify-inquiry/handler.go
package notifyinquiry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"listing-service/internal/common/errors"
	"listing-service/internal/common/logger"
	"listing-service/internal/common/validation"
	"listing-service/internal/inquiry"
	"listing-service/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "notify-inquiry"
)

type Handler struct {
	config     *Config
	inquiries  inquiry.Store
	listings   repository.Repository
	notifier   inquiry.Notifier
	errHandler *errors.ErrorHandler
	logger     logger.Logger
	now        func() time.Time
}

func NewHandler(config *Config, inquiries inquiry.Store, listings repository.Repository, notifier inquiry.Notifier, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		inquiries:  inquiries,
		listings:   listings,
		notifier:   notifier,
		errHandler: errors.NewErrorHandler(log),
		logger:     log,
		now:        time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	res, err := validation.Validate(validation.SchemaNotifyInquiry, job.Variables)
	if err == nil && !res.Valid {
		err = errors.NewInvalidRequestError(strings.Join(res.GetErrorMessages(), "; "))
	}
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		err = errors.NewInvalidRequestError(fmt.Sprintf("parse input: %v", err))
		h.errHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err.Error()})
		return err
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err.Error()})
		return err
	}
	return nil
}

// execute loads the inquiry and its listing and notifies the listing's agent.
// Send failures are returned as retryable NOTIFICATION_SEND_FAILED.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	id, err := uuid.Parse(input.InquiryID)
	if err != nil {
		return nil, fmt.Errorf("%w: inquiryId %q", inquiry.ErrInvalidInquiry, input.InquiryID)
	}

	inq, err := h.inquiries.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	prop, err := h.listings.Get(ctx, inq.PropertyID)
	if err != nil {
		return nil, err
	}

	messageID, err := h.notifier.Notify(ctx, inquiry.NewNotification(*inq, prop.Title, prop.AgentID))
	if err != nil {
		return nil, err
	}

	return &Output{
		InquiryID:  inq.ID.String(),
		PropertyID: prop.ID,
		AgentID:    prop.AgentID,
		MessageID:  messageID,
		NotifiedAt: h.now().UTC(),
	}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
