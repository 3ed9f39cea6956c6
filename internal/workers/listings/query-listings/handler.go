// internal/workers/listings/query-listings/handler.go
package querylistings

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"listing-service/internal/catalog"
	"listing-service/internal/common/errors"
	"listing-service/internal/common/logger"
	"listing-service/internal/common/validation"
	"listing-service/internal/listing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "query-listings"
)

// Catalog is the public browse view.
type Catalog interface {
	Browse(ctx context.Context, entry string, state listing.BrowseState) (*catalog.Page, error)
}

// AgentListings is the browse view restricted to one agent.
type AgentListings interface {
	MyListings(ctx context.Context, agentID int64, state listing.BrowseState) (listing.Result, error)
}

type Handler struct {
	config     *Config
	catalog    Catalog
	agents     AgentListings
	errHandler *errors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, cat Catalog, agents AgentListings, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		catalog:    cat,
		agents:     agents,
		errHandler: errors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := parseInput(job.Variables)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	return h.completeJob(ctx, client, job, output)
}

func parseInput(variables string) (*Input, error) {
	res, err := validation.Validate(validation.SchemaQueryListings, variables)
	if err != nil {
		return nil, errors.NewInvalidRequestError(err.Error())
	}
	if !res.Valid {
		return nil, errors.NewInvalidRequestError(strings.Join(res.GetErrorMessages(), "; "))
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInvalidRequestError(fmt.Sprintf("parse input: %v", err))
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.NewInvalidRequestError("input cannot be nil")
	}

	filter, err := listing.ParseFilter(input.Name, priceString(input.MinPrice), priceString(input.MaxPrice), input.Type, input.Location)
	if err != nil {
		return nil, err
	}

	pageSize := input.PageSize
	if pageSize < 1 {
		pageSize = h.config.PageSize
	}
	state := listing.NewBrowseState(pageSize).
		WithFilter(filter).
		WithSort(listing.ParseSortKey(input.Sort)).
		WithPage(max(input.Page, 1))

	if input.AgentID > 0 {
		res, err := h.agents.MyListings(ctx, input.AgentID, state)
		if err != nil {
			return nil, err
		}
		return newOutput(res, false, ""), nil
	}

	page, err := h.catalog.Browse(ctx, catalog.EntryWorker, state)
	if err != nil {
		return nil, err
	}
	return newOutput(page.Result, page.Fallback, page.Message), nil
}

func newOutput(res listing.Result, fallback bool, message string) *Output {
	return &Output{
		Listings:        res.Items,
		Total:           res.Total,
		Pagination:      res.Meta,
		Window:          res.Window,
		Fallback:        fallback,
		FallbackMessage: message,
	}
}

// priceString renders a numeric or string bound the way a query string carries it.
func priceString(v interface{}) string {
	switch p := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(p, 'f', -1, 64)
	case string:
		return p
	default:
		return fmt.Sprint(p)
	}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	return nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
