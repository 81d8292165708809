// internal/workers/inquiry/match-venues/handler.go
package matchvenues

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"venue-routing/internal/common/errors"
	"venue-routing/internal/common/logger"
	"venue-routing/internal/common/metrics"
	"venue-routing/internal/inquiry"
	"venue-routing/internal/venue"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "match-venues"
)

type Handler struct {
	config       *Config
	store        *inquiry.Store
	matcher      *venue.Matcher
	persister    *inquiry.MatchPersister
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, store *inquiry.Store, matcher *venue.Matcher, persister *inquiry.MatchPersister, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        store,
		matcher:      matcher,
		persister:    persister,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, errors.NewInquiryValidationFailedError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

// execute always completes once the inquiry loads; an empty catalog is a
// valid "no match" outcome.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	id := strings.TrimSpace(input.InquiryID)
	if id == "" {
		return nil, errors.NewInquiryValidationFailedError("inquiryId is required")
	}

	inq, err := h.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	outcome := h.matcher.MatchVenues(ctx, inq)
	status, persisted := h.persister.Save(ctx, inq.ID, outcome.BestMatch, outcome.Alternatives)

	output := &Output{
		InquiryID:     inq.ID,
		Matched:       outcome.BestMatch != nil,
		BestMatch:     outcome.BestMatch,
		Alternatives:  outcome.Alternatives,
		InquiryStatus: string(status),
		Persisted:     persisted,
	}
	if !persisted {
		output.InquiryStatus = string(inq.Status)
	}
	if outcome.BestMatch != nil {
		output.MatchScore = outcome.BestMatch.Score
	}
	return output, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	bpmnErr := h.errorHandler.HandleJobError(ctx, client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, bpmnErr.Code).Inc()
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey":  job.Key,
		"matched": output.Matched,
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
