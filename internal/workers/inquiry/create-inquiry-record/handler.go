// internal/workers/inquiry/create-inquiry-record/handler.go
package createinquiryrecord

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"venue-routing/internal/common/errors"
	"venue-routing/internal/common/logger"
	"venue-routing/internal/common/metrics"
	"venue-routing/internal/common/validation"
	"venue-routing/internal/inquiry"
	"venue-routing/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "create-inquiry-record"
)

type Handler struct {
	config       *Config
	store        *inquiry.Store
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, store *inquiry.Store, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        store,
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := validation.ValidateAgainstSchema(inputSchema, input); err != nil {
		return nil, errors.NewInquiryValidationFailedError(err.Error())
	}

	headcount := normalizeHeadcount(input.ExpectedHeadcount)
	inq := &models.EventInquiry{
		ID:                uuid.New().String(),
		RequesterName:     strings.TrimSpace(input.RequesterName),
		RequesterEmail:    strings.ToLower(strings.TrimSpace(input.RequesterEmail)),
		RequesterPhone:    strings.TrimSpace(input.RequesterPhone),
		EventName:         strings.TrimSpace(input.EventName),
		EventDate:         strings.TrimSpace(input.EventDate),
		VenuePreference:   strings.TrimSpace(input.VenuePreference),
		ExpectedHeadcount: headcount,
		Requirements:      input.Requirements,
	}

	if err := h.store.Create(ctx, inq); err != nil {
		return nil, err
	}

	h.logger.Info("inquiry record created", map[string]interface{}{
		"inquiryId": inq.ID,
		"venue":     inq.VenuePreference,
		"headcount": headcount,
	})

	return &Output{
		InquiryID:     inq.ID,
		InquiryStatus: string(inq.Status),
		Headcount:     inq.Headcount(),
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// normalizeHeadcount keeps free text as typed and renders numbers without a
// fractional part.
func normalizeHeadcount(v interface{}) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(n)
	case float64:
		return strconv.FormatInt(int64(n), 10)
	case json.Number:
		return n.String()
	default:
		return fmt.Sprint(n)
	}
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
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
