// internal/workers/inquiry/notify-reviewer/handler.go
package notifyreviewer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"venue-routing/internal/common/errors"
	"venue-routing/internal/common/logger"
	"venue-routing/internal/common/metrics"
	"venue-routing/internal/inquiry"
	"venue-routing/internal/models"
	"venue-routing/internal/notification"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "notify-reviewer"
)

type Handler struct {
	config       *Config
	store        *inquiry.Store
	notifier     *notification.InquiryNotifier
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, store *inquiry.Store, notifier *notification.InquiryNotifier, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        store,
		notifier:     notifier,
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

// execute completes even when the card cannot be posted; the inquiry is then
// left in push_failed for a retry from the process. A redelivered job for an
// inquiry that already has a card, or has moved past review, posts nothing.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	id := strings.TrimSpace(input.InquiryID)
	if id == "" {
		return nil, errors.NewInquiryValidationFailedError("inquiryId is required")
	}

	inq, err := h.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing, posted := inq.Handle(); posted {
		h.logger.Info("review card already posted", map[string]interface{}{
			"inquiryId": inq.ID,
			"status":    inq.Status,
			"messageId": existing.MessageID,
		})
		return &Output{
			InquiryID:     inq.ID,
			Notified:      true,
			ChatID:        existing.ChatID,
			MessageID:     existing.MessageID,
			InquiryStatus: string(inq.Status),
		}, nil
	}
	if !models.CanPostCard(inq.Status) {
		h.logger.Info("inquiry not awaiting a review card", map[string]interface{}{
			"inquiryId": inq.ID,
			"status":    inq.Status,
		})
		return &Output{
			InquiryID:     inq.ID,
			Notified:      false,
			InquiryStatus: string(inq.Status),
		}, nil
	}

	handle, ok := h.notifier.Notify(ctx, inq)
	if !ok {
		return &Output{
			InquiryID:     inq.ID,
			Notified:      false,
			InquiryStatus: string(models.StatusPushFailed),
		}, nil
	}

	return &Output{
		InquiryID:     inq.ID,
		Notified:      true,
		ChatID:        handle.ChatID,
		MessageID:     handle.MessageID,
		InquiryStatus: string(models.StatusReviewing),
	}, nil
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
		"jobKey":   job.Key,
		"notified": output.Notified,
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
