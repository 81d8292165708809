// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"sync"
	"time"

	"venue-routing/internal/common/config"
	"venue-routing/internal/common/logger"
	"venue-routing/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Job outcomes reported to the JobRecorder.
const (
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
	JobStatusBPMNError  = "bpmn_error"
	JobStatusIncomplete = "incomplete"
)

// JobRecorder receives one outcome per job; *observability.Observability
// implements it.
type JobRecorder interface {
	RecordJobProcessed(ctx context.Context, taskType, status string)
	RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string)
}

type Worker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// NewWorker opens a job worker for taskType. The handler is wrapped so every
// job updates the active gauge and duration histogram and reports its outcome
// to rec, which may be nil.
func NewWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler worker.JobHandler, rec JobRecorder, log logger.Logger) *Worker {
	log = log.WithFields(map[string]interface{}{"taskType": taskType})

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(instrument(taskType, handler, rec)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	log.Info("worker started", map[string]interface{}{
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})

	return &Worker{
		worker:   jobWorker,
		logger:   log,
		taskType: taskType,
	}
}

func instrument(taskType string, handler worker.JobHandler, rec JobRecorder) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		sc := &statusClient{JobClient: client, status: JobStatusIncomplete}
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer func() {
			elapsed := time.Since(start)
			metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
			if rec != nil {
				status := sc.outcome()
				rec.RecordJobProcessed(context.Background(), taskType, status)
				rec.RecordJobDuration(context.Background(), taskType, elapsed, status)
			}
		}()
		handler(sc, job)
	}
}

// statusClient remembers which terminal command the handler built last.
type statusClient struct {
	worker.JobClient
	mu     sync.Mutex
	status string
}

func (c *statusClient) set(status string) {
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
}

func (c *statusClient) outcome() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *statusClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	c.set(JobStatusCompleted)
	return c.JobClient.NewCompleteJobCommand()
}

func (c *statusClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	c.set(JobStatusFailed)
	return c.JobClient.NewFailJobCommand()
}

func (c *statusClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	c.set(JobStatusBPMNError)
	return c.JobClient.NewThrowErrorCommand()
}

func (w *Worker) TaskType() string {
	return w.taskType
}

// Stop closes the job worker and waits for in-flight jobs.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker", nil)
	w.worker.Close()
	w.worker.AwaitClose()
}
