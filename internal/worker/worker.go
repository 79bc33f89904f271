package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"podcast-orchestrator/internal/domain"
)

const (
	defaultPollInterval = 500 * time.Millisecond
	jobTimeout          = 30 * time.Second
	initialBackoff      = 1 * time.Second
	maxBackoff          = 5 * time.Minute
)

// CleanupWorker drains the cleanup queue: best-effort deletions of segment
// artifacts left behind after a successful combination. Failures back the
// poll interval off exponentially; they never affect the request path.
type CleanupWorker struct {
	jobRepo  domain.CleanupJobRepository
	store    domain.SegmentStore
	logger   *slog.Logger
	stopChan chan struct{}
	backoff  time.Duration
}

func NewCleanupWorker(
	jobRepo domain.CleanupJobRepository,
	store domain.SegmentStore,
	logger *slog.Logger,
) *CleanupWorker {
	return &CleanupWorker{
		jobRepo:  jobRepo,
		store:    store,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

func (w *CleanupWorker) Start() {
	w.logger.Info("Starting CleanupWorker")
	go w.run()
}

func (w *CleanupWorker) Stop() {
	w.logger.Info("Stopping CleanupWorker")
	close(w.stopChan)
}

func (w *CleanupWorker) run() {
	ticker := time.NewTicker(defaultPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.processNextJob()
			if w.backoff > 0 {
				ticker.Reset(w.backoff)
			} else {
				ticker.Reset(defaultPollInterval)
			}
		}
	}
}

func (w *CleanupWorker) processNextJob() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	job, err := w.jobRepo.AcquireNextJob(ctx)
	if err != nil {
		w.logger.Error("Failed to acquire cleanup job", "error", err)
		return
	}
	if job == nil {
		return // queue empty
	}

	w.logger.Info("Processing cleanup job", "job_id", job.ID, "type", job.JobType)

	var processErr error
	switch job.JobType {
	case domain.JobTypeDeleteSegment:
		processErr = w.store.Delete(ctx, job.SegmentKey)
	default:
		processErr = fmt.Errorf("unknown job type: %s", job.JobType)
	}

	status := "completed"
	var errMsg *string
	if processErr != nil {
		status = "failed"
		msg := processErr.Error()
		errMsg = &msg
		w.backoff = w.nextBackoff(w.backoff)
		w.logger.Warn("Worker backing off", "job_id", job.ID, "backoff", w.backoff, "error", processErr)
	} else {
		w.backoff = 0
	}

	if err := w.jobRepo.MarkStatus(ctx, job.ID, status, errMsg); err != nil {
		w.logger.Error("Failed to update cleanup job status", "job_id", job.ID, "error", err)
	}
}

func (w *CleanupWorker) nextBackoff(current time.Duration) time.Duration {
	if current == 0 {
		return initialBackoff
	}
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}
