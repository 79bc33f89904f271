package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RunStatus tracks a generation run in the persistence sink.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// GenerationRun is the persisted record of one pipeline invocation.
type GenerationRun struct {
	ID          uuid.UUID
	UserID      string
	Fingerprint string
	Status      RunStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RunRepository is the progress/persistence sink the orchestrator reports
// into. All writes are fire-and-forget from the pipeline's point of view:
// failures are logged by the caller and never abort generation.
type RunRepository interface {
	Create(ctx context.Context, run *GenerationRun) error
	SaveProgress(ctx context.Context, runID uuid.UUID, progress GenerationProgress) error
	SaveResult(ctx context.Context, runID uuid.UUID, status RunStatus, result *CompiledScript, errMsg string) error
}

// CleanupJob is a best-effort deletion of a segment artifact, enqueued after a
// successful combination and processed asynchronously by the worker.
type CleanupJob struct {
	ID           uuid.UUID
	JobType      string
	SegmentKey   string
	Status       string
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// JobTypeDeleteSegment removes one stored segment file.
const JobTypeDeleteSegment = "delete_segment"

// CleanupJobRepository is the queue backing the cleanup worker.
type CleanupJobRepository interface {
	Enqueue(ctx context.Context, job *CleanupJob) error
	// AcquireNextJob claims the oldest pending job, or returns nil when the
	// queue is empty. Claiming must be safe under concurrent workers.
	AcquireNextJob(ctx context.Context) (*CleanupJob, error)
	MarkStatus(ctx context.Context, jobID uuid.UUID, status string, errMsg *string) error
}
