package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"podcast-orchestrator/internal/domain"
)

// CleanupJobRepository queues best-effort segment deletions for the worker.
type CleanupJobRepository struct {
	db *pgxpool.Pool
}

func NewCleanupJobRepository(db *pgxpool.Pool) domain.CleanupJobRepository {
	return &CleanupJobRepository{db: db}
}

func (r *CleanupJobRepository) Enqueue(ctx context.Context, job *domain.CleanupJob) error {
	query := `
		INSERT INTO cleanup_jobs (id, job_type, segment_key, status, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		job.ID,
		job.JobType,
		job.SegmentKey,
		job.Status,
		job.ErrorMessage,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue cleanup job: %w", err)
	}
	return nil
}

// AcquireNextJob claims the oldest pending job atomically so concurrent
// workers never process the same deletion twice.
func (r *CleanupJobRepository) AcquireNextJob(ctx context.Context) (*domain.CleanupJob, error) {
	query := `
		WITH next_job AS (
			SELECT id
			FROM cleanup_jobs
			WHERE status = 'new'
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		UPDATE cleanup_jobs
		SET status = 'processing', updated_at = $1
		FROM next_job
		WHERE cleanup_jobs.id = next_job.id
		RETURNING cleanup_jobs.id, cleanup_jobs.job_type, cleanup_jobs.segment_key,
		          cleanup_jobs.status, cleanup_jobs.error_message,
		          cleanup_jobs.created_at, cleanup_jobs.updated_at
	`

	var job domain.CleanupJob
	err := r.db.QueryRow(ctx, query, time.Now()).Scan(
		&job.ID,
		&job.JobType,
		&job.SegmentKey,
		&job.Status,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to acquire cleanup job: %w", err)
	}
	return &job, nil
}

func (r *CleanupJobRepository) MarkStatus(ctx context.Context, jobID uuid.UUID, status string, errMsg *string) error {
	query := `
		UPDATE cleanup_jobs
		SET status = $2, error_message = $3, updated_at = $4
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, jobID, status, errMsg, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update cleanup job: %w", err)
	}
	return nil
}
