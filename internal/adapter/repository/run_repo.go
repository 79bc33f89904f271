package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"podcast-orchestrator/internal/domain"
)

// RunRepository persists generation runs, progress snapshots, and final
// results in PostgreSQL. The pipeline treats every write here as
// fire-and-forget; errors are returned for the caller to log.
type RunRepository struct {
	db *pgxpool.Pool
}

func NewRunRepository(db *pgxpool.Pool) domain.RunRepository {
	return &RunRepository{db: db}
}

func (r *RunRepository) Create(ctx context.Context, run *domain.GenerationRun) error {
	query := `
		INSERT INTO podcast_runs (id, user_id, fingerprint, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		run.ID,
		run.UserID,
		run.Fingerprint,
		run.Status,
		run.CreatedAt,
		run.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

func (r *RunRepository) SaveProgress(ctx context.Context, runID uuid.UUID, progress domain.GenerationProgress) error {
	// Delta payloads are transient UI data; snapshotting stage/step/progress
	// is enough to resume observability after a reconnect.
	progress.Result = nil

	snapshot, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}

	query := `
		UPDATE podcast_runs
		SET progress = $2, updated_at = $3
		WHERE id = $1
	`
	_, err = r.db.Exec(ctx, query, runID, snapshot, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

func (r *RunRepository) SaveResult(ctx context.Context, runID uuid.UUID, status domain.RunStatus, result *domain.CompiledScript, errMsg string) error {
	var resultBytes []byte
	if result != nil {
		b, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		resultBytes = b
	}

	query := `
		UPDATE podcast_runs
		SET status = $2, result = $3, error_message = NULLIF($4, ''), updated_at = $5
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, runID, status, resultBytes, errMsg, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}
