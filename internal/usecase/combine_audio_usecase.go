package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"podcast-orchestrator/internal/domain"
)

// CombineAudioInput names the segments to merge, in script order.
type CombineAudioInput struct {
	RunID    uuid.UUID
	Title    string
	Segments []domain.GeneratedSegment
}

// CombineAudioUsecase downloads the stored segments, concatenates their PCM
// payloads under one fresh header, persists the result, and enqueues
// best-effort cleanup of the inputs.
type CombineAudioUsecase interface {
	Execute(ctx context.Context, input CombineAudioInput) (*domain.CombinedAudio, error)
}

type combineAudioUsecase struct {
	store  domain.SegmentStore
	jobs   domain.CleanupJobRepository
	logger *slog.Logger
}

// NewCombineAudioUsecase wires the combination flow.
func NewCombineAudioUsecase(store domain.SegmentStore, jobs domain.CleanupJobRepository, logger *slog.Logger) CombineAudioUsecase {
	return &combineAudioUsecase{store: store, jobs: jobs, logger: logger}
}

// Execute combines the segments in original script order. Mismatched PCM
// formats are rejected. Cleanup of the contributing segments is enqueued
// after success and never fails the call.
func (u *combineAudioUsecase) Execute(ctx context.Context, input CombineAudioInput) (*domain.CombinedAudio, error) {
	if len(input.Segments) == 0 {
		return nil, domain.ErrNoBuffers
	}

	segments := make([]domain.GeneratedSegment, len(input.Segments))
	copy(segments, input.Segments)
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Index < segments[j].Index
	})

	buffers := make([][]byte, 0, len(segments))
	for _, seg := range segments {
		data, err := u.store.Fetch(ctx, seg.Key)
		if err != nil {
			return nil, fmt.Errorf("fetching segment %d (%s): %w", seg.Index, seg.Key, err)
		}
		buffers = append(buffers, data)
	}

	combined, err := domain.CombineWav(buffers)
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("podcast-%s.wav", input.RunID)
	key := fmt.Sprintf("%s/%s", input.RunID, filename)
	if err := u.store.Put(ctx, key, combined.Bytes); err != nil {
		return nil, fmt.Errorf("storing combined audio: %w", err)
	}

	u.enqueueCleanup(ctx, segments)

	return &domain.CombinedAudio{
		Key:                      key,
		Filename:                 filename,
		Title:                    input.Title,
		FileSize:                 len(combined.Bytes),
		EstimatedDurationSeconds: combined.DurationSeconds,
		SegmentCount:             combined.SegmentCount,
	}, nil
}

func (u *combineAudioUsecase) enqueueCleanup(ctx context.Context, segments []domain.GeneratedSegment) {
	now := time.Now()
	for _, seg := range segments {
		job := &domain.CleanupJob{
			ID:         uuid.New(),
			JobType:    domain.JobTypeDeleteSegment,
			SegmentKey: seg.Key,
			Status:     "new",
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := u.jobs.Enqueue(context.WithoutCancel(ctx), job); err != nil {
			u.logger.Warn("failed to enqueue segment cleanup",
				slog.String("segment_key", seg.Key),
				slog.String("error", err.Error()))
		}
	}
}
