package usecase

import (
	"context"

	"github.com/google/uuid"

	"podcast-orchestrator/internal/domain"
)

// GeneratePodcastInput drives one pipeline run.
type GeneratePodcastInput struct {
	RunID        uuid.UUID
	UserID       string
	Content      string
	Instructions string
}

// GeneratePodcastUsecase is the staged generation pipeline. Stream returns a
// finite, non-restartable sequence of events terminated by exactly one "done"
// on success; after an "error" event the channel simply closes.
type GeneratePodcastUsecase interface {
	Stream(ctx context.Context, input GeneratePodcastInput) <-chan StreamEvent
}

// StreamEventType discriminates the events emitted over a run's channel.
type StreamEventType string

const (
	StreamEventProgress StreamEventType = "progress"
	StreamEventComplete StreamEventType = "complete"
	StreamEventError    StreamEventType = "error"
	StreamEventDone     StreamEventType = "done"
)

// StreamEvent is one unit of the pipeline's streamed event contract.
type StreamEvent struct {
	Type StreamEventType `json:"type"`
	Data interface{}     `json:"data,omitempty"`
}

// CompletePayload accompanies the single "complete" event of a successful run.
type CompletePayload struct {
	Script   *domain.CompiledScript `json:"script"`
	Progress int                    `json:"progress"`
	RunID    string                 `json:"runId"`
}

// ErrorPayload accompanies an "error" event.
type ErrorPayload struct {
	Error string `json:"error"`
}

// ScriptDelta is the Result payload of an incremental script-stage progress
// event: one streamed text increment for the named section.
type ScriptDelta struct {
	SectionID string `json:"sectionId"`
	Delta     string `json:"delta"`
}
