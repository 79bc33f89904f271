package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"podcast-orchestrator/internal/domain"
)

// synthesisConcurrency bounds the parallel TTS fan-out. Segments are
// independent, so they may synthesize out of order; results carry their
// original script index and are re-sorted before combination.
const synthesisConcurrency = 4

// SegmentOutcome reports one segment's synthesis. Failed segments never abort
// their siblings; the caller decides what a partial set means.
type SegmentOutcome struct {
	Index     int
	Generated *domain.GeneratedSegment
	Err       error
}

// SynthesizeSegmentsUsecase converts every line of a compiled script into a
// stored WAV segment.
type SynthesizeSegmentsUsecase interface {
	Execute(ctx context.Context, runID uuid.UUID, script *domain.CompiledScript, onSegment func(SegmentOutcome)) ([]domain.GeneratedSegment, error)
}

type synthesizeSegmentsUsecase struct {
	speech domain.SpeechClient
	store  domain.SegmentStore
	logger *slog.Logger
}

// NewSynthesizeSegmentsUsecase wires the segment fan-out.
func NewSynthesizeSegmentsUsecase(speech domain.SpeechClient, store domain.SegmentStore, logger *slog.Logger) SynthesizeSegmentsUsecase {
	return &synthesizeSegmentsUsecase{speech: speech, store: store, logger: logger}
}

// Execute synthesizes all script lines with bounded concurrency. onSegment
// fires once per line as it completes (in completion order, carrying the
// original index); the returned slice is ordered by script position and
// contains only the successful segments. An error is returned only when no
// segment succeeded.
func (u *synthesizeSegmentsUsecase) Execute(ctx context.Context, runID uuid.UUID, script *domain.CompiledScript, onSegment func(SegmentOutcome)) ([]domain.GeneratedSegment, error) {
	lines := script.Podcast.Script
	if len(lines) == 0 {
		return nil, fmt.Errorf("compiled script has no lines")
	}

	outcomes := make([]SegmentOutcome, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(synthesisConcurrency)

	for i, line := range lines {
		i, line := i, line
		g.Go(func() error {
			outcome := u.synthesizeOne(gctx, runID, i, line)
			outcomes[i] = outcome
			if onSegment != nil {
				onSegment(outcome)
			}
			// Per-segment failures are isolated; only cancellation stops the group.
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	generated := make([]domain.GeneratedSegment, 0, len(lines))
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			u.logger.Warn("segment synthesis failed",
				slog.Int("index", outcome.Index),
				slog.String("error", outcome.Err.Error()))
			continue
		}
		generated = append(generated, *outcome.Generated)
	}
	if len(generated) == 0 {
		return nil, fmt.Errorf("all %d segments failed to synthesize", len(lines))
	}
	return generated, nil
}

func (u *synthesizeSegmentsUsecase) synthesizeOne(ctx context.Context, runID uuid.UUID, index int, line domain.ScriptLine) SegmentOutcome {
	audio, err := u.speech.Synthesize(ctx, line.Text, line.Speaker, line.Instruction)
	if err != nil {
		return SegmentOutcome{Index: index, Err: err}
	}

	filename := fmt.Sprintf("segment-%03d.wav", index)
	key := fmt.Sprintf("%s/%s", runID, filename)
	if err := u.store.Put(ctx, key, audio); err != nil {
		return SegmentOutcome{Index: index, Err: fmt.Errorf("storing segment %d: %w", index, err)}
	}

	return SegmentOutcome{
		Index: index,
		Generated: &domain.GeneratedSegment{
			Index:    index,
			Segment:  domain.AudioSegment{Speaker: line.Speaker, Text: line.Text, Instruction: line.Instruction},
			Key:      key,
			Filename: filename,
			FileSize: len(audio),
		},
	}
}
