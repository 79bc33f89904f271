package usecase

import (
	"context"
	"log/slog"

	"podcast-orchestrator/internal/domain"
)

// Stage progress boundaries. Progress within a run is monotonically
// non-decreasing and reaches exactly 100 on success.
const (
	progressOutlineStart  = 2
	progressOutlineDone   = 15
	progressResearchDone  = 30
	progressScriptDone    = 80
	progressCombiningDone = 95
	progressFinal         = 100
)

// Stream runs the whole pipeline as a cooperative task, yielding events to
// the caller. Every send is guarded by ctx so a disconnected client turns
// sends into silent no-ops; cancellation is observed at stage boundaries and
// per-section iterations.
func (u *generatePodcastUsecase) Stream(ctx context.Context, input GeneratePodcastInput) <-chan StreamEvent {
	events := make(chan StreamEvent, 16)
	go func() {
		defer close(events)
		u.run(ctx, input, events)
	}()
	return events
}

func (u *generatePodcastUsecase) run(ctx context.Context, input GeneratePodcastInput, events chan<- StreamEvent) {
	tracker := domain.NewStageTracker()
	reporter := &progressReporter{usecase: u, input: input, events: events}

	// Outline stage.
	if err := tracker.Advance(domain.StageOutline); err != nil {
		u.fail(ctx, reporter, err)
		return
	}
	if !reporter.emit(ctx, domain.GenerationProgress{
		Stage: domain.StageOutline, Step: "Designing episode outline", Progress: progressOutlineStart,
	}) {
		return
	}

	outline, err := u.generateOutline(ctx, input.Content, input.Instructions)
	if err != nil {
		u.fail(ctx, reporter, err)
		return
	}
	if !reporter.emit(ctx, domain.GenerationProgress{
		Stage: domain.StageOutline, Step: "Outline ready", Progress: progressOutlineDone, Result: outline,
	}) {
		return
	}

	// Research stage: additive, never blocking.
	if err := tracker.Advance(domain.StageResearch); err != nil {
		u.fail(ctx, reporter, err)
		return
	}
	sectionCount := len(outline.Sections)
	researched := 0
	u.enrichSections(ctx, outline, input.Content, input.Instructions, func(sectionID string) {
		researched++
		reporter.emit(ctx, domain.GenerationProgress{
			Stage:          domain.StageResearch,
			Step:           "Researching section topics",
			Progress:       interpolate(progressOutlineDone, progressResearchDone, researched, sectionCount),
			CurrentSection: sectionID,
		})
	})
	if ctx.Err() != nil {
		return
	}
	if !reporter.emit(ctx, domain.GenerationProgress{
		Stage: domain.StageResearch, Step: "Research complete", Progress: progressResearchDone,
	}) {
		return
	}

	// Script stage: one streaming draft per section, then final thoughts.
	if err := tracker.Advance(domain.StageScript); err != nil {
		u.fail(ctx, reporter, err)
		return
	}
	drafted := 0
	totalDrafts := sectionCount + 1
	err = u.draftSectionScripts(ctx, outline, input.Content,
		func(sectionID string) {
			drafted++
			reporter.emit(ctx, domain.GenerationProgress{
				Stage:          domain.StageScript,
				Step:           "Drafting dialogue",
				Progress:       interpolate(progressResearchDone, progressScriptDone, drafted-1, totalDrafts),
				CurrentSection: sectionID,
			})
		},
		func(sectionID, delta string) bool {
			return reporter.emit(ctx, domain.GenerationProgress{
				Stage:          domain.StageScript,
				Step:           "Drafting dialogue",
				Progress:       interpolate(progressResearchDone, progressScriptDone, drafted, totalDrafts),
				CurrentSection: sectionID,
				Result:         ScriptDelta{SectionID: sectionID, Delta: delta},
			})
		})
	if err != nil {
		u.fail(ctx, reporter, err)
		return
	}

	// Compilation stage.
	if err := tracker.Advance(domain.StageCombining); err != nil {
		u.fail(ctx, reporter, err)
		return
	}
	if !reporter.emit(ctx, domain.GenerationProgress{
		Stage: domain.StageCombining, Step: "Merging section scripts", Progress: progressScriptDone,
	}) {
		return
	}

	compiled, err := u.compileScript(ctx, outline)
	if err != nil {
		u.fail(ctx, reporter, err)
		return
	}

	if err := tracker.Advance(domain.StageFinalizing); err != nil {
		u.fail(ctx, reporter, err)
		return
	}
	if !reporter.emit(ctx, domain.GenerationProgress{
		Stage: domain.StageFinalizing, Step: "Polishing final script", Progress: progressCombiningDone,
	}) {
		return
	}

	u.saveResult(ctx, input, domain.RunStatusCompleted, compiled, "")

	final := domain.GenerationProgress{
		Stage: domain.StageFinalizing, Step: "Podcast script ready", Progress: progressFinal, Result: compiled,
	}
	if !reporter.emit(ctx, final) {
		return
	}
	if !sendEvent(ctx, events, StreamEvent{Type: StreamEventComplete, Data: CompletePayload{
		Script:   compiled,
		Progress: progressFinal,
		RunID:    input.RunID.String(),
	}}) {
		return
	}
	sendEvent(ctx, events, StreamEvent{Type: StreamEventDone})
}

// fail emits the single terminal error sequence: one progress event carrying
// the error, then the error event. No "done" follows an error.
func (u *generatePodcastUsecase) fail(ctx context.Context, reporter *progressReporter, err error) {
	if ctx.Err() != nil {
		return
	}
	u.logger.Error("generation run failed",
		slog.String("run_id", reporter.input.RunID.String()),
		slog.String("error", err.Error()))
	u.saveResult(ctx, reporter.input, domain.RunStatusFailed, nil, err.Error())

	reporter.emit(ctx, domain.GenerationProgress{
		Stage:    reporter.lastStage,
		Step:     "Generation failed",
		Progress: reporter.lastProgress,
		Error:    err.Error(),
	})
	sendEvent(ctx, reporter.events, StreamEvent{Type: StreamEventError, Data: ErrorPayload{Error: err.Error()}})
}

// saveResult writes the terminal run record. Persistence failures are logged,
// never propagated.
func (u *generatePodcastUsecase) saveResult(ctx context.Context, input GeneratePodcastInput, status domain.RunStatus, compiled *domain.CompiledScript, errMsg string) {
	if err := u.runs.SaveResult(context.WithoutCancel(ctx), input.RunID, status, compiled, errMsg); err != nil {
		u.logger.Warn("failed to persist run result",
			slog.String("run_id", input.RunID.String()),
			slog.String("error", err.Error()))
	}
}

// progressReporter clamps progress to be non-decreasing, snapshots each event
// to the persistence sink fire-and-forget, and forwards it to the caller.
type progressReporter struct {
	usecase      *generatePodcastUsecase
	input        GeneratePodcastInput
	events       chan<- StreamEvent
	lastProgress int
	lastStage    domain.Stage
}

func (r *progressReporter) emit(ctx context.Context, p domain.GenerationProgress) bool {
	if p.Progress < r.lastProgress {
		p.Progress = r.lastProgress
	}
	r.lastProgress = p.Progress
	r.lastStage = p.Stage

	if err := r.usecase.runs.SaveProgress(context.WithoutCancel(ctx), r.input.RunID, p); err != nil {
		r.usecase.logger.Warn("failed to persist progress snapshot",
			slog.String("run_id", r.input.RunID.String()),
			slog.String("error", err.Error()))
	}

	return sendEvent(ctx, r.events, StreamEvent{Type: StreamEventProgress, Data: p})
}

func sendEvent(ctx context.Context, events chan<- StreamEvent, event StreamEvent) bool {
	select {
	case <-ctx.Done():
		return false
	case events <- event:
		return true
	}
}

// interpolate maps step i of n onto the [from, to] progress range.
func interpolate(from, to, i, n int) int {
	if n <= 0 {
		return from
	}
	if i > n {
		i = n
	}
	return from + (to-from)*i/n
}
