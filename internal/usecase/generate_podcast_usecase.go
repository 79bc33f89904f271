package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"podcast-orchestrator/internal/domain"
)

const (
	outlineMaxAttempts = 3
	outlineRetryDelay  = 1 * time.Second

	queriesPerSection = 2
	maxGlobalQueries  = 3

	// Compilation token ceiling, sized from total input characters. A fixed
	// ceiling silently truncates large podcasts; a conservative one wastes
	// latency on small ones.
	compileTokensLow    = 4096
	compileTokensMedium = 8192
	compileTokensHigh   = 16384
	compileCharsLow     = 15000
	compileCharsHigh    = 50000
)

type generatePodcastUsecase struct {
	llm       domain.LLMClient
	search    domain.SearchClient
	runs      domain.RunRepository
	prompts   *PromptBuilder
	validator OutlineValidator
	model     string
	logger    *slog.Logger
}

// NewGeneratePodcastUsecase wires the staged generation pipeline.
func NewGeneratePodcastUsecase(
	llm domain.LLMClient,
	search domain.SearchClient,
	runs domain.RunRepository,
	model string,
	logger *slog.Logger,
) GeneratePodcastUsecase {
	return &generatePodcastUsecase{
		llm:       llm,
		search:    search,
		runs:      runs,
		prompts:   NewPromptBuilder(),
		validator: NewOutlineValidator(),
		model:     model,
		logger:    logger,
	}
}

// generateOutline runs the outline stage: a structured-output attempt first,
// then plain "valid JSON only" prompting, up to outlineMaxAttempts total with
// a fixed delay between attempts. Exhaustion is fatal for the run.
func (u *generatePodcastUsecase) generateOutline(ctx context.Context, content, instructions string) (*domain.PodcastOutline, error) {
	var lastErr error

	for attempt := 1; attempt <= outlineMaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(outlineRetryDelay):
			}
		}

		// The first attempt uses structured output; any failure drops to the
		// plain-prompt variant for the remaining attempts.
		structured := attempt == 1

		outline, err := u.attemptOutline(ctx, content, instructions, structured)
		if err == nil {
			return outline, nil
		}
		lastErr = err
		u.logger.Warn("outline attempt failed",
			slog.Int("attempt", attempt),
			slog.Bool("structured", structured),
			slog.String("error", err.Error()))
	}

	return nil, &domain.OutlineGenerationError{Attempts: outlineMaxAttempts, Err: lastErr}
}

func (u *generatePodcastUsecase) attemptOutline(ctx context.Context, content, instructions string, structured bool) (*domain.PodcastOutline, error) {
	messages := u.prompts.BuildOutlinePrompt(content, instructions, !structured)
	opts := domain.CompletionOptions{
		Model:           u.model,
		ReasoningEffort: domain.ReasoningMedium,
		Temperature:     0.7,
		MaxTokens:       compileTokensLow,
	}
	if structured {
		opts.ResponseFormat = OutlineResponseFormat()
	}

	raw, err := u.llm.Complete(ctx, messages, opts)
	if err != nil {
		return nil, err
	}

	// The structured-output path parses with relaxed validation and relies on
	// the stricter scan below; the plain path runs the full validator.
	outline, err := ParseOutline(raw, !structured)
	if err != nil {
		return nil, err
	}
	if structured {
		if err := strictPlaceholderScan(outline); err != nil {
			return nil, err
		}
	}
	return outline, nil
}

// strictPlaceholderScan is the second, independent screen applied on the
// structured-output path: direct substring checks for the template text that
// schema-constrained models most often emit, plus a key-point length floor.
func strictPlaceholderScan(outline *domain.PodcastOutline) error {
	suspicious := []string{"string", "title here", "section title"}

	check := func(field, value string) error {
		lower := strings.ToLower(strings.TrimSpace(value))
		for _, term := range suspicious {
			if strings.Contains(lower, term) {
				return &domain.PlaceholderContentError{
					Field: field, Value: value,
					Reason: fmt.Sprintf("contains template text %q", term),
				}
			}
		}
		return nil
	}

	if err := check("overview.title", outline.Overview.Title); err != nil {
		return err
	}
	if len(outline.Sections) < domain.MinSections {
		return &domain.PlaceholderContentError{
			Field:  "sections",
			Reason: fmt.Sprintf("need at least %d sections, got %d", domain.MinSections, len(outline.Sections)),
		}
	}
	for i, section := range outline.Sections {
		if err := check(fmt.Sprintf("sections[%d].title", i), section.Title); err != nil {
			return err
		}
		if len(section.KeyPoints) < minKeyPoints {
			return &domain.PlaceholderContentError{
				Field:  fmt.Sprintf("sections[%d].keyPoints", i),
				Reason: fmt.Sprintf("need at least %d key points, got %d", minKeyPoints, len(section.KeyPoints)),
			}
		}
		for j, point := range section.KeyPoints {
			if len(strings.TrimSpace(point)) < 5 {
				return &domain.PlaceholderContentError{
					Field: fmt.Sprintf("sections[%d].keyPoints[%d]", i, j), Value: point,
					Reason: "key point too short to be real content",
				}
			}
		}
	}
	return check("finalThoughts.title", outline.FinalThoughts.Title)
}

// enrichSections runs the research stage. Best-effort only: every failure is
// logged and skipped, and a missing search API key abandons the stage so the
// pipeline proceeds with the unmodified outline.
func (u *generatePodcastUsecase) enrichSections(ctx context.Context, outline *domain.PodcastOutline, content, instructions string, onSection func(sectionID string)) {
	globalQueries := GenerateQueries(content, instructions, maxGlobalQueries)
	if len(globalQueries) == 0 {
		u.logger.Info("research skipped, no queries extracted")
		return
	}

	opts := domain.SearchOptions{
		MaxResults:    3,
		Depth:         domain.SearchDepthBasic,
		IncludeAnswer: true,
	}

	for i := range outline.Sections {
		select {
		case <-ctx.Done():
			return
		default:
		}

		section := &outline.Sections[i]
		if onSection != nil {
			onSection(section.ID)
		}

		queries := []string{section.Title + " " + globalQueries[0]}
		if len(queries) < queriesPerSection {
			queries = append(queries, globalQueries[i%len(globalQueries)])
		}

		for _, q := range queries {
			resp, err := u.search.Search(ctx, q, opts)
			if err != nil {
				if domain.IsNotConfigured(err) {
					u.logger.Info("research skipped, search not configured")
					return
				}
				u.logger.Warn("search query failed, skipping",
					slog.String("query", q),
					slog.String("error", err.Error()))
				continue
			}
			section.SearchContext = append(section.SearchContext, *resp)
		}
	}
}

// draftSectionScripts runs the script stage: every body section in order,
// then the synthetic final-thoughts section, each drafted via a streaming
// completion whose deltas are forwarded through onDelta. Any failure aborts
// the run; partial scripts from earlier sections are discarded with it.
func (u *generatePodcastUsecase) draftSectionScripts(
	ctx context.Context,
	outline *domain.PodcastOutline,
	content string,
	onSection func(sectionID string),
	onDelta func(sectionID, delta string) bool,
) error {
	for i := range outline.Sections {
		section := &outline.Sections[i]
		if onSection != nil {
			onSection(section.ID)
		}
		script, err := u.streamDraft(ctx, u.prompts.BuildSectionPrompt(*section, content), section.ID, onDelta)
		if err != nil {
			return fmt.Errorf("drafting section %q: %w", section.Title, err)
		}
		section.Script = script
	}

	covered := make([]string, 0, len(outline.Sections))
	for _, s := range outline.Sections {
		covered = append(covered, s.Title)
	}
	const finalID = "final-thoughts"
	if onSection != nil {
		onSection(finalID)
	}
	script, err := u.streamDraft(ctx, u.prompts.BuildFinalThoughtsPrompt(outline.FinalThoughts, covered, content), finalID, onDelta)
	if err != nil {
		return fmt.Errorf("drafting final thoughts: %w", err)
	}
	outline.FinalThoughts.Script = script
	return nil
}

func (u *generatePodcastUsecase) streamDraft(ctx context.Context, messages []domain.Message, sectionID string, onDelta func(sectionID, delta string) bool) (string, error) {
	deltas, errs, err := u.llm.StreamComplete(ctx, messages, domain.CompletionOptions{
		Model:           u.model,
		ReasoningEffort: domain.ReasoningLow,
		Temperature:     0.8,
		MaxTokens:       compileTokensLow,
	})
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	for deltas != nil || errs != nil {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case delta, ok := <-deltas:
			if !ok {
				deltas = nil
				continue
			}
			if delta.Text != "" {
				builder.WriteString(delta.Text)
				if onDelta != nil && !onDelta(sectionID, delta.Text) {
					return "", ctx.Err()
				}
			}
			if delta.Done {
				deltas = nil
			}
		case streamErr, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			return "", streamErr
		}
	}

	script := strings.TrimSpace(builder.String())
	if script == "" {
		return "", errors.New("drafting produced no dialogue")
	}
	return script, nil
}

// compileScript runs the compilation stage: merge every drafted script into
// one two-host dialogue. One structured attempt, one plain fallback with an
// inline JSON example, no further retries; a parse failure here is fatal.
func (u *generatePodcastUsecase) compileScript(ctx context.Context, outline *domain.PodcastOutline) (*domain.CompiledScript, error) {
	totalChars := 0
	for _, s := range outline.Sections {
		totalChars += len(s.Script)
	}
	totalChars += len(outline.FinalThoughts.Script)

	maxTokens := compileTokensMedium
	switch {
	case totalChars > compileCharsHigh:
		maxTokens = compileTokensHigh
	case totalChars < compileCharsLow:
		maxTokens = compileTokensLow
	}

	opts := domain.CompletionOptions{
		Model:           u.model,
		ReasoningEffort: domain.ReasoningMedium,
		Temperature:     0.4,
		MaxTokens:       maxTokens,
		ResponseFormat:  CompiledScriptResponseFormat(),
	}

	raw, err := u.llm.Complete(ctx, u.prompts.BuildCompilePrompt(outline, false), opts)
	if err == nil {
		if compiled, parseErr := ParseCompiledScript(raw); parseErr == nil {
			return u.normalizeCompiled(compiled, outline), nil
		} else {
			err = parseErr
		}
	}
	u.logger.Warn("structured compilation failed, falling back to plain prompt",
		slog.String("error", err.Error()))

	opts.ResponseFormat = nil
	raw, err = u.llm.Complete(ctx, u.prompts.BuildCompilePrompt(outline, true), opts)
	if err != nil {
		return nil, &domain.CompilationError{Err: err}
	}
	compiled, err := ParseCompiledScript(raw)
	if err != nil {
		return nil, &domain.CompilationError{Err: err}
	}
	return u.normalizeCompiled(compiled, outline), nil
}

// normalizeCompiled pins the speaker names to the two canonical hosts and
// backfills metadata the model left empty.
func (u *generatePodcastUsecase) normalizeCompiled(compiled *domain.CompiledScript, outline *domain.PodcastOutline) *domain.CompiledScript {
	compiled.Podcast.Speakers = domain.Speakers{A: domain.HostA, B: domain.HostB}
	if compiled.Podcast.Title == "" {
		compiled.Podcast.Title = outline.Overview.Title
	}
	if compiled.Podcast.Description == "" {
		compiled.Podcast.Description = outline.Overview.Description
	}
	if compiled.Podcast.EstimatedDuration == "" {
		compiled.Podcast.EstimatedDuration = outline.Overview.TotalDuration
	}

	for i := range compiled.Podcast.Script {
		line := &compiled.Podcast.Script[i]
		name := strings.TrimSuffix(strings.TrimSpace(line.Speaker), ":")
		switch {
		case strings.EqualFold(name, "A"), strings.EqualFold(name, domain.HostA):
			line.Speaker = domain.HostA
		case strings.EqualFold(name, "B"), strings.EqualFold(name, domain.HostB):
			line.Speaker = domain.HostB
		default:
			// Alternate unknown speakers so playback still gets two voices.
			if i%2 == 0 {
				line.Speaker = domain.HostA
			} else {
				line.Speaker = domain.HostB
			}
		}
		if line.Instruction == "" {
			line.Instruction = "conversational"
		}
	}
	return compiled
}
