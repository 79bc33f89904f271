package podcast_http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"podcast-orchestrator/internal/domain"
	"podcast-orchestrator/internal/usecase"
)

// Handler exposes the generation pipeline and the audio endpoints.
type Handler struct {
	generateUsecase   usecase.GeneratePodcastUsecase
	synthesizeUsecase usecase.SynthesizeSegmentsUsecase
	combineUsecase    usecase.CombineAudioUsecase
	runRepo           domain.RunRepository
	activeRuns        *usecase.ActiveRunRegistry
	logger            *slog.Logger
}

func NewHandler(
	generateUsecase usecase.GeneratePodcastUsecase,
	synthesizeUsecase usecase.SynthesizeSegmentsUsecase,
	combineUsecase usecase.CombineAudioUsecase,
	runRepo domain.RunRepository,
	activeRuns *usecase.ActiveRunRegistry,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		generateUsecase:   generateUsecase,
		synthesizeUsecase: synthesizeUsecase,
		combineUsecase:    combineUsecase,
		runRepo:           runRepo,
		activeRuns:        activeRuns,
		logger:            logger,
	}
}

// Register mounts all routes on the given group.
func (h *Handler) Register(v1 *echo.Group) {
	v1.POST("/podcasts/generate", h.Generate)
	v1.POST("/podcasts/audio/segments", h.SynthesizeSegments)
	v1.POST("/podcasts/audio/combine", h.CombineAudio)
	v1.GET("/health", h.Health)
}

type generateRequest struct {
	Content      string `json:"content"`
	Instructions string `json:"instructions"`
	UserID       string `json:"userId"`
}

// Generate runs the whole pipeline, streaming the event contract over SSE:
// progress events, one complete, then one done; or a terminal error event.
func (h *Handler) Generate(c echo.Context) error {
	var req generateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if strings.TrimSpace(req.Content) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "content is required"})
	}
	userID := req.UserID
	if userID == "" {
		userID = "anonymous"
	}

	// Advisory guard against duplicate concurrent submissions. Released on
	// every exit path, including client disconnects.
	fingerprint := usecase.Fingerprint(userID, req.Content)
	if !h.activeRuns.Acquire(fingerprint) {
		return c.JSON(http.StatusConflict, map[string]string{
			"error": "a generation for this content is already in progress",
		})
	}
	defer h.activeRuns.Release(fingerprint)

	runID := uuid.New()
	now := time.Now()
	if err := h.runRepo.Create(c.Request().Context(), &domain.GenerationRun{
		ID:          runID,
		UserID:      userID,
		Fingerprint: fingerprint,
		Status:      domain.RunStatusRunning,
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		h.logger.Warn("failed to persist run record",
			slog.String("run_id", runID.String()),
			slog.String("error", err.Error()))
	}

	sse, err := newSSEWriter(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "streaming not supported"})
	}

	ctx := c.Request().Context()
	events := h.generateUsecase.Stream(ctx, usecase.GeneratePodcastInput{
		RunID:        runID,
		UserID:       userID,
		Content:      req.Content,
		Instructions: req.Instructions,
	})
	for event := range events {
		if !sse.Send(event) {
			h.logger.Info("client disconnected during generation",
				slog.String("run_id", runID.String()))
			break
		}
	}
	return nil
}

type synthesizeRequest struct {
	RunID  string                 `json:"runId"`
	Script *domain.CompiledScript `json:"script"`
}

// SynthesizeSegments converts every line of a compiled script to a stored WAV
// segment, streaming one segment_complete event per line (carrying the line's
// original index) and a final summary.
func (h *Handler) SynthesizeSegments(c echo.Context) error {
	var req synthesizeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Script == nil || len(req.Script.Podcast.Script) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "script is required"})
	}
	runID, err := uuid.Parse(req.RunID)
	if err != nil {
		runID = uuid.New()
	}

	sse, err := newSSEWriter(c)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "streaming not supported"})
	}

	generated, err := h.synthesizeUsecase.Execute(c.Request().Context(), runID, req.Script, func(outcome usecase.SegmentOutcome) {
		if outcome.Err != nil {
			sse.Send(map[string]interface{}{
				"type": "segment_failed",
				"data": map[string]interface{}{"index": outcome.Index, "error": outcome.Err.Error()},
			})
			return
		}
		sse.Send(map[string]interface{}{
			"type": "segment_complete",
			"data": outcome.Generated,
		})
	})
	if err != nil {
		sse.Send(map[string]interface{}{"type": "error", "data": map[string]string{"error": err.Error()}})
		return nil
	}

	sse.Send(map[string]interface{}{
		"type": "done",
		"data": map[string]interface{}{"runId": runID.String(), "segments": generated},
	})
	return nil
}

type combineRequest struct {
	RunID    string                    `json:"runId"`
	Title    string                    `json:"title"`
	Segments []domain.GeneratedSegment `json:"segments"`
}

// CombineAudio merges the named segments into one playable WAV.
func (h *Handler) CombineAudio(c echo.Context) error {
	var req combineRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if len(req.Segments) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "segments are required"})
	}
	runID, err := uuid.Parse(req.RunID)
	if err != nil {
		runID = uuid.New()
	}

	combined, err := h.combineUsecase.Execute(c.Request().Context(), usecase.CombineAudioInput{
		RunID:    runID,
		Title:    req.Title,
		Segments: req.Segments,
	})
	if err != nil {
		var mismatch *domain.WavFormatMismatchError
		switch {
		case errors.As(err, &mismatch),
			errors.Is(err, domain.ErrNotWav),
			errors.Is(err, domain.ErrEmptyWav),
			errors.Is(err, domain.ErrTruncatedWav):
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, combined)
}

// Health reports liveness.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
