package podcast_http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-orchestrator/internal/adapter/podcast_http"
	"podcast-orchestrator/internal/domain"
	"podcast-orchestrator/internal/usecase"
)

type stubGenerate struct {
	events []usecase.StreamEvent
}

func (s *stubGenerate) Stream(ctx context.Context, _ usecase.GeneratePodcastInput) <-chan usecase.StreamEvent {
	out := make(chan usecase.StreamEvent, len(s.events))
	for _, ev := range s.events {
		out <- ev
	}
	close(out)
	return out
}

type stubSynthesize struct {
	execute func(runID uuid.UUID, script *domain.CompiledScript, onSegment func(usecase.SegmentOutcome)) ([]domain.GeneratedSegment, error)
}

func (s *stubSynthesize) Execute(_ context.Context, runID uuid.UUID, script *domain.CompiledScript, onSegment func(usecase.SegmentOutcome)) ([]domain.GeneratedSegment, error) {
	return s.execute(runID, script, onSegment)
}

type stubCombine struct {
	execute func(input usecase.CombineAudioInput) (*domain.CombinedAudio, error)
}

func (s *stubCombine) Execute(_ context.Context, input usecase.CombineAudioInput) (*domain.CombinedAudio, error) {
	return s.execute(input)
}

type speechFunc func(ctx context.Context, text, speaker, instruction string) ([]byte, error)

func (f speechFunc) Synthesize(ctx context.Context, text, speaker, instruction string) ([]byte, error) {
	return f(ctx, text, speaker, instruction)
}

type memorySegments struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memorySegments) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	return nil
}

func (m *memorySegments) Fetch(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memorySegments) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type noopRunRepo struct{}

func (noopRunRepo) Create(context.Context, *domain.GenerationRun) error { return nil }

func (noopRunRepo) SaveProgress(context.Context, uuid.UUID, domain.GenerationProgress) error {
	return nil
}

func (noopRunRepo) SaveResult(context.Context, uuid.UUID, domain.RunStatus, *domain.CompiledScript, string) error {
	return nil
}

type handlerDeps struct {
	generate   *stubGenerate
	synthesize usecase.SynthesizeSegmentsUsecase
	combine    *stubCombine
	activeRuns *usecase.ActiveRunRegistry
}

func newTestHandler(deps handlerDeps) *podcast_http.Handler {
	if deps.generate == nil {
		deps.generate = &stubGenerate{}
	}
	if deps.synthesize == nil {
		deps.synthesize = &stubSynthesize{}
	}
	if deps.combine == nil {
		deps.combine = &stubCombine{}
	}
	if deps.activeRuns == nil {
		deps.activeRuns = usecase.NewActiveRunRegistry()
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return podcast_http.NewHandler(deps.generate, deps.synthesize, deps.combine, noopRunRepo{}, deps.activeRuns, logger)
}

func doJSON(h *podcast_http.Handler, method, path, body string) *httptest.ResponseRecorder {
	e := echo.New()
	h.Register(e.Group("/v1"))
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGenerate_StreamsEvents(t *testing.T) {
	gen := &stubGenerate{events: []usecase.StreamEvent{
		{Type: usecase.StreamEventProgress, Data: domain.GenerationProgress{Stage: domain.StageOutline, Step: "Designing episode outline", Progress: 2}},
		{Type: usecase.StreamEventComplete, Data: usecase.CompletePayload{Progress: 100}},
		{Type: usecase.StreamEventDone},
	}}
	h := newTestHandler(handlerDeps{generate: gen})

	rec := doJSON(h, http.MethodPost, "/v1/podcasts/generate", `{"content":"an article about bees","userId":"u1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, `data: {"type":"progress"`)
	assert.Contains(t, body, `"type":"complete"`)
	assert.Contains(t, body, `"type":"done"`)
	assert.Equal(t, 3, strings.Count(body, "data: "))
}

func TestGenerate_RequiresContent(t *testing.T) {
	h := newTestHandler(handlerDeps{})

	rec := doJSON(h, http.MethodPost, "/v1/podcasts/generate", `{"content":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "content is required")
}

func TestGenerate_DuplicateRunConflict(t *testing.T) {
	registry := usecase.NewActiveRunRegistry()
	require.True(t, registry.Acquire(usecase.Fingerprint("u1", "an article about bees")))

	h := newTestHandler(handlerDeps{activeRuns: registry})
	rec := doJSON(h, http.MethodPost, "/v1/podcasts/generate", `{"content":"an article about bees","userId":"u1"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already in progress")
}

func TestGenerate_ReleasesFingerprintAfterRun(t *testing.T) {
	registry := usecase.NewActiveRunRegistry()
	h := newTestHandler(handlerDeps{
		generate:   &stubGenerate{events: []usecase.StreamEvent{{Type: usecase.StreamEventDone}}},
		activeRuns: registry,
	})

	first := doJSON(h, http.MethodPost, "/v1/podcasts/generate", `{"content":"same content","userId":"u1"}`)
	assert.Equal(t, http.StatusOK, first.Code)

	second := doJSON(h, http.MethodPost, "/v1/podcasts/generate", `{"content":"same content","userId":"u1"}`)
	assert.Equal(t, http.StatusOK, second.Code, "fingerprint must be released when a run finishes")
}

func TestSynthesizeSegments_StreamsOutcomes(t *testing.T) {
	synth := &stubSynthesize{execute: func(runID uuid.UUID, script *domain.CompiledScript, onSegment func(usecase.SegmentOutcome)) ([]domain.GeneratedSegment, error) {
		generated := make([]domain.GeneratedSegment, 0, len(script.Podcast.Script))
		for i := range script.Podcast.Script {
			seg := domain.GeneratedSegment{Index: i, Key: "k", Filename: "f.wav", FileSize: 10}
			onSegment(usecase.SegmentOutcome{Index: i, Generated: &seg})
			generated = append(generated, seg)
		}
		return generated, nil
	}}
	h := newTestHandler(handlerDeps{synthesize: synth})

	body := `{"runId":"` + uuid.NewString() + `","script":{"podcast":{"script":[{"speaker":"Rachel","text":"hi"},{"speaker":"Mike","text":"hello"}]}}}`
	rec := doJSON(h, http.MethodPost, "/v1/podcasts/audio/segments", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	out := rec.Body.String()
	assert.Equal(t, 2, strings.Count(out, `"type":"segment_complete"`))
	assert.Contains(t, out, `"type":"done"`)
	assert.NotContains(t, out, `"type":"error"`)
}

func TestSynthesizeSegments_ReportsFailures(t *testing.T) {
	synth := &stubSynthesize{execute: func(runID uuid.UUID, script *domain.CompiledScript, onSegment func(usecase.SegmentOutcome)) ([]domain.GeneratedSegment, error) {
		onSegment(usecase.SegmentOutcome{Index: 0, Err: &domain.SynthesisError{Status: 500, Body: "backend down"}})
		seg := domain.GeneratedSegment{Index: 1}
		onSegment(usecase.SegmentOutcome{Index: 1, Generated: &seg})
		return []domain.GeneratedSegment{seg}, nil
	}}
	h := newTestHandler(handlerDeps{synthesize: synth})

	body := `{"script":{"podcast":{"script":[{"speaker":"Rachel","text":"a"},{"speaker":"Mike","text":"b"}]}}}`
	rec := doJSON(h, http.MethodPost, "/v1/podcasts/audio/segments", body)

	out := rec.Body.String()
	assert.Contains(t, out, `"type":"segment_failed"`)
	assert.Contains(t, out, `"type":"segment_complete"`)
	assert.Contains(t, out, `"type":"done"`)
}

// The synthesis fan-out reports completions from worker goroutines, so the
// event writer sees interleaved Send calls. Every frame on the wire must still
// be a complete, parseable event.
func TestSynthesizeSegments_ParallelWorkersKeepFramesIntact(t *testing.T) {
	store := &memorySegments{data: map[string][]byte{}}
	speech := speechFunc(func(_ context.Context, text, _, _ string) ([]byte, error) {
		return []byte(text), nil
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := newTestHandler(handlerDeps{synthesize: usecase.NewSynthesizeSegmentsUsecase(speech, store, logger)})

	const lines = 40
	var sb strings.Builder
	sb.WriteString(`{"runId":"` + uuid.NewString() + `","script":{"podcast":{"script":[`)
	for i := 0; i < lines; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		speaker := domain.HostA
		if i%2 == 1 {
			speaker = domain.HostB
		}
		fmt.Fprintf(&sb, `{"speaker":%q,"text":"line %d"}`, speaker, i)
	}
	sb.WriteString(`]}}}`)

	rec := doJSON(h, http.MethodPost, "/v1/podcasts/audio/segments", sb.String())
	require.Equal(t, http.StatusOK, rec.Code)

	completed := 0
	done := 0
	for _, frame := range strings.Split(rec.Body.String(), "\n\n") {
		frame = strings.TrimSpace(frame)
		if frame == "" {
			continue
		}
		require.True(t, strings.HasPrefix(frame, "data: "), "malformed frame %q", frame)
		payload := strings.TrimPrefix(frame, "data: ")
		var event struct {
			Type string `json:"type"`
		}
		require.NoError(t, json.Unmarshal([]byte(payload), &event), "frame %q", payload)
		switch event.Type {
		case "segment_complete":
			completed++
		case "done":
			done++
		}
	}
	assert.Equal(t, lines, completed)
	assert.Equal(t, 1, done)
}

func TestSynthesizeSegments_RequiresScript(t *testing.T) {
	h := newTestHandler(handlerDeps{})
	rec := doJSON(h, http.MethodPost, "/v1/podcasts/audio/segments", `{"runId":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// plainWriter deliberately lacks http.Flusher.
type plainWriter struct {
	header http.Header
	code   int
	body   bytes.Buffer
}

func (w *plainWriter) Header() http.Header         { return w.header }
func (w *plainWriter) WriteHeader(code int)        { w.code = code }
func (w *plainWriter) Write(p []byte) (int, error) { return w.body.Write(p) }

func TestGenerate_NonStreamingWriterGetsJSONError(t *testing.T) {
	gen := &stubGenerate{events: []usecase.StreamEvent{{Type: usecase.StreamEventDone}}}
	h := newTestHandler(handlerDeps{generate: gen})

	e := echo.New()
	h.Register(e.Group("/v1"))
	req := httptest.NewRequest(http.MethodPost, "/v1/podcasts/generate", strings.NewReader(`{"content":"an article about bees","userId":"u1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	w := &plainWriter{header: http.Header{}}
	e.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.code)
	assert.Contains(t, w.body.String(), "streaming not supported")
	assert.NotEqual(t, "text/event-stream", w.header.Get(echo.HeaderContentType),
		"event-stream headers must not be committed before the writer is checked")
}

func TestCombineAudio_Success(t *testing.T) {
	combine := &stubCombine{execute: func(input usecase.CombineAudioInput) (*domain.CombinedAudio, error) {
		assert.Equal(t, "My Episode", input.Title)
		assert.Len(t, input.Segments, 2)
		return &domain.CombinedAudio{Key: "r/podcast-r.wav", SegmentCount: 2, EstimatedDurationSeconds: 6}, nil
	}}
	h := newTestHandler(handlerDeps{combine: combine})

	body := `{"runId":"` + uuid.NewString() + `","title":"My Episode","segments":[{"index":0,"key":"a"},{"index":1,"key":"b"}]}`
	rec := doJSON(h, http.MethodPost, "/v1/podcasts/audio/combine", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"segmentCount":2`)
}

func TestCombineAudio_FormatMismatchUnprocessable(t *testing.T) {
	combine := &stubCombine{execute: func(usecase.CombineAudioInput) (*domain.CombinedAudio, error) {
		return nil, &domain.WavFormatMismatchError{Index: 1}
	}}
	h := newTestHandler(handlerDeps{combine: combine})

	rec := doJSON(h, http.MethodPost, "/v1/podcasts/audio/combine", `{"segments":[{"index":0,"key":"a"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCombineAudio_TruncatedWavUnprocessable(t *testing.T) {
	combine := &stubCombine{execute: func(usecase.CombineAudioInput) (*domain.CombinedAudio, error) {
		return nil, fmt.Errorf("segment 2: %w", domain.ErrTruncatedWav)
	}}
	h := newTestHandler(handlerDeps{combine: combine})

	rec := doJSON(h, http.MethodPost, "/v1/podcasts/audio/combine", `{"segments":[{"index":0,"key":"a"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCombineAudio_RequiresSegments(t *testing.T) {
	h := newTestHandler(handlerDeps{})
	rec := doJSON(h, http.MethodPost, "/v1/podcasts/audio/combine", `{"title":"empty"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	h := newTestHandler(handlerDeps{})
	rec := doJSON(h, http.MethodGet, "/v1/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
