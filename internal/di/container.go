package di

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	"podcast-orchestrator/internal/adapter/llmapi"
	"podcast-orchestrator/internal/adapter/podcast_http"
	"podcast-orchestrator/internal/adapter/repository"
	"podcast-orchestrator/internal/adapter/speech"
	"podcast-orchestrator/internal/adapter/storage"
	"podcast-orchestrator/internal/adapter/websearch"
	"podcast-orchestrator/internal/domain"
	"podcast-orchestrator/internal/infra/config"
	"podcast-orchestrator/internal/infra/httpclient"
	"podcast-orchestrator/internal/usecase"
	"podcast-orchestrator/internal/worker"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	RunRepo domain.RunRepository
	JobRepo domain.CleanupJobRepository
	Store   domain.SegmentStore

	GenerateUsecase   usecase.GeneratePodcastUsecase
	SynthesizeUsecase usecase.SynthesizeSegmentsUsecase
	CombineUsecase    usecase.CombineAudioUsecase
	ActiveRuns        *usecase.ActiveRunRegistry

	Worker  *worker.CleanupWorker
	Handler *podcast_http.Handler
}

// NewApplicationComponents wires all dependencies from config and database pool.
func NewApplicationComponents(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) (*ApplicationComponents, error) {
	// Repositories
	runRepo := repository.NewRunRepository(pool)
	jobRepo := repository.NewCleanupJobRepository(pool)

	// Shared HTTP clients with connection pooling
	chatHTTP := httpclient.NewPooledClient(time.Duration(cfg.Chat.Timeout) * time.Second)
	searchHTTP := httpclient.NewPooledClient(time.Duration(cfg.Search.Timeout) * time.Second)
	ttsHTTP := httpclient.NewPooledClient(time.Duration(cfg.TTS.Timeout) * time.Second)
	downloadHTTP := httpclient.NewPooledClient(60 * time.Second)

	// External clients
	chatLimiter := rate.NewLimiter(rate.Limit(cfg.Chat.RateLimit), 1)
	chatClient := llmapi.NewChatClient(cfg.Chat.URL, cfg.Chat.Key, chatHTTP, chatLimiter)
	searchClient := websearch.NewClient(cfg.Search.URL, cfg.Search.Key, searchHTTP)
	speechClient := speech.NewClient(cfg.TTS.URL, cfg.TTS.Key, cfg.TTS.TestMode, ttsHTTP)

	// Segment storage
	store, err := storage.NewFSStore(cfg.Audio.Dir, downloadHTTP)
	if err != nil {
		return nil, fmt.Errorf("failed to init segment store: %w", err)
	}

	// Usecases
	generateUsecase := usecase.NewGeneratePodcastUsecase(chatClient, searchClient, runRepo, cfg.Chat.Model, log)
	synthesizeUsecase := usecase.NewSynthesizeSegmentsUsecase(speechClient, store, log)
	combineUsecase := usecase.NewCombineAudioUsecase(store, jobRepo, log)
	activeRuns := usecase.NewActiveRunRegistry()

	// Worker
	cleanupWorker := worker.NewCleanupWorker(jobRepo, store, log)

	// HTTP handler
	handler := podcast_http.NewHandler(generateUsecase, synthesizeUsecase, combineUsecase, runRepo, activeRuns, log)

	return &ApplicationComponents{
		RunRepo:           runRepo,
		JobRepo:           jobRepo,
		Store:             store,
		GenerateUsecase:   generateUsecase,
		SynthesizeUsecase: synthesizeUsecase,
		CombineUsecase:    combineUsecase,
		ActiveRuns:        activeRuns,
		Worker:            cleanupWorker,
		Handler:           handler,
	}, nil
}
