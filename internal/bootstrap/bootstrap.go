package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/secdocs/guidance-extractor/internal/config"
	"github.com/secdocs/guidance-extractor/internal/core/ports"
	"github.com/secdocs/guidance-extractor/internal/core/usecase"
	"github.com/secdocs/guidance-extractor/internal/infrastructure/chunking"
	"github.com/secdocs/guidance-extractor/internal/infrastructure/extractor/pages"
	"github.com/secdocs/guidance-extractor/internal/infrastructure/llm/genai"
	"github.com/secdocs/guidance-extractor/internal/infrastructure/queue/nats"
	"github.com/secdocs/guidance-extractor/internal/infrastructure/repository/postgres"
	"github.com/secdocs/guidance-extractor/internal/infrastructure/resilience"
	"github.com/secdocs/guidance-extractor/internal/infrastructure/status"
	"github.com/secdocs/guidance-extractor/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Repo      ports.SubmissionRepository
	Status    *status.MemoryStore
	ProcessUC ports.DocumentProcessor

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewSubmissionRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	models, err := config.LoadModels(cfg.ModelsPath)
	if err != nil {
		return nil, fmt.Errorf("load model roster: %w", err)
	}

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    cfg.RetryMaxAttempts,
		RetryInitialBackoff: time.Duration(cfg.RetryBaseDelayMS) * time.Millisecond,
		RetryMultiplier:     2.0,
		RetryJitter:         time.Duration(cfg.RetryJitterMS) * time.Millisecond,
		BreakerEnabled:      true,
	})
	backend := genai.New(genai.Options{
		CallTimeout: time.Duration(cfg.CallTimeoutSeconds) * time.Second,
		Executor:    executor,
		Logger:      logger,
	})

	statusStore := status.NewMemoryStore()
	processUC := usecase.NewExtractGuidanceUseCase(
		repo,
		storage,
		pages.New(),
		chunking.NewSplitter(cfg.MinChunkSize, cfg.MaxChunkSize),
		backend,
		statusStore,
		models,
		usecase.PipelineConfig{
			BatchSize:            cfg.BatchSize,
			MaxConcurrentBatches: cfg.MaxConcurrentBatches,
			TokenBudget:          cfg.TokenBudget,
			LinkThreshold:        cfg.LinkThreshold,
		},
		logger,
	)

	return &App{
		Config:    cfg,
		Queue:     queue,
		Repo:      repo,
		Status:    statusStore,
		ProcessUC: processUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
