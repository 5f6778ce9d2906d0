package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/secdocs/guidance-extractor/internal/core/domain"
	"github.com/secdocs/guidance-extractor/internal/core/ports"
)

const (
	BucketIncoming  = "incoming"
	BucketLibrary   = "library"
	BucketErrors    = "errors"
	BucketArtifacts = "artifacts"
)

// PipelineConfig carries the tunable knobs of one extraction run.
type PipelineConfig struct {
	BatchSize            int
	MaxConcurrentBatches int
	TokenBudget          int
	LinkThreshold        float64
}

func (c PipelineConfig) normalize() PipelineConfig {
	out := c
	if out.BatchSize <= 0 {
		out.BatchSize = 20
	}
	if out.MaxConcurrentBatches <= 0 {
		out.MaxConcurrentBatches = 5
	}
	if out.LinkThreshold <= 0 {
		out.LinkThreshold = defaultLinkThreshold
	}
	return out
}

// ExtractGuidanceUseCase runs the extraction pipeline:
// chunk -> score -> batch -> infer -> validate -> consolidate -> link,
// then hands the result to the archival/persistence collaborators.
type ExtractGuidanceUseCase struct {
	repo    ports.SubmissionRepository
	storage ports.ObjectStorage
	pages   ports.PageExtractor
	chunker ports.Chunker
	backend ports.InferenceBackend
	status  ports.StatusStore
	models  []domain.ModelConfig
	cfg     PipelineConfig
	logger  *slog.Logger
	newID   func() string
}

func NewExtractGuidanceUseCase(
	repo ports.SubmissionRepository,
	storage ports.ObjectStorage,
	pages ports.PageExtractor,
	chunker ports.Chunker,
	backend ports.InferenceBackend,
	status ports.StatusStore,
	models []domain.ModelConfig,
	cfg PipelineConfig,
	logger *slog.Logger,
) *ExtractGuidanceUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractGuidanceUseCase{
		repo:    repo,
		storage: storage,
		pages:   pages,
		chunker: chunker,
		backend: backend,
		status:  status,
		models:  models,
		cfg:     cfg.normalize(),
		logger:  logger,
		newID:   uuid.NewString,
	}
}

// ProcessDocument extracts consolidated vulnerabilities from the named
// document in the incoming bucket. Per-backend and per-batch failures degrade
// to empty results; only a document yielding zero chunks is fatal.
func (uc *ExtractGuidanceUseCase) ProcessDocument(ctx context.Context, filename, submissionID string) (*domain.ExtractionResult, error) {
	uc.markStatus(ctx, submissionID, domain.StatusProcessing, "")

	result, err := uc.extract(ctx, filename)
	if err != nil {
		uc.markStatus(ctx, submissionID, domain.StatusFailed, err.Error())
		uc.archive(ctx, filename, BucketErrors)
		return nil, err
	}

	// Side effects are post-commit and best-effort: their failure never
	// invalidates the already-computed extraction result.
	uc.persistArtifact(ctx, filename, result)
	uc.archive(ctx, filename, BucketLibrary)
	uc.persistRecord(ctx, submissionID, filename, result)
	uc.markStatus(ctx, submissionID, domain.StatusCompleted, "")

	return result, nil
}

func (uc *ExtractGuidanceUseCase) extract(ctx context.Context, filename string) (*domain.ExtractionResult, error) {
	uc.setStage(ctx, filename, "chunking")
	pages, err := uc.loadPages(ctx, filename)
	if err != nil {
		return nil, err
	}

	chunks := uc.chunker.SplitPages(pages)
	if len(chunks) == 0 {
		return nil, domain.WrapError(domain.ErrNoChunks, "chunk document", fmt.Errorf("%d pages produced no chunks", len(pages)))
	}

	uc.setStage(ctx, filename, "batching")
	batches := planBatches(chunks, uc.cfg.BatchSize)
	waves := planWaves(batches, uc.cfg.MaxConcurrentBatches)

	uc.setStage(ctx, filename, "inferring")
	findings := uc.inferWaves(ctx, filename, batches, waves)

	uc.setStage(ctx, filename, "validating")
	valid, stats := validateFindings(findings)
	if stats.rejectedFindings+stats.rejectedOptions+stats.rejectedSources > 0 {
		uc.logger.Warn("validation_rejections",
			"filename", filename,
			"findings", stats.rejectedFindings,
			"options", stats.rejectedOptions,
			"sources", stats.rejectedSources,
		)
	}

	uc.setStage(ctx, filename, "consolidating")
	vulns, categoryMismatches := consolidateFindings(valid, uc.newID)
	if categoryMismatches > 0 {
		uc.logger.Warn("category_mismatch_in_group", "filename", filename, "count", categoryMismatches)
	}

	uc.setStage(ctx, filename, "linking")
	vulns = linkOptions(vulns, uc.cfg.LinkThreshold)

	uc.setStage(ctx, filename, "done")
	return &domain.ExtractionResult{
		Filename:        filename,
		Vulnerabilities: vulns,
		ChunkCount:      len(chunks),
		BatchCount:      len(batches),
		RejectedCount:   stats.rejectedFindings + stats.rejectedOptions + stats.rejectedSources,
	}, nil
}

func (uc *ExtractGuidanceUseCase) loadPages(ctx context.Context, filename string) ([]string, error) {
	reader, err := uc.storage.Open(ctx, BucketIncoming, filename)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read source document: %w", err)
	}

	pages, err := uc.pages.Pages(ctx, filename, raw)
	if err != nil {
		return nil, fmt.Errorf("extract page text: %w", err)
	}
	return pages, nil
}

// inferWaves fans out batches wave by wave. Within a wave batches run
// concurrently; the shared findings slice is appended to only after the wave
// joins, so the hot path needs no locking.
func (uc *ExtractGuidanceUseCase) inferWaves(ctx context.Context, filename string, batches []domain.Batch, waves [][]domain.Batch) []domain.Finding {
	merged := make([][]domain.Finding, len(batches))

	for _, wave := range waves {
		var wg sync.WaitGroup
		for _, batch := range wave {
			wg.Add(1)
			go func(b domain.Batch) {
				defer wg.Done()
				merged[b.Index] = uc.inferBatch(ctx, filename, b)
			}(batch)
		}
		wg.Wait()
	}

	var all []domain.Finding
	for _, findings := range merged {
		all = append(all, findings...)
	}
	return all
}

// inferBatch queries every configured backend concurrently and merges their
// outputs with the primary backend taking precedence. A backend that fails
// after retries contributes an empty list; it never aborts the batch.
func (uc *ExtractGuidanceUseCase) inferBatch(ctx context.Context, filename string, batch domain.Batch) []domain.Finding {
	chunks := truncateToBudget(batch.Chunks, uc.cfg.TokenBudget)

	results := make([]backendResult, len(uc.models))
	var wg sync.WaitGroup
	for i, model := range uc.models {
		wg.Add(1)
		go func(idx int, cfg domain.ModelConfig) {
			defer wg.Done()
			findings, err := uc.backend.Extract(ctx, cfg, chunks)
			if err != nil {
				uc.logger.Warn("backend_exhausted",
					"filename", filename,
					"batch", batch.Index,
					"backend", cfg.Name,
					"error", err,
				)
				findings = nil
			}
			results[idx] = backendResult{cfg: cfg, findings: findings}
		}(i, model)
	}
	wg.Wait()

	return mergeBackendFindings(results)
}

func (uc *ExtractGuidanceUseCase) persistArtifact(ctx context.Context, filename string, result *domain.ExtractionResult) {
	payload, err := json.MarshalIndent(result.Vulnerabilities, "", "  ")
	if err != nil {
		uc.logger.Error("marshal extraction artifact", "filename", filename, "error", err)
		return
	}
	key := artifactKey(filename)
	if err := uc.storage.Save(ctx, BucketArtifacts, key, bytes.NewReader(payload)); err != nil {
		uc.logger.Error("persist extraction artifact", "filename", filename, "key", key, "error", err)
	}
}

func (uc *ExtractGuidanceUseCase) archive(ctx context.Context, filename, toBucket string) {
	if err := uc.storage.Move(ctx, filename, BucketIncoming, toBucket); err != nil {
		uc.logger.Error("archive document", "filename", filename, "to", toBucket, "error", err)
	}
}

func (uc *ExtractGuidanceUseCase) persistRecord(ctx context.Context, submissionID, filename string, result *domain.ExtractionResult) {
	if uc.repo == nil {
		return
	}
	if err := uc.repo.MergeExtraction(ctx, submissionID, filename, *result); err != nil {
		uc.logger.Error("merge extraction into record", "filename", filename, "submission_id", submissionID, "error", err)
	}
}

func (uc *ExtractGuidanceUseCase) markStatus(ctx context.Context, submissionID string, status domain.SubmissionStatus, errMessage string) {
	if uc.repo == nil || submissionID == "" {
		return
	}
	if err := uc.repo.UpdateStatus(ctx, submissionID, status, errMessage); err != nil {
		uc.logger.Error("update submission status", "submission_id", submissionID, "status", status, "error", err)
	}
}

func (uc *ExtractGuidanceUseCase) setStage(ctx context.Context, filename, stage string) {
	if uc.status == nil {
		return
	}
	uc.status.Set(ctx, filename, stage)
}

func artifactKey(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
}

// IsFatal reports whether an extraction error aborts the whole document run.
func IsFatal(err error) bool {
	return errors.Is(err, domain.ErrNoChunks)
}
