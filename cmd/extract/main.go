// Command extract runs the extraction pipeline on a single local document
// and prints the consolidated result as JSON. It bypasses the queue and the
// database, which makes it handy for checking a document before upload.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/secdocs/guidance-extractor/internal/config"
	"github.com/secdocs/guidance-extractor/internal/core/usecase"
	"github.com/secdocs/guidance-extractor/internal/infrastructure/chunking"
	"github.com/secdocs/guidance-extractor/internal/infrastructure/extractor/pages"
	"github.com/secdocs/guidance-extractor/internal/infrastructure/llm/genai"
	"github.com/secdocs/guidance-extractor/internal/infrastructure/resilience"
	"github.com/secdocs/guidance-extractor/internal/infrastructure/storage/localfs"
	"github.com/secdocs/guidance-extractor/internal/observability/logging"
)

func main() {
	filePath := flag.String("file", "", "document to extract (pdf, xlsx or plain text)")
	modelsPath := flag.String("models", "", "models roster yaml (defaults to MODELS_PATH)")
	flag.Parse()
	if *filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	if *modelsPath != "" {
		cfg.ModelsPath = *modelsPath
	}
	logger := logging.NewJSONLogger("guidance-extract-cli", cfg.LogLevel)

	models, err := config.LoadModels(cfg.ModelsPath)
	if err != nil {
		log.Fatalf("load model roster: %v", err)
	}

	workDir, err := os.MkdirTemp("", "guidance-extract-*")
	if err != nil {
		log.Fatalf("create work dir: %v", err)
	}
	defer os.RemoveAll(workDir)

	storage, err := localfs.New(workDir)
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}

	ctx := context.Background()
	filename := filepath.Base(*filePath)
	src, err := os.Open(*filePath)
	if err != nil {
		log.Fatalf("open document: %v", err)
	}
	if err := storage.Save(ctx, usecase.BucketIncoming, filename, src); err != nil {
		src.Close()
		log.Fatalf("stage document: %v", err)
	}
	src.Close()

	backend := genai.New(genai.Options{
		CallTimeout: time.Duration(cfg.CallTimeoutSeconds) * time.Second,
		Executor: resilience.NewExecutor(resilience.Config{
			RetryMaxAttempts:    cfg.RetryMaxAttempts,
			RetryInitialBackoff: time.Duration(cfg.RetryBaseDelayMS) * time.Millisecond,
			RetryMultiplier:     2.0,
			RetryJitter:         time.Duration(cfg.RetryJitterMS) * time.Millisecond,
		}),
		Logger: logger,
	})

	uc := usecase.NewExtractGuidanceUseCase(
		nil, // no submission record in one-shot mode
		storage,
		pages.New(),
		chunking.NewSplitter(cfg.MinChunkSize, cfg.MaxChunkSize),
		backend,
		nil,
		models,
		usecase.PipelineConfig{
			BatchSize:            cfg.BatchSize,
			MaxConcurrentBatches: cfg.MaxConcurrentBatches,
			TokenBudget:          cfg.TokenBudget,
			LinkThreshold:        cfg.LinkThreshold,
		},
		logger,
	)

	result, err := uc.ProcessDocument(ctx, filename, "")
	if err != nil {
		log.Fatalf("extract: %v", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("marshal result: %v", err)
	}
	fmt.Println(string(out))
}
