package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/secdocs/guidance-extractor/internal/bootstrap"
	"github.com/secdocs/guidance-extractor/internal/config"
	"github.com/secdocs/guidance-extractor/internal/observability/logging"
	"github.com/secdocs/guidance-extractor/internal/observability/metrics"
)

const service = "guidance-extractor-worker"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(service, cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(service)
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", workerMetrics.Handler())
		addr := ":" + cfg.WorkerMetricsPort
		logger.Info("metrics server listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics server stopped", "error", err)
		}
	}()

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeDocumentUploaded(ctx, func(handlerCtx context.Context, filename string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, 10*time.Minute)
		defer cancel()

		workerMetrics.StartDocument()
		started := time.Now()
		result, err := app.ProcessUC.ProcessDocument(processCtx, filename, "")
		workerMetrics.FinishDocument(service, time.Since(started), err)
		if err != nil {
			return err
		}

		workerMetrics.ObserveResult(len(result.Vulnerabilities), result.RejectedCount)
		logger.Info("document extracted",
			"filename", filename,
			"vulnerabilities", len(result.Vulnerabilities),
			"chunks", result.ChunkCount,
			"batches", result.BatchCount,
		)
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
