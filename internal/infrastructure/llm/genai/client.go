package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/secdocs/guidance-extractor/internal/core/domain"
	"github.com/secdocs/guidance-extractor/internal/infrastructure/resilience"
)

// Client talks to generate-style JSON inference endpoints, one per
// ModelConfig. Each call is rate-limited per backend and wrapped in the
// retry/backoff executor; a malformed response body is retried like a
// network failure since it is often a truncation artifact.
type Client struct {
	httpClient  *http.Client
	executor    *resilience.Executor
	callTimeout time.Duration
	logger      *slog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

type Options struct {
	CallTimeout time.Duration
	Executor    *resilience.Executor
	Logger      *slog.Logger
}

func New(opts Options) *Client {
	callTimeout := opts.CallTimeout
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}
	executor := opts.Executor
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig())
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient:  &http.Client{},
		executor:    executor,
		callTimeout: callTimeout,
		logger:      logger,
		limiters:    make(map[string]*rate.Limiter),
	}
}

// Extract sends one batch to one backend and parses the finding array.
// The returned error means retries are exhausted; callers degrade to zero
// findings.
func (c *Client) Extract(ctx context.Context, cfg domain.ModelConfig, chunks []domain.Chunk) ([]domain.Finding, error) {
	if limiter := c.limiter(cfg); limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait for %s: %w", cfg.Name, err)
		}
	}

	prompt := buildExtractionPrompt(chunks)
	var findings []domain.Finding

	err := c.executor.Execute(ctx, "genai.extract."+cfg.Name, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
		defer cancel()

		raw, err := c.postGenerate(attemptCtx, cfg, prompt)
		if err != nil {
			return err
		}
		parsed, err := c.parseFindings(cfg.Name, raw)
		if err != nil {
			return err
		}
		findings = parsed
		return nil
	}, classifyBackendError)
	if err != nil {
		return nil, err
	}
	return findings, nil
}

// parseFindings decodes the backend body. A body that is not a JSON array is
// a transient malformed-response error; individual elements that do not fit
// the finding shape are skipped.
func (c *Client) parseFindings(backend string, raw []byte) ([]domain.Finding, error) {
	body := extractJSONArray(raw)

	var elements []json.RawMessage
	if err := json.Unmarshal(body, &elements); err != nil {
		return nil, domain.WrapError(domain.ErrMalformedResponse, "parse finding array", err)
	}

	findings := make([]domain.Finding, 0, len(elements))
	for i, element := range elements {
		var f domain.Finding
		if err := json.Unmarshal(element, &f); err != nil {
			c.logger.Debug("skip malformed finding element", "backend", backend, "index", i, "error", err)
			continue
		}
		findings = append(findings, f)
	}
	return findings, nil
}

func (c *Client) limiter(cfg domain.ModelConfig) *rate.Limiter {
	if cfg.RatePerSec <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	limiter, ok := c.limiters[cfg.Name]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1)
		c.limiters[cfg.Name] = limiter
	}
	return limiter
}
