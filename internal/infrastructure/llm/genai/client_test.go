package genai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/secdocs/guidance-extractor/internal/core/domain"
	"github.com/secdocs/guidance-extractor/internal/infrastructure/resilience"
)

func fastClient(t *testing.T) *Client {
	t.Helper()
	return New(Options{
		CallTimeout: 2 * time.Second,
		Executor: resilience.NewExecutor(resilience.Config{
			RetryMaxAttempts:    3,
			RetryInitialBackoff: time.Millisecond,
			RetryMaxBackoff:     2 * time.Millisecond,
			RetryMultiplier:     2.0,
		}),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func backendConfig(endpoint string) domain.ModelConfig {
	return domain.ModelConfig{
		Name:        "tuned",
		Endpoint:    endpoint,
		Model:       "guidance-7b",
		Role:        domain.RolePrimary,
		Temperature: 0.1,
		MaxTokens:   2048,
	}
}

func sampleChunks() []domain.Chunk {
	return []domain.Chunk{{Page: 1, Text: "Doors shall remain locked after hours."}}
}

const findingJSON = `{
	"category": "access control",
	"vulnerability": "Doors are left unlocked after hours.",
	"options": [{
		"option_text": "Install self-locking hardware on all doors.",
		"sources": [{"reference_number": 1, "source_text": "Doors shall remain locked after hours."}]
	}]
}`

func TestExtractParsesArrayResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		io.WriteString(w, "["+findingJSON+"]")
	}))
	defer srv.Close()

	findings, err := fastClient(t).Extract(context.Background(), backendConfig(srv.URL), sampleChunks())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Category != "access control" || len(f.Options) != 1 || len(f.Options[0].Sources) != 1 {
		t.Fatalf("finding decoded wrong: %+v", f)
	}
	if f.Options[0].Sources[0].ReferenceNumber != 1 {
		t.Fatalf("reference number = %d, want 1", f.Options[0].Sources[0].ReferenceNumber)
	}
}

func TestExtractUnwrapsResponseEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"response": "Here are the findings:\n[" + findingJSON + "]\nDone."}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Errorf("encode: %v", err)
		}
	}))
	defer srv.Close()

	findings, err := fastClient(t).Extract(context.Background(), backendConfig(srv.URL), sampleChunks())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
}

func TestExtractSkipsMalformedElements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[`+findingJSON+`, "not an object", 42]`)
	}))
	defer srv.Close()

	findings, err := fastClient(t).Extract(context.Background(), backendConfig(srv.URL), sampleChunks())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("malformed elements must be skipped, got %d findings", len(findings))
	}
}

func TestExtractRetriesMalformedBodyToExhaustion(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		io.WriteString(w, "I could not find any vulnerabilities, sorry.")
	}))
	defer srv.Close()

	_, err := fastClient(t).Extract(context.Background(), backendConfig(srv.URL), sampleChunks())
	if !domain.IsKind(err, domain.ErrMalformedResponse) {
		t.Fatalf("expected malformed-response error, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("backend called %d times, want 3", got)
	}
}

func TestExtractRetriesServerErrorsThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, "["+findingJSON+"]")
	}))
	defer srv.Close()

	findings, err := fastClient(t).Extract(context.Background(), backendConfig(srv.URL), sampleChunks())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding after recovery, got %d", len(findings))
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("backend called %d times, want 3", got)
	}
}

func TestExtractDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad prompt", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := fastClient(t).Extract(context.Background(), backendConfig(srv.URL), sampleChunks())
	if err == nil {
		t.Fatalf("expected error for 400 response")
	}
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected HTTPStatusError 400, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("client error retried: %d calls", got)
	}
}

func TestExtractRespectsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := fastClient(t).Extract(ctx, backendConfig(srv.URL), sampleChunks()); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

func TestBuildExtractionPromptNumbersPassages(t *testing.T) {
	prompt := buildExtractionPrompt([]domain.Chunk{
		{Page: 2, Text: "Cameras shall cover all entrances."},
		{Page: 3, Text: "Visitors must sign the access log."},
	})
	for _, want := range []string{"[1] page=2", "[2] page=3", "Cameras shall cover all entrances."} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	for _, category := range domain.Categories {
		if !strings.Contains(prompt, category) {
			t.Errorf("prompt missing category %q", category)
		}
	}
}
