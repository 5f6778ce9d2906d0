package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/secdocs/guidance-extractor/internal/core/domain"
)

func writeModelsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "models.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write models file: %v", err)
	}
	return path
}

const validModelsYAML = `
models:
  - name: tuned
    endpoint: http://localhost:11434/api/generate
    model: guidance-7b
    weight: 1.0
    role: primary
    temperature: 0.1
    max_tokens: 2048
    rate_per_sec: 2
  - name: stock
    endpoint: http://localhost:11435/api/generate
    model: llama3
    weight: 0.5
    role: validation
`

func TestLoadModels(t *testing.T) {
	models, err := LoadModels(writeModelsFile(t, validModelsYAML))
	if err != nil {
		t.Fatalf("LoadModels() error = %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(models))
	}
	if models[0].Role != domain.RolePrimary || models[0].Name != "tuned" {
		t.Fatalf("primary model decoded wrong: %+v", models[0])
	}
	if models[0].RatePerSec != 2 {
		t.Fatalf("rate_per_sec = %v, want 2", models[0].RatePerSec)
	}
	if models[1].Role != domain.RoleValidation {
		t.Fatalf("secondary role = %q, want validation", models[1].Role)
	}
}

func TestLoadModelsRejectsZeroPrimaries(t *testing.T) {
	path := writeModelsFile(t, `
models:
  - name: stock
    endpoint: http://localhost:11435/api/generate
    role: validation
`)
	if _, err := LoadModels(path); err == nil || !strings.Contains(err.Error(), "exactly one primary") {
		t.Fatalf("expected primary-count error, got %v", err)
	}
}

func TestLoadModelsRejectsTwoPrimaries(t *testing.T) {
	path := writeModelsFile(t, `
models:
  - name: a
    endpoint: http://a/api/generate
    role: primary
  - name: b
    endpoint: http://b/api/generate
    role: primary
`)
	if _, err := LoadModels(path); err == nil || !strings.Contains(err.Error(), "exactly one primary") {
		t.Fatalf("expected primary-count error, got %v", err)
	}
}

func TestLoadModelsRejectsUnknownRole(t *testing.T) {
	path := writeModelsFile(t, `
models:
  - name: a
    endpoint: http://a/api/generate
    role: arbiter
`)
	if _, err := LoadModels(path); err == nil || !strings.Contains(err.Error(), "unknown role") {
		t.Fatalf("expected role error, got %v", err)
	}
}

func TestLoadModelsRejectsMissingEndpoint(t *testing.T) {
	path := writeModelsFile(t, `
models:
  - name: a
    role: primary
`)
	if _, err := LoadModels(path); err == nil || !strings.Contains(err.Error(), "no endpoint") {
		t.Fatalf("expected endpoint error, got %v", err)
	}
}

func TestLoadModelsRejectsEmptyFile(t *testing.T) {
	if _, err := LoadModels(writeModelsFile(t, "models: []\n")); err == nil {
		t.Fatalf("expected error for empty roster")
	}
}

func TestLoadModelsMissingFile(t *testing.T) {
	if _, err := LoadModels(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
