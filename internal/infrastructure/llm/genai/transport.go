package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/secdocs/guidance-extractor/internal/core/domain"
)

type generateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	MaxTokens   int     `json:"max_tokens"`
	Stream      bool    `json:"stream"`
}

func (c *Client) postGenerate(ctx context.Context, cfg domain.ModelConfig, prompt string) ([]byte, error) {
	payload := generateRequest{
		Model:       cfg.Model,
		Prompt:      prompt,
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		MaxTokens:   cfg.MaxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend %s request: %w", cfg.Name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", cfg.Name, err)
	}
	if resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{
			Backend:    cfg.Name,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(raw),
		}
	}
	return raw, nil
}

// extractJSONArray tolerates backends that wrap the array in a
// {"response": "..."} envelope or surround it with prose.
func extractJSONArray(raw []byte) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return trimmed
	}

	var envelope struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err == nil && envelope.Response != "" {
		trimmed = []byte(strings.TrimSpace(envelope.Response))
	}

	start := bytes.IndexByte(trimmed, '[')
	end := bytes.LastIndexByte(trimmed, ']')
	if start >= 0 && end > start {
		return trimmed[start : end+1]
	}
	return trimmed
}
