package genai

import (
	"fmt"
	"strings"

	"github.com/secdocs/guidance-extractor/internal/core/domain"
)

func buildExtractionPrompt(chunks []domain.Chunk) string {
	var passages strings.Builder
	for i, chunk := range chunks {
		passages.WriteString(fmt.Sprintf("[%d] page=%d\n%s\n\n", i+1, chunk.Page, chunk.Text))
	}

	return fmt.Sprintf(`You are a physical-security analyst reading guidance documents.
For each passage below, identify security vulnerabilities the guidance implies and the options for consideration that mitigate them.
Skip passages with no security-relevant content.

Allowed categories (use exactly one per finding):
%s

Return ONLY a JSON array, no markdown, with objects shaped as:
{
  "category": "...",
  "vulnerability": "...",
  "options": [
    {
      "option_text": "...",
      "sources": [{"reference_number": <page number>, "source_text": "<quoted clause>"}]
    }
  ]
}

Passages:
%s`, strings.Join(domain.Categories, ", "), passages.String())
}
