package ports

import (
	"context"

	"github.com/secdocs/guidance-extractor/internal/core/domain"
)

// DocumentProcessor is the inbound contract for asynchronous extraction.
// submissionID may be empty when no stored record exists for the document.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, filename, submissionID string) (*domain.ExtractionResult, error)
}
