package ports

import (
	"context"
	"io"

	"github.com/secdocs/guidance-extractor/internal/core/domain"
)

// SubmissionRepository persists and reads submission state.
type SubmissionRepository interface {
	Create(ctx context.Context, sub *domain.Submission) error
	GetByID(ctx context.Context, id string) (*domain.Submission, error)
	UpdateStatus(ctx context.Context, id string, status domain.SubmissionStatus, errMessage string) error
	// MergeExtraction folds the extraction result into the stored record's
	// JSON blob. An empty submissionID falls back to the latest record
	// matching the filename.
	MergeExtraction(ctx context.Context, submissionID, filename string, result domain.ExtractionResult) error
}

// ObjectStorage stores source documents and result artifacts in named buckets.
type ObjectStorage interface {
	Save(ctx context.Context, bucket, key string, data io.Reader) error
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	Move(ctx context.Context, key, fromBucket, toBucket string) error
}

// MessageQueue publishes/consumes uploaded-document events.
type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, filename string) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// PageExtractor produces ordered per-page plain text from raw document bytes.
type PageExtractor interface {
	Pages(ctx context.Context, filename string, data []byte) ([]string, error)
}

// Chunker splits per-page text into analyzable chunks.
type Chunker interface {
	SplitPages(pages []string) []domain.Chunk
}

// InferenceBackend runs one extraction request against one configured model.
// Implementations own retry/backoff; a returned error means retries were
// exhausted and the caller should degrade to zero findings.
type InferenceBackend interface {
	Extract(ctx context.Context, cfg domain.ModelConfig, chunks []domain.Chunk) ([]domain.Finding, error)
}

// StatusStore records the pipeline stage a document is currently in.
type StatusStore interface {
	Set(ctx context.Context, filename, stage string)
}
