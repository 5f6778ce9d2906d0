package domain

import "time"

type SubmissionStatus string

const (
	StatusUploaded   SubmissionStatus = "uploaded"
	StatusProcessing SubmissionStatus = "processing"
	StatusCompleted  SubmissionStatus = "completed"
	StatusFailed     SubmissionStatus = "failed"
)

// Submission is the stored record for one uploaded guidance document.
type Submission struct {
	ID        string           `json:"id"`
	Filename  string           `json:"filename"`
	Status    SubmissionStatus `json:"status"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// ExtractionResult is what one pipeline run produces for a document.
type ExtractionResult struct {
	Filename        string                      `json:"filename"`
	Vulnerabilities []ConsolidatedVulnerability `json:"vulnerabilities"`
	ChunkCount      int                         `json:"chunk_count"`
	BatchCount      int                         `json:"batch_count"`
	RejectedCount   int                         `json:"rejected_count"`
}
