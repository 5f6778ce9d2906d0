package usecase

import "github.com/secdocs/guidance-extractor/internal/core/domain"

// planBatches groups chunks into fixed-size batches in input order.
func planBatches(chunks []domain.Chunk, batchSize int) []domain.Batch {
	if batchSize <= 0 {
		batchSize = 20
	}
	var batches []domain.Batch
	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batches = append(batches, domain.Batch{
			Index:  len(batches),
			Chunks: chunks[start:end],
		})
	}
	return batches
}

// planWaves partitions batches into waves of at most maxConcurrent each,
// preserving batch order across waves. Order is semantically neutral but must
// be deterministic.
func planWaves(batches []domain.Batch, maxConcurrent int) [][]domain.Batch {
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	var waves [][]domain.Batch
	for start := 0; start < len(batches); start += maxConcurrent {
		end := start + maxConcurrent
		if end > len(batches) {
			end = len(batches)
		}
		waves = append(waves, batches[start:end])
	}
	return waves
}
