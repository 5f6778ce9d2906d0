package usecase

import (
	"fmt"
	"testing"

	"github.com/secdocs/guidance-extractor/internal/core/domain"
)

func makeChunks(n int) []domain.Chunk {
	out := make([]domain.Chunk, n)
	for i := range out {
		out[i] = domain.Chunk{Page: i/3 + 1, Text: fmt.Sprintf("chunk %d", i)}
	}
	return out
}

func TestPlanBatchesSizes(t *testing.T) {
	batches := planBatches(makeChunks(47), 20)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if len(batches[0].Chunks) != 20 || len(batches[1].Chunks) != 20 || len(batches[2].Chunks) != 7 {
		t.Fatalf("unexpected batch sizes: %d/%d/%d", len(batches[0].Chunks), len(batches[1].Chunks), len(batches[2].Chunks))
	}
	for i, b := range batches {
		if b.Index != i {
			t.Fatalf("batch %d has index %d", i, b.Index)
		}
	}
	// Chunk order is preserved across batch boundaries.
	if batches[1].Chunks[0].Text != "chunk 20" {
		t.Fatalf("unexpected first chunk of second batch: %q", batches[1].Chunks[0].Text)
	}
}

func TestPlanBatchesEmpty(t *testing.T) {
	if batches := planBatches(nil, 20); batches != nil {
		t.Fatalf("expected no batches, got %d", len(batches))
	}
}

func TestPlanWavesPartition(t *testing.T) {
	batches := planBatches(makeChunks(240), 20) // 12 batches
	waves := planWaves(batches, 5)
	if len(waves) != 3 {
		t.Fatalf("expected 3 waves, got %d", len(waves))
	}
	if len(waves[0]) != 5 || len(waves[1]) != 5 || len(waves[2]) != 2 {
		t.Fatalf("unexpected wave sizes: %d/%d/%d", len(waves[0]), len(waves[1]), len(waves[2]))
	}
	// Wave order follows batch order.
	if waves[2][0].Index != 10 {
		t.Fatalf("unexpected first batch of last wave: %d", waves[2][0].Index)
	}
}

func TestPlanWavesDefaults(t *testing.T) {
	batches := planBatches(makeChunks(50), 0) // falls back to 20
	if len(batches) != 3 {
		t.Fatalf("expected default batch size 20, got %d batches", len(batches))
	}
	waves := planWaves(batches, 0) // falls back to 5
	if len(waves) != 1 {
		t.Fatalf("expected single wave, got %d", len(waves))
	}
}
