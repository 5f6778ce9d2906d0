package status

import (
	"context"
	"sync"
	"testing"
)

func TestMemoryStoreSetAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, ok := store.Get("guide.pdf"); ok {
		t.Fatalf("unexpected stage for unknown file")
	}

	store.Set(ctx, "guide.pdf", "chunking")
	store.Set(ctx, "guide.pdf", "inferring")

	stage, ok := store.Get("guide.pdf")
	if !ok || stage != "inferring" {
		t.Fatalf("Get() = %q, %v; want inferring, true", stage, ok)
	}
}

func TestMemoryStoreSnapshotIsACopy(t *testing.T) {
	store := NewMemoryStore()
	store.Set(context.Background(), "a.pdf", "done")

	snap := store.Snapshot()
	snap["a.pdf"] = "mutated"

	if stage, _ := store.Get("a.pdf"); stage != "done" {
		t.Fatalf("snapshot mutation leaked into store: %q", stage)
	}
}

func TestMemoryStoreConcurrentWrites(t *testing.T) {
	store := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, stage := range []string{"chunking", "batching", "inferring", "done"} {
				store.Set(context.Background(), "guide.pdf", stage)
			}
		}()
	}
	wg.Wait()

	if stage, ok := store.Get("guide.pdf"); !ok || stage != "done" {
		t.Fatalf("Get() = %q, %v; want done, true", stage, ok)
	}
}
