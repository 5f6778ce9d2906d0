package status

import (
	"context"
	"sync"
)

// MemoryStore tracks the current pipeline stage per filename. The
// orchestrator writes it at stage transitions; dashboards read it for
// progress display.
type MemoryStore struct {
	mu     sync.RWMutex
	stages map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{stages: make(map[string]string)}
}

func (s *MemoryStore) Set(_ context.Context, filename, stage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stages[filename] = stage
}

func (s *MemoryStore) Get(filename string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stage, ok := s.stages[filename]
	return stage, ok
}

func (s *MemoryStore) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.stages))
	for k, v := range s.stages {
		out[k] = v
	}
	return out
}
