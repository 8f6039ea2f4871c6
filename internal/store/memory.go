package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type memKey struct {
	runID  int64
	height int
	trials int64
}

// InMemoryIndex implements Index without persistence, for tests and for
// runs with the index disabled.
type InMemoryIndex struct {
	mu          sync.RWMutex
	runs        []Run
	checkpoints map[memKey]CheckpointRecord
}

// NewInMemoryIndex creates an empty in-memory index.
func NewInMemoryIndex() *InMemoryIndex {
	return &InMemoryIndex{checkpoints: make(map[memKey]CheckpointRecord)}
}

// BeginRun records a new run.
func (s *InMemoryIndex) BeginRun(ctx context.Context, seed uint64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := int64(len(s.runs) + 1)
	s.runs = append(s.runs, Run{ID: id, Seed: seed, StartedAt: time.Now().UTC()})
	return id, nil
}

// RecordCheckpoint stores rec, replacing any previous record for the same key.
func (s *InMemoryIndex) RecordCheckpoint(ctx context.Context, rec CheckpointRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.RunID < 1 || rec.RunID > int64(len(s.runs)) {
		return fmt.Errorf("run %d not found", rec.RunID)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.checkpoints[memKey{rec.RunID, rec.Height, rec.Trials}] = rec
	return nil
}

// FinishRun stamps the run's finish time.
func (s *InMemoryIndex) FinishRun(ctx context.Context, runID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if runID < 1 || runID > int64(len(s.runs)) {
		return fmt.Errorf("run %d not found", runID)
	}
	now := time.Now().UTC()
	s.runs[runID-1].FinishedAt = &now
	return nil
}

// LatestRun returns the most recent run.
func (s *InMemoryIndex) LatestRun(ctx context.Context) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.runs) == 0 {
		return nil, ErrNoRuns
	}
	run := s.runs[len(s.runs)-1]
	return &run, nil
}

// ListCheckpoints returns runID's checkpoints ordered by height then trials.
func (s *InMemoryIndex) ListCheckpoints(ctx context.Context, runID int64, height int) ([]CheckpointRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []CheckpointRecord
	for k, rec := range s.checkpoints {
		if k.runID != runID || (height >= 0 && k.height != height) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Height != out[j].Height {
			return out[i].Height < out[j].Height
		}
		return out[i].Trials < out[j].Trials
	})
	return out, nil
}

// Close is a no-op.
func (s *InMemoryIndex) Close() error { return nil }
