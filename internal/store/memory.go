package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a [Store] kept entirely in memory, used when no database is
// configured and in tests. Records are lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]*Record
	order []string // job IDs, oldest first
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*Record)}
}

// Save creates or replaces the record for its job ID.
func (s *MemoryStore) Save(ctx context.Context, rec *Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	if _, exists := s.byID[cp.JobID]; !exists {
		s.order = append(s.order, cp.JobID)
	}
	s.byID[cp.JobID] = &cp
	rec.CreatedAt = cp.CreatedAt
	return nil
}

// Get retrieves a record by job ID. Returns (nil, nil) if not found.
func (s *MemoryStore) Get(ctx context.Context, jobID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[jobID]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// List returns the most recent records, newest first.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := make([]Record, 0, min(limit, len(s.order)))
	for i := len(s.order) - 1; i >= 0 && len(recs) < limit; i-- {
		recs = append(recs, *s.byID[s.order[i]])
	}
	return recs, nil
}

// Delete removes a record by job ID.
func (s *MemoryStore) Delete(ctx context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[jobID]; !ok {
		return nil
	}
	delete(s.byID, jobID)
	for i, id := range s.order {
		if id == jobID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}
