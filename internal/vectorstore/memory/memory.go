package memory

import (
	"context"
	"errors"
	"sync"

	"shopmate/internal/domain"
)

// Storage is an in-memory vector index. Upserting an existing id replaces it.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	order     []string
	records   map[string]domain.VectorRecord
}

func NewStorage() *Storage { return &Storage{records: make(map[string]domain.VectorRecord)} }

func (s *Storage) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension != 0 && s.dimension != dimension {
		return errors.New("vector dimension mismatch")
	}
	s.dimension = dimension
	return nil
}

func (s *Storage) Upsert(_ context.Context, records []domain.VectorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		return errors.New("index not initialised")
	}
	for _, r := range records {
		if len(r.Values) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	for _, r := range records {
		if _, ok := s.records[r.ID]; !ok {
			s.order = append(s.order, r.ID)
		}
		s.records[r.ID] = r
	}
	return nil
}

// Records returns the stored records in first-upsert order.
func (s *Storage) Records() []domain.VectorRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.VectorRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out
}
