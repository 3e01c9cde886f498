package memory

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopmate/internal/domain"
)

// Store is an in-process product store. It keeps insertion order so List
// behaves like a natural-order collection scan.
type Store struct {
	mu       sync.RWMutex
	products []domain.Product
}

func NewStore() *Store { return &Store{} }

func (s *Store) List(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) Get(_ context.Context, id primitive.ObjectID) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.Product{}, domain.ErrNotFound
	}
	return s.products[i], nil
}

func (s *Store) Insert(_ context.Context, p domain.Product) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = primitive.NewObjectID()
	s.products = append(s.products, p)
	return p, nil
}

func (s *Store) Update(_ context.Context, id primitive.ObjectID, patch domain.ProductPatch) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.Product{}, domain.ErrNotFound
	}
	patch.Apply(&s.products[i])
	return s.products[i], nil
}

func (s *Store) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.ErrNotFound
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	return nil
}

func (s *Store) indexOf(id primitive.ObjectID) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}
