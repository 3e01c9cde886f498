package catalog

import (
	"context"
	"errors"
	"time"

	"shopmate/internal/domain"
)

// Service owns the product CRUD contract: id checks, validation and coercion
// happen here, persistence is delegated to the store.
type Service struct {
	store domain.ProductStore
	now   func() time.Time
}

func NewService(store domain.ProductStore) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock overrides the creation timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	products, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, domain.Upstream("list products", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Product, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return domain.Product{}, err
	}
	p, err := s.store.Get(ctx, oid)
	if err != nil {
		return domain.Product{}, storeError("get product", err)
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	// Millisecond precision matches what the document store keeps.
	p, err := in.Build(s.now().UTC().Truncate(time.Millisecond))
	if err != nil {
		return domain.Product{}, err
	}
	created, err := s.store.Insert(ctx, p)
	if err != nil {
		return domain.Product{}, domain.Upstream("create product", err)
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, id string, in domain.ProductUpdate) (domain.Product, error) {
	oid, err := domain.ParseID(id)
	if err != nil {
		return domain.Product{}, err
	}
	patch, err := in.Patch()
	if err != nil {
		return domain.Product{}, err
	}
	var p domain.Product
	if patch.IsEmpty() {
		p, err = s.store.Get(ctx, oid)
	} else {
		p, err = s.store.Update(ctx, oid, patch)
	}
	if err != nil {
		return domain.Product{}, storeError("update product", err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := domain.ParseID(id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, oid); err != nil {
		return storeError("delete product", err)
	}
	return nil
}

func storeError(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrNotFound
	}
	return domain.Upstream(op, err)
}
