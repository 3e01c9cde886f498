package indexer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"shopmate/internal/domain"
)

// ProductLister is the read side of the product store the job needs.
type ProductLister interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
}

// Job re-embeds the whole catalog and writes it to the vector index.
// It is sequential and stops at the first failure.
type Job struct {
	products ProductLister
	embedder domain.Embedder
	index    domain.VectorIndex
	logger   *zap.Logger
}

// Summary reports what a run wrote.
type Summary struct {
	Products  int
	Dimension int
}

func NewJob(products ProductLister, embedder domain.Embedder, index domain.VectorIndex, logger *zap.Logger) *Job {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{products: products, embedder: embedder, index: index, logger: logger}
}

func (j *Job) Run(ctx context.Context) (Summary, error) {
	products, err := j.products.List(ctx, domain.ProductFilter{})
	if err != nil {
		return Summary{}, fmt.Errorf("list products: %w", err)
	}
	if len(products) == 0 {
		j.logger.Info("catalog is empty, nothing to embed")
		return Summary{}, nil
	}

	records := make([]domain.VectorRecord, 0, len(products))
	for _, p := range products {
		if err := ctx.Err(); err != nil {
			return Summary{}, err
		}
		vec, err := j.embedder.Embed(ctx, p.Description)
		if err != nil {
			return Summary{}, fmt.Errorf("embed product %s: %w", p.ID.Hex(), err)
		}
		if len(records) > 0 && len(vec) != len(records[0].Values) {
			return Summary{}, fmt.Errorf("embed product %s: dimension %d differs from %d", p.ID.Hex(), len(vec), len(records[0].Values))
		}
		j.logger.Info("created embedding", zap.String("id", p.ID.Hex()), zap.String("name", p.Name))
		records = append(records, domain.VectorRecord{
			ID:     p.ID.Hex(),
			Values: vec,
			Metadata: domain.VectorMetadata{
				Name:        p.Name,
				Description: p.Description,
				Category:    p.Category,
				Price:       p.Price,
			},
		})
	}

	dim := len(records[0].Values)
	if err := j.index.Init(ctx, dim); err != nil {
		return Summary{}, fmt.Errorf("init vector index: %w", err)
	}
	j.logger.Info("upserting vectors", zap.Int("count", len(records)), zap.String("embedder", j.embedder.Name()))
	if err := j.index.Upsert(ctx, records); err != nil {
		return Summary{}, fmt.Errorf("upsert vectors: %w", err)
	}
	return Summary{Products: len(records), Dimension: dim}, nil
}
