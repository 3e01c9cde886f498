package domain

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductStore persists products. Get, Update and Delete return ErrNotFound
// when no document matches.
type ProductStore interface {
	List(ctx context.Context, filter ProductFilter) ([]Product, error)
	Get(ctx context.Context, id primitive.ObjectID) (Product, error)
	Insert(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, id primitive.ObjectID, patch ProductPatch) (Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// TextGenerator turns a prompt into generated text.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// VisionGenerator answers a prompt about an inline image.
type VisionGenerator interface {
	GenerateFromImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// Embedder converts free text into a numeric vector representation.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float64, error)
}

// VectorRecord is one product projected into the vector index.
type VectorRecord struct {
	ID       string
	Values   []float64
	Metadata VectorMetadata
}

// VectorMetadata is the denormalized product snapshot stored next to a vector.
type VectorMetadata struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
}

// VectorIndex persists vectors keyed by product id.
type VectorIndex interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, records []VectorRecord) error
}
