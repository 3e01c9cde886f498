package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopmate/internal/domain"
)

// Store keeps products in a MongoDB collection.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

type Config struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// Open connects and pings the server so a bad URI fails at startup.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Database == "" {
		cfg.Database = "shopmate"
	}
	if cfg.Collection == "" {
		cfg.Collection = "products"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	opts := options.Client().ApplyURI(cfg.URI).SetTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &Store{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	cur, err := s.collection.Find(ctx, listQuery(filter))
	if err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0)
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (domain.Product, error) {
	var p domain.Product
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, err
}

func (s *Store) Insert(ctx context.Context, p domain.Product) (domain.Product, error) {
	p.ID = primitive.NilObjectID
	res, err := s.collection.InsertOne(ctx, p)
	if err != nil {
		return domain.Product{}, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return domain.Product{}, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	p.ID = id
	return p, nil
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, patch domain.ProductPatch) (domain.Product, error) {
	set := setDocument(patch)
	if len(set) == 0 {
		return s.Get(ctx, id)
	}
	var p domain.Product
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, err
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// listQuery builds a case-insensitive literal substring match on name.
func listQuery(filter domain.ProductFilter) bson.M {
	if filter.Search == "" {
		return bson.M{}
	}
	return bson.M{"name": bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}}
}

func setDocument(patch domain.ProductPatch) bson.M {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Stock != nil {
		set["stock"] = *patch.Stock
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
	}
	return set
}
