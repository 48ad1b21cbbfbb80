package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"itstore-assistant/internal/config"
	"itstore-assistant/internal/model"
)

// CatalogRepository reads the product catalog from MongoDB. The catalog
// is owned by the storefront backend; this repository never writes.
type CatalogRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
}

// NewCatalogRepository connects to the catalog and verifies the
// connection with a ping.
func NewCatalogRepository(cfg *config.MongoConfig) (*CatalogRepository, error) {
	timeout := time.Duration(cfg.Timeout) * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &CatalogRepository{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		timeout:    timeout,
	}, nil
}

// searchProjection limits returned documents to the fields the chat
// pipeline actually uses.
var searchProjection = bson.M{
	"_id":           1,
	"title":         1,
	"description":   1,
	"keyword":       1,
	"price":         1,
	"salePrice":     1,
	"stockQuantity": 1,
	"navigation":    1,
	"productActive": 1,
	"rating":        1,
	"totalReviews":  1,
	"productView":   1,
	"images":        1,
}

// Find runs a filtered, sorted, limited catalog query.
func (r *CatalogRepository) Find(ctx context.Context, filter bson.M, sort bson.D, limit int64) ([]model.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := options.Find().
		SetProjection(searchProjection).
		SetSort(sort).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("catalog find failed: %w", err)
	}
	defer cursor.Close(ctx)

	var products []model.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// Aggregate runs an aggregation pipeline over the catalog.
func (r *CatalogRepository) Aggregate(ctx context.Context, pipeline []bson.M) ([]bson.M, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("catalog aggregation failed: %w", err)
	}
	defer cursor.Close(ctx)

	var results []bson.M
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode aggregation results: %w", err)
	}
	return results, nil
}

// GetProduct fetches a single product by its hex object id.
func (r *CatalogRepository) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid product id %q: %w", id, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var product model.Product
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("product %s not found", id)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// Close disconnects from MongoDB.
func (r *CatalogRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
