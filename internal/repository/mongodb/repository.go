package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/stockmonitor/internal/config"
	"github.com/mamadbah2/stockmonitor/internal/domain/models"
)

// ErrNoRuns is returned by LatestRun when nothing has been stored yet.
var ErrNoRuns = errors.New("no stock runs recorded")

// Repository defines the interface for run history storage.
type Repository interface {
	SaveRun(ctx context.Context, run models.StockRun) error
	LatestRun(ctx context.Context) (models.StockRun, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository connects to MongoDB and ensures the created_at index exists.
func NewMongoDBRepository(ctx context.Context, cfg config.MongoDBConfig) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoDBRepository{
		client:   client,
		dbName:   cfg.DBName,
		collName: cfg.Collection,
	}

	index := mongo.IndexModel{Keys: bson.D{{Key: "created_at", Value: -1}}}
	if _, err := repo.collection().Indexes().CreateOne(ctx, index); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create runs index: %w", err)
	}

	return repo, nil
}

// SaveRun stores an evaluation run.
func (r *MongoDBRepository) SaveRun(ctx context.Context, run models.StockRun) error {
	if _, err := r.collection().InsertOne(ctx, run); err != nil {
		return fmt.Errorf("failed to insert stock run %s: %w", run.RunID, err)
	}
	return nil
}

// LatestRun returns the most recent run.
func (r *MongoDBRepository) LatestRun(ctx context.Context) (models.StockRun, error) {
	var run models.StockRun

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	err := r.collection().FindOne(ctx, bson.D{}, opts).Decode(&run)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return run, ErrNoRuns
	}
	if err != nil {
		return run, fmt.Errorf("failed to load latest stock run: %w", err)
	}
	return run, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}
