package health

import (
	"context"
	"fmt"
	"time"

	config "gitlab.com/maplesense1/energy.api_server/src/production/EDA.Config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// HealthChecker provides health check functionality
type HealthChecker struct {
	client *mongo.Client
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(client *mongo.Client) *HealthChecker {
	return &HealthChecker{client: client}
}

// PingMongo checks if the primary is reachable
func (h *HealthChecker) PingMongo(ctx context.Context) error {
	if h.client == nil {
		return fmt.Errorf("mongo client is nil")
	}
	return h.client.Ping(ctx, readpref.Primary())
}

// CheckDatabaseHealth pings the primary within the given timeout
func (h *HealthChecker) CheckDatabaseHealth(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := h.PingMongo(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// ConnectMongoWithTimeout creates a MongoDB client and verifies it by pinging the primary
func ConnectMongoWithTimeout(cfg *config.DatabaseConfig, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.URI)
	clientOptions.SetServerSelectionTimeout(timeout)
	clientOptions.SetConnectTimeout(timeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to MongoDB: %w", err)
	}

	if err := NewHealthChecker(client).PingMongo(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("unable to ping MongoDB: %w", err)
	}

	return client, nil
}

// GetCollection returns the configured readings collection
func GetCollection(client *mongo.Client, cfg *config.DatabaseConfig) *mongo.Collection {
	return client.Database(cfg.Name).Collection(cfg.Collection)
}

// EnsureTimeSeriesCollection creates the readings collection as a time-series
// collection keyed on timestamp and metadata. An existing collection is left alone.
func EnsureTimeSeriesCollection(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	names, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return false, fmt.Errorf("failed to list collections: %w", err)
	}
	if len(names) > 0 {
		return false, nil
	}

	tsOpts := options.TimeSeries().
		SetTimeField("timestamp").
		SetMetaField("metadata").
		SetGranularity("minutes")

	if err := db.CreateCollection(ctx, name, options.CreateCollection().SetTimeSeriesOptions(tsOpts)); err != nil {
		return false, fmt.Errorf("failed to create time-series collection %s: %w", name, err)
	}
	return true, nil
}
