package container

import (
	"context"
	"fmt"
	"sync"

	"gitlab.com/maplesense1/energy.api_server/src/production/EDA.ApiService/controllers"
	"gitlab.com/maplesense1/energy.api_server/src/production/EDA.ApiService/health"
	clock "gitlab.com/maplesense1/energy.api_server/src/production/EDA.Clock"
	config "gitlab.com/maplesense1/energy.api_server/src/production/EDA.Config"
	logger "gitlab.com/maplesense1/energy.api_server/src/production/EDA.Logger"
	publisher "gitlab.com/maplesense1/energy.api_server/src/production/EDA.Publisher"
	implementation "gitlab.com/maplesense1/energy.api_server/src/production/EDA.Repository/Implementation"
	interfaces "gitlab.com/maplesense1/energy.api_server/src/production/EDA.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container manages dependencies and their lifecycle
type Container struct {
	config *config.Config
	logger *logger.Logger

	mongoClient   *mongo.Client
	healthChecker *health.HealthChecker
	publisher     *publisher.MQTTPublisher

	// Mutex for thread-safe access
	mu sync.Mutex

	// Cleanup functions, run in reverse order on shutdown
	cleanupFuncs []func(ctx context.Context) error
}

// NewContainer loads configuration and builds the logger
func NewContainer() (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return NewWithConfig(cfg, logger.NewLogger(&cfg.Logging)), nil
}

// NewWithConfig builds a container from an already loaded configuration
func NewWithConfig(cfg *config.Config, log *logger.Logger) *Container {
	return &Container{
		config: cfg,
		logger: log,
	}
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.logger
}

// GetMongoClient returns the MongoDB client, connecting on first use
func (c *Container) GetMongoClient() (*mongo.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mongoClient == nil {
		client, err := health.ConnectMongoWithTimeout(&c.config.Database, c.config.Database.ConnectTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		c.mongoClient = client
		c.cleanupFuncs = append(c.cleanupFuncs, client.Disconnect)
	}

	return c.mongoClient, nil
}

// GetHealthChecker returns the health checker
func (c *Container) GetHealthChecker() (*health.HealthChecker, error) {
	client, err := c.GetMongoClient()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for health checker: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.healthChecker == nil {
		c.healthChecker = health.NewHealthChecker(client)
	}
	return c.healthChecker, nil
}

// InitializeDatabase connects to MongoDB, checks its health and, when enabled,
// bootstraps the time-series collection
func (c *Container) InitializeDatabase(ctx context.Context) error {
	client, err := c.GetMongoClient()
	if err != nil {
		return err
	}

	checker, err := c.GetHealthChecker()
	if err != nil {
		return err
	}
	if err := checker.CheckDatabaseHealth(ctx, c.config.Database.ConnectTimeout); err != nil {
		return err
	}

	if c.config.Database.TimeSeries {
		db := client.Database(c.config.Database.Name)
		created, err := health.EnsureTimeSeriesCollection(ctx, db, c.config.Database.Collection)
		if err != nil {
			return err
		}
		if created {
			c.logger.Info("Created time-series collection " + c.config.Database.Collection)
		}
	}

	c.logger.Info("Database initialized successfully")
	return nil
}

// GetReadingRepository returns the repository backed by the configured collection
func (c *Container) GetReadingRepository() (interfaces.ReadingRepository, error) {
	client, err := c.GetMongoClient()
	if err != nil {
		return nil, err
	}
	return implementation.NewMongoReadingRepository(health.GetCollection(client, &c.config.Database)), nil
}

// GetAckPublisher returns the MQTT acknowledgment publisher, or nil when MQTT is not configured
func (c *Container) GetAckPublisher() (controllers.AckPublisher, error) {
	if !c.config.MQTTEnabled() {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.publisher == nil {
		pub, err := publisher.Connect(c.config, c.logger)
		if err != nil {
			return nil, err
		}
		c.publisher = pub
		c.cleanupFuncs = append(c.cleanupFuncs, func(context.Context) error {
			return pub.Close()
		})
	}

	return c.publisher, nil
}

// GetClock returns the clock that stamps readings
func (c *Container) GetClock() clock.Clock {
	return clock.InZone(c.config.Clock.ZoneName, c.config.Clock.Offset)
}

// NewEnergyController wires the energy controller from the container's dependencies
func (c *Container) NewEnergyController() (*controllers.EnergyController, error) {
	repo, err := c.GetReadingRepository()
	if err != nil {
		return nil, err
	}

	pub, err := c.GetAckPublisher()
	if err != nil {
		return nil, err
	}

	return controllers.NewEnergyController(repo, pub, c.GetClock(), c.logger), nil
}

// AddCleanupFunc adds a cleanup function. It runs before every cleanup registered earlier.
func (c *Container) AddCleanupFunc(fn func(ctx context.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
}

// Shutdown releases every dependency in reverse order of creation
func (c *Container) Shutdown(ctx context.Context) error {
	c.logger.Info("Shutting down container...")

	c.mu.Lock()
	funcs := c.cleanupFuncs
	c.cleanupFuncs = nil
	c.mu.Unlock()

	var firstErr error
	for i := len(funcs) - 1; i >= 0; i-- {
		if err := funcs[i](ctx); err != nil {
			c.logger.ErrorWithError(err, "Error during cleanup")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	c.logger.Info("Container shutdown complete")
	return firstErr
}
