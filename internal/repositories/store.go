package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"shopapi/internal/config"
)

// Stores bundles the repositories backed by one storage driver.
type Stores struct {
	Driver   string
	Products ProductRepository
	Orders   OrderRepository
	close    func(context.Context) error
}

// Close releases the underlying connection, if any.
func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects to the store selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		products := NewMemoryProductRepository()
		return &Stores{
			Driver:   cfg.StoreDriver,
			Products: products,
			Orders:   NewMemoryOrderRepository(products),
		}, nil

	case config.StoreMongo:
		return openMongo(ctx, cfg, logger)

	case config.StorePostgres:
		return openGORM(cfg.StoreDriver, postgres.Open(cfg.DatabaseDSN))

	case config.StoreSQLite:
		return openGORM(cfg.StoreDriver, sqlite.Open(cfg.DatabaseDSN))

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

func openMongo(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// The service keeps running when the ping fails; store calls report the
	// failure per request until the database becomes reachable.
	if err := client.Ping(ctx, nil); err != nil {
		logger.Warn("MongoDB is not reachable, database operations will fail", "error", err)
	} else {
		logger.Info("MongoDB connected successfully", "database", cfg.MongoDatabase)
	}

	db := client.Database(cfg.MongoDatabase)
	return &Stores{
		Driver:   cfg.StoreDriver,
		Products: NewMongoProductRepository(db),
		Orders:   NewMongoOrderRepository(db),
		close:    client.Disconnect,
	}, nil
}

func openGORM(driver string, dialector gorm.Dialector) (*Stores, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	return &Stores{
		Driver:   driver,
		Products: NewGORMProductRepository(db),
		Orders:   NewGORMOrderRepository(db),
		close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return fmt.Errorf("failed to get sql.DB: %w", err)
			}
			return sqlDB.Close()
		},
	}, nil
}
