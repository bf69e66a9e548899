package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/yukikurage/task-dashboard-api/internal/config"
	"github.com/yukikurage/task-dashboard-api/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const connectTimeout = 10 * time.Second

// Dialector returns the gorm dialector for a SQL store driver
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return sqlite.Open(":memory:"), nil
	case config.DriverSQLite:
		return sqlite.Open(cfg.SQLitePath), nil
	case config.DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBName,
		)
		return mysql.Open(dsn), nil
	case config.DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.DBHost,
			cfg.DBPort,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
		)
		return postgres.Open(dsn), nil
	}
	return nil, fmt.Errorf("store driver %q is not a SQL driver", cfg.StoreDriver)
}

// Connect opens the SQL database for the configured driver
func Connect(cfg *config.Config, log logrus.FieldLogger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Silent
	if cfg.GinMode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Every connection to :memory: is a separate database
	if cfg.StoreDriver == config.DriverMemory {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log.WithField("driver", cfg.StoreDriver).Info("Database connection established")
	return db, nil
}

// ConnectMongo connects and pings the configured MongoDB deployment
func ConnectMongo(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.WithField("database", cfg.MongoDBName).Info("Successfully connected to MongoDB")
	return client.Database(cfg.MongoDBName), nil
}

// NewMongoBreaker guards MongoDB calls; a missing document is not a failure
func NewMongoBreaker(log logrus.FieldLogger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "mongo-store",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, repository.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})
}

// OpenStore connects the document store selected by STORE_DRIVER and
// prepares its schema
func OpenStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverFile:
		store, err := repository.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		log.WithField("dir", cfg.DataDir).Info("Using file store")
		return store, nil

	case config.DriverMongo:
		db, err := ConnectMongo(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		if err := MigrateMongo(ctx, db, collectionNames(cfg)); err != nil {
			_ = db.Client().Disconnect(context.Background())
			return nil, err
		}
		return repository.NewMongoStore(db, NewMongoBreaker(log)), nil

	default:
		db, err := Connect(cfg, log)
		if err != nil {
			return nil, err
		}
		if err := Migrate(db, log); err != nil {
			return nil, err
		}
		return repository.NewGormStore(db), nil
	}
}
