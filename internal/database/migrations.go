package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/task-dashboard-api/internal/config"
	"github.com/yukikurage/task-dashboard-api/internal/constants"
	"github.com/yukikurage/task-dashboard-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

// Migrate creates the documents table and its indexes
func Migrate(db *gorm.DB, log logrus.FieldLogger) error {
	log.Info("Running database migrations...")
	if err := db.AutoMigrate(&repository.DocumentRecord{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := AddIndexes(db, log); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}
	log.Info("Database migrations completed")
	return nil
}

// AddIndexes adds the indexes used by collection listing and ordering
func AddIndexes(db *gorm.DB, log logrus.FieldLogger) error {
	indexes := []struct {
		name    string
		columns string
	}{
		{"idx_documents_collection_created_at", "collection, created_at"},
		{"idx_documents_collection_updated_at", "collection, updated_at"},
	}

	table := repository.DocumentRecord{}.TableName()
	for _, idx := range indexes {
		// Check if index already exists
		if db.Migrator().HasIndex(&repository.DocumentRecord{}, idx.name) {
			log.WithField("index", idx.name).Debug("Index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.WithField("index", idx.name).Infof("Created index on %s(%s)", table, idx.columns)
	}

	return nil
}

// MigrateMongo creates the createdAt and status indexes on every collection
func MigrateMongo(ctx context.Context, db *mongo.Database, collections []string) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: constants.FieldCreatedAt, Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
		{
			Keys:    bson.D{{Key: constants.FieldStatus, Value: 1}},
			Options: options.Index().SetName("idx_status"),
		},
	}

	for _, name := range collections {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func collectionNames(cfg *config.Config) []string {
	return []string{constants.CollectionProjects, constants.CollectionTasks, cfg.UsersCollection}
}
