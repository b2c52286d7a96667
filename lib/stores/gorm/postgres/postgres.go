package postgres

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/thewired-org/wired-relay/lib/logging"
	gorm_store "github.com/thewired-org/wired-relay/lib/stores/gorm"
)

// MaxOpenConns bounds the shared connection pool.
const MaxOpenConns = 20

// InitStore connects to Postgres, migrates the relay schema and installs
// the full-text search column and index.
func InitStore(databaseURL string) (*gorm_store.GormStore, error) {
	store := &gorm_store.GormStore{}

	var err error
	store.DB, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:      logger.Default.LogMode(logger.Silent),
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	sqlDB, err := store.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(MaxOpenConns)

	if err := store.Init(); err != nil {
		return nil, err
	}

	// Stored generated tsvector over content, kept current by Postgres
	// itself, with a GIN index for the NIP-50 search path.
	err = store.DB.Exec(`
		ALTER TABLE events ADD COLUMN IF NOT EXISTS search_tsv tsvector
		GENERATED ALWAYS AS (to_tsvector('english', coalesce(content, ''))) STORED`).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create search column: %w", err)
	}

	err = store.DB.Exec(`CREATE INDEX IF NOT EXISTS idx_events_search_tsv ON events USING GIN (search_tsv)`).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}

	logging.Info("Connected to database")

	return store, nil
}
