package sqlite

import (
	"fmt"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	gorm_store "github.com/thewired-org/wired-relay/lib/stores/gorm"
)

// InitStore opens (or creates) a SQLite-backed relay store in the given
// directory. Used by tests and local development; production runs the
// Postgres driver.
func InitStore(basePath string) (*gorm_store.GormStore, error) {
	store := &gorm_store.GormStore{}

	// WAL plus a generous busy timeout keeps concurrent reads from
	// tripping over writer locks.
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=30000&_txlock=immediate&_synchronous=normal",
		filepath.Join(basePath, "relay.db"))

	var err error
	store.DB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		PrepareStmt:          true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite database: %w", err)
	}

	if err := store.Init(); err != nil {
		return nil, err
	}

	return store, nil
}
