package gorm

import (
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/thewired-org/wired-relay/lib/types"
)

// GormStore implements stores.Store on top of a relational database.
// The production deployment uses the Postgres driver; tests and local
// development run the same store over SQLite.
type GormStore struct {
	DB    *gorm.DB
	mutex sync.RWMutex
}

// Init migrates the relay schema.
func (store *GormStore) Init() error {
	err := store.DB.AutoMigrate(
		&types.EventRecord{},
		&types.Group{},
		&types.GroupMember{},
		&types.GroupRole{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}

	return nil
}
