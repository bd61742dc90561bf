// Package modelstesting provides in-memory databases for package tests.
package modelstesting

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"predex/models"
)

// NewFakeDB opens a fresh in-memory sqlite database with all model tables
// migrated. Each call returns an isolated database.
func NewFakeDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Market{},
		&models.Event{},
		&models.CollateralAccount{},
		&models.ShareBalance{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}
