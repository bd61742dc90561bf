// Package migration brings the database schema up to date: AutoMigrate for
// the model tables, then named steps registered via Register, applied in
// lexical order and recorded in schema_migrations.
package migration

import (
	"sort"

	"gorm.io/gorm"

	"predex/logging"
	"predex/models"
)

type step struct {
	name string
	fn   func(db *gorm.DB) error
}

var registry []step

// Register adds a named migration step. Call from an init function; names
// must be unique and sort in application order.
func Register(name string, fn func(db *gorm.DB) error) {
	registry = append(registry, step{name: name, fn: fn})
}

type appliedMigration struct {
	Name string `gorm:"primary_key;size:128"`
}

// MigrateDB migrates the model tables and applies pending registered steps.
func MigrateDB(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Market{},
		&models.Event{},
		&models.CollateralAccount{},
		&models.ShareBalance{},
		&appliedMigration{},
	); err != nil {
		return err
	}

	sort.Slice(registry, func(i, j int) bool { return registry[i].name < registry[j].name })
	for _, s := range registry {
		var applied appliedMigration
		if err := db.Where("name = ?", s.name).First(&applied).Error; err == nil {
			continue
		}
		logging.Info("applying migration %s", s.name)
		if err := s.fn(db); err != nil {
			return err
		}
		if err := db.Create(&appliedMigration{Name: s.name}).Error; err != nil {
			return err
		}
	}
	return nil
}
