// Package migration applies the schema contract via gorm auto-migration.
package migration

import (
	"fmt"

	"gorm.io/gorm"

	"gitgate/internal/infrastructure/persistence/models"
	"gitgate/internal/shared/logger"
)

// contractModels is the binding schema contract: these six tables and their
// relationships are what external consumers of the database rely on.
func contractModels() []interface{} {
	return []interface{}{
		&models.UserModel{},
		&models.RepoModel{},
		&models.InstallationModel{},
		&models.UserInstallationModel{},
		&models.TrackedRepoModel{},
		&models.UserRepoAccessCacheModel{},
	}
}

// AutoMigrate brings the schema up to date.
func AutoMigrate(db *gorm.DB, log logger.Interface) error {
	for _, model := range contractModels() {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
	}

	log.Infow("schema migration completed", "tables", len(contractModels()))
	return nil
}

// Status reports which contract tables currently exist.
func Status(db *gorm.DB) (map[string]bool, error) {
	status := make(map[string]bool)
	for _, model := range contractModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("failed to parse model: %w", err)
		}
		status[stmt.Schema.Table] = db.Migrator().HasTable(model)
	}
	return status, nil
}
