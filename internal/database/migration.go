package database

import (
	"fmt"

	"github.com/jeffersontgc/anastore/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations. Entity collections live
// in the store snapshot; only session/audit/backup bookkeeping and the
// snapshot blob itself are relational.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Session{},
		&models.AuditLog{},
		&models.Backup{},
		&models.Snapshot{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
