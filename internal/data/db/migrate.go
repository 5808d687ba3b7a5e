package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/parammap-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.Vendor{},
		&domain.Mapping{},
		&domain.MappingHistory{},
		&domain.Parameter{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// History is listed newest first, filtered by mapping or vendor.
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_mapping_history_mapping_changed ON mapping_history (mapping_id, changed_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_mapping_history_vendor_changed ON mapping_history (vendor_id, changed_at DESC)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("ensure index: %w", err)
		}
	}
	return nil
}
