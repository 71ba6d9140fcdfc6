package db

import (
	"fmt"

	"gorm.io/gorm"
)

func MigrateDatabase(db *gorm.DB) error {
	if err := V1_1_0_AddSubOrgScope(db); err != nil {
		return err
	}

	return nil
}

// V1_1_0_AddSubOrgScope adds the sub_org_scope column to connector_update_logs
// for installations upgraded from releases that predate sub-organization views.
func V1_1_0_AddSubOrgScope(db *gorm.DB) error {
	migrationKey := "v1.1.0_add_sub_org_scope"
	var count int64
	if err := db.Table("system_settings").Where("setting_key = ?", migrationKey).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check migration status: %w", err)
	}

	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`ALTER TABLE connector_update_logs ADD COLUMN sub_org_scope BOOLEAN DEFAULT FALSE`).Error; err != nil {
			// column may already exist, ignore
		}

		if err := tx.Exec(`
			INSERT INTO system_settings (setting_key, setting_value, description, created_at, updated_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		`, migrationKey, "true", "sub_org_scope column migration marker").Error; err != nil {
			return fmt.Errorf("failed to record migration completion: %w", err)
		}

		return nil
	})
}
