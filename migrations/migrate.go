package migrations

import (
	"fmt"

	"tttserver/models"

	"gorm.io/gorm"
)

// AutoMigrateDB は全テーブルのマイグレーションを実行する
func AutoMigrateDB(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Game{},
		&models.GameObserver{},
		&models.UserStats{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}
	return nil
}
