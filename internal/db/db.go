// Package db opens the database connection and applies schema migrations.
package db

import (
	"strings"

	"governd/internal/models"
	"governd/internal/types"

	migrations "governd/internal/db/migrations"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens the configured database, picking the dialect from the DSN,
// and brings the schema up to date.
func NewDB(configManager types.ConfigManager) (*gorm.DB, error) {
	dsn := configManager.GetDatabaseConfig().DSN

	var dialector gorm.Dialector
	switch {
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		dialector = postgres.Open(dsn)
	case strings.Contains(dsn, "@tcp(") || strings.Contains(dsn, "@unix("):
		dialector = mysql.Open(dsn)
	default:
		dialector = sqlite.Open(dsn)
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := gormDB.AutoMigrate(
		&models.SystemSetting{},
		&models.ConnectorUpdateLog{},
	); err != nil {
		return nil, err
	}

	if configManager.IsMaster() {
		if err := migrations.MigrateDatabase(gormDB); err != nil {
			return nil, err
		}
	} else {
		logrus.Debug("slave instance, skipping database migrations")
	}

	return gormDB, nil
}
