package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/abramau/gavrila/internal/history"
)

// Connect opens the configured database. driver is "sqlite" or "mysql";
// sqlite is the default deployment and gets a single connection because the
// pure-Go driver serializes writers anyway.
func Connect(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "sqlite":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}

	if driver == "" || driver == "sqlite" {
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return gdb, nil
}

// Migrate creates or updates the transcript and epoch tables.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&history.Row{}, &history.ChatEpoch{})
}
