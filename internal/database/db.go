package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/warterbili/InterviewManager-system/internal/config"
	"github.com/warterbili/InterviewManager-system/internal/database/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Initialize opens the store selected by the db config and runs migrations.
// The MySQL path matches the original deployment (utf8mb4); SQLite is the
// zero-dependency option used by local runs and tests.
func Initialize(cfg *config.DBConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	var db *gorm.DB
	var err error

	switch cfg.Driver {
	case config.DriverSQLite:
		dir := filepath.Dir(cfg.Path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
		db, err = gorm.Open(sqlite.Open(cfg.Path), gormConfig)
	case config.DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=True&loc=Local",
			cfg.User, cfg.Password, cfg.Host, cfg.Database, cfg.Charset)
		db, err = gorm.Open(mysql.Open(dsn), gormConfig)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// runMigrations runs all database migrations
func runMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.JobEmail{},
		&models.ScanRun{},
		&models.Interview{},
		&models.Delivery{},
	); err != nil {
		return err
	}

	return ensureEmailDedupIndex(db)
}

// ensureEmailDedupIndex creates the composite unique index that fences
// duplicate rows. The imap_id is not durable across mailbox sessions, so
// the key pairs it with content columns. MySQL needs explicit prefix
// lengths on the text columns; SQLite indexes the full values.
func ensureEmailDedupIndex(db *gorm.DB) error {
	if db.Migrator().HasIndex(&models.JobEmail{}, "uniq_email") {
		return nil
	}

	var stmt string
	switch db.Dialector.Name() {
	case "mysql":
		stmt = "ALTER TABLE all_emails ADD UNIQUE KEY uniq_email (imap_id, subject(100), sender(100), send_date(50))"
	default:
		stmt = "CREATE UNIQUE INDEX IF NOT EXISTS uniq_email ON all_emails (imap_id, subject, sender, send_date)"
	}

	if err := db.Exec(stmt).Error; err != nil {
		// A concurrent invocation may have created it first.
		if strings.Contains(err.Error(), "Duplicate key name") ||
			strings.Contains(err.Error(), "already exists") {
			return nil
		}
		return err
	}
	return nil
}
