package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"glow/internal/appinfo"
	"glow/internal/config"
	"glow/pkg/logger"
)

var DB *gorm.DB

// InitDB opens the configured SQLite file, migrates it and seeds the
// in-memory counters. The process exits if the database is unusable.
func InitDB() {
	dbPath := config.AppConfig.Database.Path

	if err := ensureDir(dbPath); err != nil {
		logger.LogFatal("Failed to ensure database directory: %v", err)
	}

	db, err := Open(dbPath)
	if err != nil {
		logger.LogFatal("Database connection failed: %v", err)
	}
	DB = db

	loadInitialStats(DB)
	logger.LogInfo("Database initialized successfully (%s)", dbPath)
}

// Open connects with WAL mode and a single writer connection, then runs
// migrations. path may already carry query parameters (file:x?mode=memory).
func Open(path string) (*gorm.DB, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	dsn := path + sep + "_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_cache_size=-20000&_foreign_keys=on"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormLogger.Default.LogMode(gormLogger.Silent),
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, err
	}

	if err := configurePool(db); err != nil {
		return nil, err
	}
	if err := runMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0750)
	}
	return nil
}

func configurePool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("generic database interface: %w", err)
	}

	// SQLite has one writer; more connections only add lock contention.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)
	return nil
}

func runMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}, &Invitation{}, &Draft{}, &RSVP{}); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}

	indices := []string{
		"CREATE INDEX IF NOT EXISTS idx_invitations_owner_created ON invitations(owner_email, created_at DESC);",
		"CREATE INDEX IF NOT EXISTS idx_drafts_updated_at ON drafts(updated_at);",
		"CREATE INDEX IF NOT EXISTS idx_rsvps_invitation_created ON rsvps(invitation_id, created_at DESC);",
	}
	for _, idx := range indices {
		if err := db.Exec(idx).Error; err != nil {
			logger.LogWarn("Failed to create index: %v", err)
		}
	}
	return nil
}

func loadInitialStats(db *gorm.DB) {
	var count, totalSize, rsvps int64

	row := db.Model(&Invitation{}).Select("count(*), IFNULL(SUM(size), 0)").Row()
	if err := row.Scan(&count, &totalSize); err != nil {
		logger.LogWarn("Failed to load initial stats: %v", err)
		return
	}
	if err := db.Model(&RSVP{}).Count(&rsvps).Error; err != nil {
		logger.LogWarn("Failed to count RSVPs: %v", err)
	}

	appinfo.SetInitialStats(count, totalSize, rsvps)
}
