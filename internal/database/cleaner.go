package database

import (
	"context"
	"os"
	"time"

	"gorm.io/gorm"

	"glow/internal/config"
	"glow/pkg/logger"
	"glow/pkg/utils"
)

/*
Maintenance worker
==================

Two jobs share one ticker:

 1. Draft expiry. Autosave writes a Draft row for every edit session that has
    not been saved under a customer name. Once a draft is older than the editor
    session TTL nobody can resume it, so it is deleted in batches of 50.

 2. De-bloat. Deleted drafts and invitations leave free pages behind. Space is
    only reclaimed when the physical file (db + wal) is above database.max_size
    and more than half of it is free. The WAL is checkpointed first.

Invitations and RSVPs are never pruned; they are customer data.
*/

type Cleaner struct {
	Store    *Store
	Path     string
	MaxSize  int64
	DraftTTL time.Duration
	Interval time.Duration
}

// StartCleaner runs the worker with the global configuration until ctx ends.
func StartCleaner(ctx context.Context, store *Store) {
	cfg := config.AppConfig
	c := Cleaner{
		Store:    store,
		Path:     cfg.Database.Path,
		MaxSize:  utils.SizeToBytes(cfg.Database.MaxSize, 1<<30),
		DraftTTL: config.Duration(cfg.Editor.SessionTTL, 2*time.Hour),
		Interval: config.Duration(cfg.Database.PruneInterval, 10*time.Minute),
	}
	logger.LogInfo("Storage Cleaner started. Limit: %s, Interval: %s, Draft TTL: %s",
		utils.FormatBytes(c.MaxSize), c.Interval, c.DraftTTL)
	c.Run(ctx)
}

func (c Cleaner) Run(ctx context.Context) {
	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	c.RunOnce(ctx, time.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c.RunOnce(ctx, now)
		}
	}
}

// RunOnce purges expired drafts and vacuums if needed. It reports whether a
// VACUUM ran.
func (c Cleaner) RunOnce(ctx context.Context, now time.Time) bool {
	n, err := c.Store.PurgeDrafts(ctx, now.Add(-c.DraftTTL))
	if err != nil {
		logger.LogError("Draft purge failed: %v", err)
	} else if n > 0 {
		logger.LogInfo("Purged %d expired drafts", n)
	}
	return c.vacuumIfBloated(c.Store.DB())
}

func (c Cleaner) vacuumIfBloated(db *gorm.DB) bool {
	if c.Path == "" {
		return false
	}
	fileInfo, err := os.Stat(c.Path)
	if err != nil {
		logger.LogError("Cleaner failed to stat DB file: %v", err)
		return false
	}

	physicalSize := fileInfo.Size()
	if walInfo, err := os.Stat(c.Path + "-wal"); err == nil {
		physicalSize += walInfo.Size()
	}
	if physicalSize < c.MaxSize {
		return false
	}

	var pageCount, freePages, pageSize int64
	db.Raw("PRAGMA page_count;").Scan(&pageCount)
	db.Raw("PRAGMA freelist_count;").Scan(&freePages)
	db.Raw("PRAGMA page_size;").Scan(&pageSize)

	emptySpace := freePages * pageSize
	logger.LogInfo("Storage Analysis - Phys: %s | Pages: %d | Free: %s",
		utils.FormatBytes(physicalSize), pageCount, utils.FormatBytes(emptySpace))

	if float64(emptySpace) <= float64(physicalSize)*0.50 {
		logger.LogWarn("Database is above %s but mostly live data; nothing to reclaim.", utils.FormatBytes(c.MaxSize))
		return false
	}

	logger.LogWarn("DB is bloated (>50%% empty). Starting VACUUM to reclaim space...")
	db.Exec("PRAGMA wal_checkpoint(TRUNCATE);")

	start := time.Now()
	if err := db.Exec("VACUUM;").Error; err != nil {
		logger.LogError("VACUUM failed: %v", err)
		return false
	}
	logger.LogInfo("VACUUM completed in %v. Disk space reclaimed.", time.Since(start))
	return true
}
