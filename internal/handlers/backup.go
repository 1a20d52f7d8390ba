package handlers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"glow/internal/auth"
	"glow/internal/media"
	"glow/pkg/logger"
	"glow/pkg/utils"
)

// Backup streams a point-in-time snapshot of the database, or uploads it to
// the media bucket with ?target=s3.
// GET /api/admin/backup
func (a *App) Backup(w http.ResponseWriter, r *http.Request) {
	admin, ok := a.require(w, r, auth.NeedAdmin)
	if !ok {
		return
	}

	// Ensure only one backup runs at a time to prevent resource exhaustion.
	if !a.backupMu.TryLock() {
		utils.WriteError(w, http.StatusTooManyRequests, utils.ErrResourceConflict, "Another backup is currently in progress.")
		return
	}
	defer a.backupMu.Unlock()

	// Downloads must come from our own pages.
	if ref := r.Header.Get("Referer"); ref != "" {
		allowed := append([]string{a.Config.GetBaseUrl()}, a.Config.Security.CorsOrigins...)
		if !utils.IsAllowedOrigin(ref, allowed) {
			fail(w, auth.ErrForbidden)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	dir := filepath.Join(os.TempDir(), "glow-backups")
	path, err := a.Store.Snapshot(ctx, dir)
	if err != nil {
		fail(w, fmt.Errorf("snapshot: %w", err))
		return
	}
	defer os.Remove(path)
	logger.LogInfo("Backup requested by %s", admin.Email)

	if r.URL.Query().Get("target") == "s3" {
		s3, ok := a.Media.(*media.S3)
		if !ok {
			fail(w, media.ErrNotConfigured)
			return
		}
		key, err := s3.PutBackup(ctx, path)
		if err != nil {
			fail(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, map[string]string{"key": key})
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		fail(w, fmt.Errorf("verify backup: %w", err))
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filepath.Base(path)))
	w.Header().Set("Content-Type", "application/x-sqlite3")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", info.Size()))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
	http.ServeFile(w, r, path)
}
