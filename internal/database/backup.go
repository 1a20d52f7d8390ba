package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Snapshot writes a consistent copy of the database into dir with
// VACUUM INTO and returns its path.
func (s *Store) Snapshot(ctx context.Context, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	dest := filepath.Join(dir, fmt.Sprintf("glow-%s.db", time.Now().UTC().Format("20060102-150405")))
	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("backup %s already exists", dest)
	}
	if err := s.db.WithContext(ctx).Exec("VACUUM INTO ?", dest).Error; err != nil {
		return "", fmt.Errorf("vacuum into %s: %w", dest, err)
	}
	return dest, nil
}
