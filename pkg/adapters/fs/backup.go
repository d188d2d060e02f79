package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/hdx/pkg/core"
)

const (
	// BackupInfix separates the collection filename from the backup timestamp.
	BackupInfix = ".backup."

	backupTimeLayout = "20060102_150405"
)

// backup copies the current collection file aside. Best-effort: a failure
// is logged and counted but never aborts the write that triggered it.
func (s *Store) backup(c core.Collection) {
	src := s.path(c)
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return
	}

	dst := src + BackupInfix + s.now().Format(backupTimeLayout)
	if err := copyFile(src, dst); err != nil {
		s.metrics.backupFailures.WithLabelValues(string(c)).Inc()
		s.logger.Warn("failed to create backup", "collection", c, "path", src, "error", err)
		return
	}
	s.logger.Debug("created backup", "collection", c, "path", dst)
}

// copyFile copies content, mode and modification time.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// Backups lists the backup files of a collection, oldest first.
func (s *Store) Backups(c core.Collection) ([]string, error) {
	if !c.Valid() {
		return nil, unknownCollection("list_backups", c)
	}

	pattern := c.Filename() + BackupInfix + "*"
	matches, err := doublestar.Glob(os.DirFS(s.Path), pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups for %s: %w", c, err)
	}

	// The timestamp layout sorts lexically in chronological order.
	sort.Strings(matches)

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		paths = append(paths, filepath.Join(s.Path, m))
	}
	return paths, nil
}

// PruneBackups removes the oldest backups of c so that at most keep remain.
// It returns how many files were removed.
func (s *Store) PruneBackups(c core.Collection, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	backups, err := s.Backups(c)
	if err != nil {
		return 0, err
	}
	if len(backups) <= keep {
		return 0, nil
	}

	removed := 0
	for _, path := range backups[:len(backups)-keep] {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("failed to remove backup %s: %w", filepath.Base(path), err)
		}
		removed++
	}
	return removed, nil
}
