package fs

import (
	"context"
	"os"

	"github.com/aretw0/hdx/pkg/core"
)

// Stats describes the backing file of a collection. An absent file yields
// zero counts and HasData=false. A file that cannot be decoded still reports
// its path, size and modification time, with zero counts and LoadError set.
func (s *Store) Stats(ctx context.Context, c core.Collection) (core.FileStats, error) {
	stats := core.FileStats{
		Collection: c,
		FilePath:   s.path(c),
	}
	if !c.Valid() {
		return stats, unknownCollection("stats", c)
	}

	info, err := os.Stat(stats.FilePath)
	if os.IsNotExist(err) {
		return stats, nil
	}
	if err != nil {
		return stats, core.NewStorageError("stat", c, err)
	}
	modified := info.ModTime()
	stats.SizeBytes = info.Size()
	stats.LastModified = &modified

	records, err := s.Load(ctx, c).Unwrap()
	if err != nil {
		s.logger.Warn("collection unreadable, reporting zero counts", "collection", c, "error", err)
		stats.LoadError = err.Error()
		return stats, nil
	}
	stats.TotalItems = len(records)
	for _, r := range records {
		if r.Active() {
			stats.ActiveItems++
		}
	}
	stats.DeletedItems = stats.TotalItems - stats.ActiveItems
	stats.HasData = stats.TotalItems > 0
	return stats, nil
}
