package core

import (
	"context"
	"time"
)

// LoadStatus tags the outcome of loading a collection.
type LoadStatus int

const (
	// LoadOK means the collection file was read and decoded.
	LoadOK LoadStatus = iota
	// LoadNotInitialized means the file does not exist yet. This is a valid,
	// empty state.
	LoadNotInitialized
	// LoadInvalidFormat means the file holds valid JSON that is not an
	// array of objects.
	LoadInvalidFormat
	// LoadCorrupt means the file is not valid JSON.
	LoadCorrupt
	// LoadIOFailure means the file could not be read.
	LoadIOFailure
)

func (s LoadStatus) String() string {
	switch s {
	case LoadOK:
		return "ok"
	case LoadNotInitialized:
		return "not_initialized"
	case LoadInvalidFormat:
		return "invalid_format"
	case LoadCorrupt:
		return "corrupt"
	case LoadIOFailure:
		return "io_failure"
	}
	return "unknown"
}

// LoadResult is the tagged outcome of Store.Load.
type LoadResult struct {
	Status  LoadStatus
	Records []Record
	Err     error
}

// Loaded builds a successful result.
func Loaded(records []Record) LoadResult {
	return LoadResult{Status: LoadOK, Records: records}
}

// NotInitialized builds the result for an absent collection file.
func NotInitialized() LoadResult {
	return LoadResult{Status: LoadNotInitialized}
}

// LoadFailed builds a failed result.
func LoadFailed(status LoadStatus, err error) LoadResult {
	return LoadResult{Status: status, Err: err}
}

// Unwrap collapses the outcome: a missing collection yields an empty slice,
// every other failure yields its error.
func (r LoadResult) Unwrap() ([]Record, error) {
	switch r.Status {
	case LoadOK:
		return r.Records, nil
	case LoadNotInitialized:
		return []Record{}, nil
	}
	return nil, r.Err
}

// MutateFunc transforms the loaded records. It returns the records to
// persist and whether anything changed; unchanged collections are not
// rewritten.
type MutateFunc func(records []Record) ([]Record, bool, error)

// Store owns the on-disk representation of collections.
// Adhering to this interface keeps the repository layer independent of
// the underlying storage mechanism.
type Store interface {
	// Load reads a full collection.
	Load(ctx context.Context, c Collection) LoadResult
	// Save replaces a full collection.
	Save(ctx context.Context, c Collection, records []Record) error
	// Mutate runs a load-modify-save cycle under the store's write lock.
	Mutate(ctx context.Context, c Collection, fn MutateFunc) (bool, error)
	// NextID returns max(id)+1 over all records, deleted ones included.
	NextID(ctx context.Context, c Collection) (int64, error)
}

// Watchable is implemented by stores that can report external changes.
type Watchable interface {
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

// FileStats describes the backing file of a collection.
type FileStats struct {
	Collection   Collection `json:"collection"`
	FilePath     string     `json:"file_path"`
	SizeBytes    int64      `json:"file_size_bytes"`
	LastModified *time.Time `json:"last_modified"`
	TotalItems   int        `json:"total_items"`
	ActiveItems  int        `json:"active_items"`
	DeletedItems int        `json:"deleted_items"`
	HasData      bool       `json:"has_data"`
	LoadError    string     `json:"load_error,omitempty"`
}

// Inspectable is implemented by stores that can describe their files.
type Inspectable interface {
	Stats(ctx context.Context, c Collection) (FileStats, error)
}

// Backupable is implemented by stores that keep backup copies of
// collection files.
type Backupable interface {
	Backups(c Collection) ([]string, error)
	PruneBackups(c Collection, keep int) (int, error)
}
