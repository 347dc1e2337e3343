// Package store snapshots fetched application records in a local SQLite
// file, so rendering and summaries can run without reaching the sheet.
package store

import (
	"errors"
	"time"

	"stageflow/internal/funnel"
)

// DefaultDBPath is the default snapshot location (per-project dot-dir).
const DefaultDBPath = ".stageflow/snapshots.db"

// ErrNoSnapshot is returned when the store holds no runs yet.
var ErrNoSnapshot = errors.New("no snapshot available")

// Run is one recorded fetch of the sheet.
type Run struct {
	ID          int64
	FetchedAt   time.Time
	SheetID     string
	RecordCount int
}

// Store is the snapshot facade. The CLI uses only this interface; the
// implementation is SQLite guarded by a file lock.
type Store interface {
	// SaveRun persists the records of one fetch and returns the run ID.
	SaveRun(sheetID string, records []funnel.ApplicationRecord) (int64, error)
	// LatestRun returns the newest run and its records, or ErrNoSnapshot.
	LatestRun() (*Run, []funnel.ApplicationRecord, error)
	// ListRuns returns all runs, newest first.
	ListRuns() ([]*Run, error)
	Close() error
}
