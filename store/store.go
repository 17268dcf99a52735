// Package store persists the reconciled position set between runs.
//
// The engine itself only returns values; a Store is the external writer that
// applies a merge result atomically relative to its own storage medium. Two
// concurrent runs against the same store are a last-write-wins race: the
// store does not attempt to detect or resolve it.
package store

import (
	"github.com/optfolio/optfolio"
)

// Store is a persisted position set.
type Store interface {
	// Snapshot reads the full position set. A store that has never been
	// written returns an empty snapshot, not an error.
	Snapshot() (optfolio.Snapshot, error)

	// Apply commits a merge result atomically, stamped with the given run ID.
	// Either every created and updated position lands, or none does.
	Apply(runID string, r optfolio.MergeResult) error

	Close() error
}
