// Package storage persists the section configuration snapshot. The snapshot
// is one opaque blob keyed by a single name; whatever backs the store only
// needs get/set semantics. Reads on the content-serving path never touch a
// store, they hit the in-memory registry, so stores are only exercised
// during explicit sync and admin operations.
package storage

import (
	"context"
	"errors"

	"github.com/c360studio/memberdir/section"
)

// ErrNotFound is returned when no snapshot has ever been persisted.
var ErrNotFound = errors.New("snapshot not found")

// SnapshotStore persists and retrieves the full section snapshot as a
// single operation. Concurrent writers are last-write-wins; the admin
// workflow that drives writes is effectively serialized by humans, and no
// merge semantics are defined.
type SnapshotStore interface {
	// Get returns the most recently persisted snapshot, or ErrNotFound.
	Get(ctx context.Context) (*section.Snapshot, error)

	// Set replaces the persisted snapshot.
	Set(ctx context.Context, snap *section.Snapshot) error
}
