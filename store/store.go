// Package store implements the persistent key-blob store external
// collaborator from spec.md §6: two fixed slots per font, "base" and
// "charlist", each holding one value keyed by a fixed key, versioned so
// a schema bump drops and recreates everything rather than serving stale
// bytes to a newer engine.
package store

import (
	"context"

	"github.com/Shea690901/TachyFont/tferr"
)

// SchemaVersion is bumped whenever the on-disk/in-memory blob layout
// changes incompatibly; OpenFileStore drops and recreates a database whose
// stored version disagrees.
const SchemaVersion = 1

// Slot names the two fixed blobs a font's database holds.
type Slot string

const (
	SlotBase     Slot = "base"
	SlotCharList Slot = "charlist"
)

// Store is a keyed byte-blob store, namespaced per font by the database
// name passed to the constructor (modeling "incrfonts/<fontName>" from
// spec.md §6).
type Store interface {
	// Get returns the bytes last Put into slot. Returns a
	// *tferr.PersistMissError if the slot has never been written.
	Get(ctx context.Context, slot Slot) ([]byte, error)
	Put(ctx context.Context, slot Slot, data []byte) error
	Close() error
}

func missErr(database string, slot Slot) error {
	return tferr.PersistMiss(database + "/" + string(slot))
}
