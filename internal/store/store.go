// Package store persists the task collection as one blob under one key of a
// local key-value storage file.
package store

import (
	"context"
	"errors"

	"taskman/internal/task"
)

// DefaultKey is the storage key the task collection lives under.
const DefaultKey = "task-manager-tasks"

// ErrCorrupt is returned when the persisted collection cannot be decoded.
var ErrCorrupt = errors.New("stored tasks are corrupt")

// Store is the persistence boundary for the task collection.
// There are no partial updates: callers read everything, change it in
// memory and write everything back.
type Store interface {
	// GetAll returns the persisted collection in insertion order.
	// Returns an empty slice if nothing has been persisted yet.
	GetAll(ctx context.Context) ([]task.Task, error)

	// SaveAll overwrites the persisted collection unconditionally.
	SaveAll(ctx context.Context, tasks []task.Task) error
}

// KV is a string key-value storage, the local equivalent of browser storage.
type KV interface {
	// Get returns the value for key. ok is false if the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}
