package repository

import (
	"context"
	"errors"
)

// Namespaced keys used by the planner.
const (
	TasksKey = "taskflow-tasks"
	ThemeKey = "taskflow-theme"
)

// ErrCorrupt marks a stored value that could not be decoded.
var ErrCorrupt = errors.New("stored value is corrupt")

// KeyValueStore is the persistence port. Writes are last-writer-wins.
type KeyValueStore interface {
	// Get returns the value stored under key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}
