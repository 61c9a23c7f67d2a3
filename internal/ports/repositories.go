package ports

import (
	"context"
)

// Durable storage keys shared by every key-value backend
const (
	TasksKey        = "dayPlannerTasks"
	ProfileImageKey = "profileImage"
)

// KeyValueStore defines the durable string slots the planner persists into.
// Get reports a missing key with ok=false and a nil error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Ping(ctx context.Context) error
	Close() error
}

// PersistObserver is notified after every write-through of the task collection
type PersistObserver interface {
	ObservePersist(taskCount int, err error)
}
