// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrInjected is a generic failure for error injection.
var ErrInjected = errors.New("injected failure")

// FakeKV is an in-memory ports.KeyValueStore that records writes and can be
// told to fail.
type FakeKV struct {
	mu   sync.Mutex
	data map[string]string

	// Writes counts successful Set calls per key.
	Writes map[string]int

	// Error injection for testing
	GetErr  error
	SetErr  error
	PingErr error
}

// NewFakeKV creates an empty FakeKV.
func NewFakeKV() *FakeKV {
	return &FakeKV{
		data:   make(map[string]string),
		Writes: make(map[string]int),
	}
}

// Seed stores a value without counting it as a write.
func (f *FakeKV) Seed(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
}

// Value returns the stored value for key.
func (f *FakeKV) Value(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok
}

// WriteCount returns how many times key was written.
func (f *FakeKV) WriteCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Writes[key]
}

// Get implements ports.KeyValueStore.
func (f *FakeKV) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetErr != nil {
		return "", false, f.GetErr
	}
	v, ok := f.data[key]
	return v, ok, nil
}

// Set implements ports.KeyValueStore.
func (f *FakeKV) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetErr != nil {
		return f.SetErr
	}
	f.data[key] = value
	f.Writes[key]++
	return nil
}

// Ping implements ports.KeyValueStore.
func (f *FakeKV) Ping(ctx context.Context) error {
	return f.PingErr
}

// Close implements ports.KeyValueStore.
func (f *FakeKV) Close() error {
	return nil
}

// PersistRecorder is a ports.PersistObserver that remembers every call.
type PersistRecorder struct {
	mu     sync.Mutex
	Counts []int
	Errs   []error
}

// ObservePersist implements ports.PersistObserver.
func (r *PersistRecorder) ObservePersist(taskCount int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Counts = append(r.Counts, taskCount)
	r.Errs = append(r.Errs, err)
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock fixed at t.
func NewClock(t time.Time) *Clock {
	return &Clock{now: t}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
