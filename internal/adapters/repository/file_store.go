package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/dayplanner/core/internal/ports"
)

const (
	lockSuffix    = ".lock"
	ownerSuffix   = ".owner"
	tempSuffix    = ".tmp"
	corruptSuffix = ".corrupt"

	lockRetryDelay = 20 * time.Millisecond
)

// ErrCorruptDocument is returned by Get when the store file is not a JSON
// object of string values.
var ErrCorruptDocument = errors.New("store document is corrupt")

// ErrStoreInUse is returned by Claim when another process owns the store.
var ErrStoreInUse = errors.New("store in use by another dayplanner process")

// FileStore implements ports.KeyValueStore as a single JSON object on local
// disk. Every key shares one document; writes replace it atomically through a
// temp file and rename.
//
// The planner rewrites the whole task list from memory, so only one process
// may use a store at a time. Claim takes an exclusive owner lock that is held
// until Close; a second process fails with ErrStoreInUse instead of
// overwriting the first one's tasks.
type FileStore struct {
	mu    sync.Mutex // flock state is per handle, not per goroutine
	path  string
	flk   *flock.Flock
	owner *flock.Flock
}

// NewFileStore prepares a store at path, creating its directory
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("file store path is required")
	}

	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return &FileStore{
		path:  path,
		flk:   flock.New(path + lockSuffix),
		owner: flock.New(path + ownerSuffix),
	}, nil
}

// Claim makes this handle the sole user of the store until Close
func (s *FileStore) Claim() error {
	ok, err := s.owner.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock %s: %w", s.path, err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", s.path, ErrStoreInUse)
	}
	return nil
}

var _ ports.KeyValueStore = (*FileStore)(nil)

// Path returns the document location
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.flk.TryRLockContext(ctx, lockRetryDelay); err != nil {
		return "", false, fmt.Errorf("failed to acquire read lock on %s: %w", s.path, err)
	}
	defer func() { _ = s.flk.Unlock() }()

	doc, err := s.readDocument()
	if err != nil {
		return "", false, err
	}

	v, ok := doc[key]
	return v, ok, nil
}

func (s *FileStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.flk.TryLockContext(ctx, lockRetryDelay); err != nil {
		return fmt.Errorf("failed to acquire write lock on %s: %w", s.path, err)
	}
	defer func() { _ = s.flk.Unlock() }()

	doc, err := s.readDocument()
	if errors.Is(err, ErrCorruptDocument) {
		// Keep the unreadable bytes aside and start a fresh document.
		if renameErr := os.Rename(s.path, s.path+corruptSuffix); renameErr != nil {
			return fmt.Errorf("failed to set aside corrupt store %s: %w", s.path, renameErr)
		}
		doc, err = map[string]string{}, nil
	}
	if err != nil {
		return err
	}

	doc[key] = value
	return s.writeDocument(doc)
}

// Ping checks that the document is readable
func (s *FileStore) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.flk.TryRLockContext(ctx, lockRetryDelay); err != nil {
		return fmt.Errorf("failed to acquire read lock on %s: %w", s.path, err)
	}
	defer func() { _ = s.flk.Unlock() }()

	_, err := s.readDocument()
	return err
}

// Close releases the lock handles, and with them any claim
func (s *FileStore) Close() error {
	return errors.Join(s.flk.Close(), s.owner.Close())
}

func (s *FileStore) readDocument() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read store %s: %w", s.path, err)
	}

	if len(data) == 0 {
		return map[string]string{}, nil
	}

	doc := map[string]string{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptDocument, s.path, err)
	}
	return doc, nil
}

func (s *FileStore) writeDocument(doc map[string]string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store document: %w", err)
	}

	tmp := s.path + tempSuffix
	defer func() { _ = os.Remove(tmp) }()

	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temporary store %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace store %s: %w", s.path, err)
	}
	return nil
}
