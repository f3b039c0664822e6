// Package history keeps the bounded, most-recent-first list of executed
// search queries.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// LoadError is returned when a persisted history file cannot be read or decoded.
type LoadError struct {
	Path  string
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load history from %s: %v", e.Path, e.Cause)
}
func (e *LoadError) Unwrap() error { return e.Cause }
func (e *LoadError) IOError() bool { return true }

// SaveError is returned when history cannot be written.
type SaveError struct {
	Path  string
	Cause error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to save history to %s: %v", e.Path, e.Cause)
}
func (e *SaveError) Unwrap() error { return e.Cause }
func (e *SaveError) IOError() bool { return true }

// Store is an in-memory query history. Entries are unique, newest first, and
// never more than the configured cap.
type Store struct {
	mu      sync.RWMutex
	entries []string
	max     int
}

// NewStore creates an empty store holding at most max entries.
func NewStore(max int) *Store {
	if max < 1 {
		panic("history max must be positive")
	}
	return &Store{max: max}
}

// Add moves query to the front, dropping any earlier occurrence, and trims
// the oldest entries beyond the cap. Empty queries are ignored.
func (s *Store) Add(query string) {
	if query == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = slices.DeleteFunc(s.entries, func(e string) bool { return e == query })
	s.entries = slices.Insert(s.entries, 0, query)
	if len(s.entries) > s.max {
		s.entries = s.entries[:s.max]
	}
}

// Entries returns a copy of the history, most recent first.
func (s *Store) Entries() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries)
}

// Len returns the number of stored queries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// fileSystem is what persistence needs from the filesystem.
type fileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFileAtomic(path string, content []byte, perm os.FileMode) error
	EnsureDirs(path string) error
}

type persisted struct {
	Queries []string `json:"queries"`
}

// Load replaces the store's content with the file at path. A missing file
// leaves the store empty and is not an error.
func (s *Store) Load(fs fileSystem, path string) error {
	data, err := fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return &LoadError{Path: path, Cause: err}
	}

	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return &LoadError{Path: path, Cause: err}
	}

	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
	// Oldest first so the newest ends up at the front with duplicates folded.
	for i := len(p.Queries) - 1; i >= 0; i-- {
		s.Add(p.Queries[i])
	}
	return nil
}

// Save writes the current entries to path, creating parent directories.
func (s *Store) Save(fs fileSystem, path string) error {
	data, err := json.MarshalIndent(persisted{Queries: s.Entries()}, "", "  ")
	if err != nil {
		return &SaveError{Path: path, Cause: err}
	}
	if err := fs.EnsureDirs(filepath.Dir(path)); err != nil {
		return &SaveError{Path: path, Cause: err}
	}
	if err := fs.WriteFileAtomic(path, data, 0o600); err != nil {
		return &SaveError{Path: path, Cause: err}
	}
	return nil
}
