// Package results holds the grouped match list shown to the user. Groups
// are keyed by file path and keep insertion order.
package results

import (
	"errors"
	"slices"
	"sync"

	"github.com/Cyclone1070/greplace/internal/search/models"
)

// ErrUnknownGroup is returned when items are set on a group never added.
var ErrUnknownGroup = errors.New("unknown result group")

// RowKind distinguishes group headers from match rows.
type RowKind int

const (
	RowGroup RowKind = iota
	RowMatch
)

// Row is one visible line of the result list.
type Row struct {
	Kind      RowKind
	Key       string
	Count     int  // matches in the group, header rows only
	Collapsed bool // header rows only
	Match     models.MatchRecord
}

// SetOptions controls SetItems.
type SetOptions struct {
	// Append adds to the group's items instead of replacing them.
	Append bool
}

type group struct {
	key       string
	items     []models.MatchRecord
	collapsed bool
}

// Store is a thread-safe grouped result list. Row indexes refer to the
// visible rows: a header per group followed by its matches unless collapsed.
type Store struct {
	mu       sync.RWMutex
	groups   []*group
	byKey    map[string]*group
	onChange func()
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{byKey: make(map[string]*group)}
}

// OnChange registers fn to run after every mutation, outside the lock.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Clear removes every group.
func (s *Store) Clear() {
	s.mu.Lock()
	s.groups = nil
	s.byKey = make(map[string]*group)
	s.mu.Unlock()
	s.notify()
}

// AddGroup appends an empty group for key. It reports false if the group
// already exists.
func (s *Store) AddGroup(key string) bool {
	s.mu.Lock()
	if _, ok := s.byKey[key]; ok {
		s.mu.Unlock()
		return false
	}
	g := &group{key: key}
	s.groups = append(s.groups, g)
	s.byKey[key] = g
	s.mu.Unlock()
	s.notify()
	return true
}

// SetItems sets the matches of an existing group.
func (s *Store) SetItems(key string, items []models.MatchRecord, opts SetOptions) error {
	s.mu.Lock()
	g, ok := s.byKey[key]
	if !ok {
		s.mu.Unlock()
		return ErrUnknownGroup
	}
	if opts.Append {
		g.items = append(g.items, items...)
	} else {
		g.items = slices.Clone(items)
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// AllLocations returns every match in display order, collapsed groups included.
func (s *Store) AllLocations() []models.MatchRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.MatchRecord
	for _, g := range s.groups {
		out = append(out, g.items...)
	}
	return out
}

// LocationAt returns the match on visible row index. Header rows and
// out-of-range indexes report false.
func (s *Store) LocationAt(index int) (models.MatchRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, item := s.resolve(index)
	if g == nil || item < 0 {
		return models.MatchRecord{}, false
	}
	return g.items[item], true
}

// ToggleGroupAt collapses or expands the group owning visible row index,
// whether the row is its header or one of its matches.
func (s *Store) ToggleGroupAt(index int) bool {
	s.mu.Lock()
	g, _ := s.resolve(index)
	if g == nil {
		s.mu.Unlock()
		return false
	}
	g.collapsed = !g.collapsed
	s.mu.Unlock()
	s.notify()
	return true
}

// resolve maps a visible row to its group and item index (-1 for the header).
func (s *Store) resolve(index int) (*group, int) {
	if index < 0 {
		return nil, -1
	}
	row := 0
	for _, g := range s.groups {
		if index == row {
			return g, -1
		}
		row++
		if g.collapsed {
			continue
		}
		if index < row+len(g.items) {
			return g, index - row
		}
		row += len(g.items)
	}
	return nil, -1
}

// Rows returns the visible rows.
func (s *Store) Rows() []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rows []Row
	for _, g := range s.groups {
		rows = append(rows, Row{Kind: RowGroup, Key: g.key, Count: len(g.items), Collapsed: g.collapsed})
		if g.collapsed {
			continue
		}
		for _, m := range g.items {
			rows = append(rows, Row{Kind: RowMatch, Key: g.key, Match: m})
		}
	}
	return rows
}

// Len returns the total number of matches.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, g := range s.groups {
		n += len(g.items)
	}
	return n
}

// Groups returns the number of groups.
func (s *Store) Groups() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.groups)
}
