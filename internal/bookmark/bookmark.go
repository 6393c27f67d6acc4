// Package bookmark implements the 36-slot name→coordinate map used for
// fast cursor navigation.
package bookmark

import (
	"fmt"
	"sort"

	"github.com/stlalpha/my-grid/internal/canvas"
)

// Valid reports whether key is an allowed bookmark key: a-z or 0-9.
func Valid(key byte) bool {
	return (key >= 'a' && key <= 'z') || (key >= '0' && key <= '9')
}

// Store is the 36-slot bookmark map.
type Store struct {
	marks map[byte]canvas.Point
}

// New creates an empty bookmark store.
func New() *Store {
	return &Store{marks: make(map[byte]canvas.Point)}
}

// Set installs or overwrites the bookmark at key. Last write wins.
func (s *Store) Set(key byte, p canvas.Point) error {
	if !Valid(key) {
		return fmt.Errorf("invalid bookmark key %q: must be a-z or 0-9", key)
	}
	s.marks[key] = p
	return nil
}

// Get returns the coordinate stored at key, if any.
func (s *Store) Get(key byte) (canvas.Point, bool) {
	p, ok := s.marks[key]
	return p, ok
}

// Delete removes the bookmark at key, if present.
func (s *Store) Delete(key byte) {
	delete(s.marks, key)
}

// DeleteAll clears every bookmark.
func (s *Store) DeleteAll() {
	s.marks = make(map[byte]canvas.Point)
}

// List returns all bookmarks sorted by key.
func (s *Store) List() []struct {
	Key byte
	Pos canvas.Point
} {
	out := make([]struct {
		Key byte
		Pos canvas.Point
	}, 0, len(s.marks))
	for k, p := range s.marks {
		out = append(out, struct {
			Key byte
			Pos canvas.Point
		}{k, p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Snapshot returns a copy of the underlying map, keyed by single-character
// string, suitable for JSON serialization.
func (s *Store) Snapshot() map[string]canvas.Point {
	out := make(map[string]canvas.Point, len(s.marks))
	for k, p := range s.marks {
		out[string(rune(k))] = p
	}
	return out
}

// Restore replaces the store's contents from a snapshot produced by
// Snapshot. Invalid keys are ignored (forward-compatible load).
func (s *Store) Restore(snapshot map[string]canvas.Point) {
	s.marks = make(map[byte]canvas.Point, len(snapshot))
	for k, p := range snapshot {
		if len(k) != 1 {
			continue
		}
		if !Valid(k[0]) {
			continue
		}
		s.marks[k[0]] = p
	}
}
