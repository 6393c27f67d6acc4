package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"
)

// Layout is a reusable zone template: name, description, optional starting
// cursor, and the zone descriptors to recreate on load (spec.md §4.9
// "Layout file").
type Layout struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	Cursor      *cursorRecord    `yaml:"cursor,omitempty"`
	Zones       []ZoneDescriptor `yaml:"zones"`
}

// LayoutStore manages layout files as one YAML document per file under Dir.
type LayoutStore struct {
	Dir string
}

// NewLayoutStore creates a store rooted at dir, creating it if absent.
func NewLayoutStore(dir string) (*LayoutStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating layout directory %s: %w", dir, err)
	}
	return &LayoutStore{Dir: dir}, nil
}

func (s *LayoutStore) path(name string) string {
	return filepath.Join(s.Dir, strings.ToLower(name)+".yaml")
}

// List returns the names of every layout in the store, sorted.
func (s *LayoutStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading layout directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names, nil
}

// Load reads the named layout.
func (s *LayoutStore) Load(name string) (*Layout, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return nil, fmt.Errorf("layout %q: %w", name, err)
	}
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parsing layout %q: %w", name, err)
	}
	return &l, nil
}

// Save writes a layout, creating or overwriting its file.
func (s *LayoutStore) Save(l Layout) error {
	data, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshaling layout %q: %w", l.Name, err)
	}
	return os.WriteFile(s.path(l.Name), data, 0644)
}

// Delete removes the named layout's file.
func (s *LayoutStore) Delete(name string) error {
	if err := os.Remove(s.path(name)); err != nil {
		return fmt.Errorf("deleting layout %q: %w", name, err)
	}
	return nil
}

// Info reports a one-line human summary of a layout (zone count, description).
func (s *LayoutStore) Info(name string) (string, error) {
	l, err := s.Load(name)
	if err != nil {
		return "", err
	}
	desc := l.Description
	if desc == "" {
		desc = "(no description)"
	}
	return fmt.Sprintf("%s: %d zone(s) — %s", l.Name, len(l.Zones), desc), nil
}
