// Package catalog holds the published result of an extraction pass: the
// ordered class names with their provenance, plus lookup indexes and JSON
// persistence. A Catalog is immutable once built and is shared between
// readers without locking.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gnana997/scssclass/pkg/classname"
)

// FormatVersion is written into every catalog file.
const FormatVersion = "1"

// Catalog is the snapshot of one extraction pass.
type Catalog struct {
	Version      string          `json:"version"`
	PassID       string          `json:"pass_id"`
	Root         string          `json:"root"`
	Subdirectory string          `json:"subdirectory,omitempty"`
	GeneratedAt  time.Time       `json:"generated_at"`
	Sources      []SourceSummary `json:"sources"`
	Classes      []ClassEntry    `json:"classes"`
}

// CatalogIndex provides O(1) lookups over a Catalog.
type CatalogIndex struct {
	// ClassByName maps a class name to its entry.
	ClassByName map[string]*ClassEntry

	// ClassesBySource lists entries by the unit that produced them, in order.
	ClassesBySource map[string][]*ClassEntry

	// ClassesByOrigin lists entries by origin, in order.
	ClassesByOrigin map[string][]*ClassEntry

	// SourceByID maps a unit ID to its summary.
	SourceByID map[string]*SourceSummary
}

// Meta carries the pass details that are not part of the ResultSet.
type Meta struct {
	PassID       string
	Root         string
	Subdirectory string
	GeneratedAt  time.Time
}

// FromResults builds a Catalog from a finished pass. The class order is the
// ResultSet order.
func FromResults(meta Meta, rs *classname.ResultSet, units []*classname.UnitResult) *Catalog {
	cat := &Catalog{
		Version:      FormatVersion,
		PassID:       meta.PassID,
		Root:         meta.Root,
		Subdirectory: meta.Subdirectory,
		GeneratedAt:  meta.GeneratedAt,
		Sources:      make([]SourceSummary, 0, len(units)),
		Classes:      make([]ClassEntry, 0, rs.Len()),
	}

	for _, a := range rs.Entries() {
		cat.Classes = append(cat.Classes, ClassEntry{
			Name:   a.Name,
			Origin: a.Origin.String(),
			Source: a.Unit,
		})
	}

	for _, u := range units {
		if u == nil {
			continue
		}
		cat.Sources = append(cat.Sources, SourceSummary{
			ID:          u.Unit,
			Maps:        u.Table.Len(),
			Invocations: len(u.Invocations),
			Classes:     len(u.Admitted),
			Rejected:    len(u.Rejected),
		})
	}

	return cat
}

// Names returns the class names in pass order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Classes))
	for i, e := range c.Classes {
		names[i] = e.Name
	}
	return names
}

// Validate checks the catalog for structural problems. Every class name
// must still pass classname.IsValid, so a hand-edited file cannot smuggle
// in names the engine would never produce.
func (c *Catalog) Validate() []error {
	var errs []error

	if c.Version == "" {
		errs = append(errs, fmt.Errorf("catalog version is required"))
	} else if c.Version != FormatVersion {
		errs = append(errs, fmt.Errorf("unsupported catalog version %q (want %q)", c.Version, FormatVersion))
	}

	sourceIDs := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		if s.ID == "" {
			errs = append(errs, fmt.Errorf("sources[%d]: id is required", i))
			continue
		}
		if sourceIDs[s.ID] {
			errs = append(errs, fmt.Errorf("sources[%d]: duplicate source %q", i, s.ID))
			continue
		}
		sourceIDs[s.ID] = true
	}

	seen := make(map[string]bool, len(c.Classes))
	for i, e := range c.Classes {
		if e.Name == "" {
			errs = append(errs, fmt.Errorf("classes[%d]: name is required", i))
			continue
		}
		if !classname.IsValid(e.Name) {
			errs = append(errs, fmt.Errorf("class %q: not a valid class name", e.Name))
		}
		if seen[e.Name] {
			errs = append(errs, fmt.Errorf("class %q: duplicate class name", e.Name))
			continue
		}
		seen[e.Name] = true

		if _, ok := classname.ParseOrigin(e.Origin); !ok {
			errs = append(errs, fmt.Errorf("class %q: invalid origin %q (must be map-key/mixin/selector)", e.Name, e.Origin))
		}
		if len(c.Sources) > 0 && !sourceIDs[e.Source] {
			errs = append(errs, fmt.Errorf("class %q: references unknown source %q", e.Name, e.Source))
		}
	}

	return errs
}

// BuildIndex creates lookup maps for fast access.
// Should be called after Validate() passes.
func (c *Catalog) BuildIndex() *CatalogIndex {
	idx := &CatalogIndex{
		ClassByName:     make(map[string]*ClassEntry, len(c.Classes)),
		ClassesBySource: make(map[string][]*ClassEntry),
		ClassesByOrigin: make(map[string][]*ClassEntry, 3),
		SourceByID:      make(map[string]*SourceSummary, len(c.Sources)),
	}

	for i := range c.Sources {
		idx.SourceByID[c.Sources[i].ID] = &c.Sources[i]
	}

	for i := range c.Classes {
		e := &c.Classes[i]
		idx.ClassByName[e.Name] = e
		idx.ClassesBySource[e.Source] = append(idx.ClassesBySource[e.Source], e)
		idx.ClassesByOrigin[e.Origin] = append(idx.ClassesByOrigin[e.Origin], e)
	}

	return idx
}

// LoadFromFile loads a catalog from a JSON file, validates it, and builds the index.
func LoadFromFile(path string) (*Catalog, *CatalogIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses a catalog from raw JSON bytes, validates it, and builds the index.
func LoadFromBytes(data []byte) (*Catalog, *CatalogIndex, error) {
	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, nil, fmt.Errorf("failed to parse catalog JSON: %w", err)
	}

	if errs := catalog.Validate(); len(errs) > 0 {
		return nil, nil, fmt.Errorf("catalog validation failed: %w", errors.Join(errs...))
	}

	index := catalog.BuildIndex()
	return &catalog, index, nil
}

// WriteFile writes the catalog as indented JSON, creating parent
// directories. The file is written to a temporary name and renamed so a
// concurrent reader never sees half a file.
func (c *Catalog) WriteFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace catalog file: %w", err)
	}
	return nil
}
