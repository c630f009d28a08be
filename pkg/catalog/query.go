package catalog

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
)

// QueryService provides read-only query methods over a loaded catalog.
type QueryService struct {
	Catalog *Catalog
	Index   *CatalogIndex
}

// NewQueryService creates a QueryService from a validated catalog and its index.
func NewQueryService(cat *Catalog, idx *CatalogIndex) *QueryService {
	return &QueryService{Catalog: cat, Index: idx}
}

// LoadAndQuery loads a catalog from file and returns a ready-to-use QueryService.
func LoadAndQuery(path string) (*QueryService, error) {
	cat, idx, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	return NewQueryService(cat, idx), nil
}

// Len returns the number of classes.
func (q *QueryService) Len() int {
	return len(q.Catalog.Classes)
}

// HasClass reports whether name is a known class.
func (q *QueryService) HasClass(name string) bool {
	_, ok := q.Index.ClassByName[name]
	return ok
}

// GetClass looks up a class by exact name.
func (q *QueryService) GetClass(name string) (*ClassEntry, bool) {
	e, ok := q.Index.ClassByName[name]
	return e, ok
}

// ListClasses returns classes in pass order, filtered by prefix and origin.
// Both filters are optional (pass "" to skip). The prefix match is case
// sensitive, like CSS class names. limit <= 0 returns everything.
func (q *QueryService) ListClasses(prefix, origin string, limit int) []ClassEntry {
	candidates := q.Catalog.Classes
	if origin != "" {
		byOrigin := q.Index.ClassesByOrigin[origin]
		candidates = make([]ClassEntry, len(byOrigin))
		for i, e := range byOrigin {
			candidates[i] = *e
		}
	}

	result := make([]ClassEntry, 0)
	for _, e := range candidates {
		if prefix != "" && !strings.HasPrefix(e.Name, prefix) {
			continue
		}
		result = append(result, e)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result
}

// ClassesFromSource returns the classes first produced by one unit.
func (q *QueryService) ClassesFromSource(source string) []ClassEntry {
	entries := q.Index.ClassesBySource[source]
	result := make([]ClassEntry, len(entries))
	for i, e := range entries {
		result[i] = *e
	}
	return result
}

// SearchClasses performs a case-insensitive search across class names and
// source IDs. Exact matches come first, then prefix matches, then substring
// matches, then source matches; pass order is kept inside each group.
func (q *QueryService) SearchClasses(query string, limit int) []ClassSearchResult {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var exact, prefix, contains, source []ClassSearchResult
	for _, e := range q.Catalog.Classes {
		name := strings.ToLower(e.Name)
		switch {
		case name == query:
			exact = append(exact, ClassSearchResult{Entry: e, MatchReason: "exact"})
		case strings.HasPrefix(name, query):
			prefix = append(prefix, ClassSearchResult{Entry: e, MatchReason: "prefix"})
		case strings.Contains(name, query):
			contains = append(contains, ClassSearchResult{Entry: e, MatchReason: "contains"})
		case strings.Contains(strings.ToLower(e.Source), query):
			source = append(source, ClassSearchResult{Entry: e, MatchReason: "source"})
		}
	}

	results := append(append(append(exact, prefix...), contains...), source...)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Suggest returns up to max known classes closest to name by edit
// distance, nearest first. Names further than half their length away are
// not considered similar.
func (q *QueryService) Suggest(name string, max int) []string {
	if name == "" || max <= 0 {
		return nil
	}

	type scored struct {
		name     string
		distance int
		order    int
	}

	threshold := len(name) / 2
	if threshold < 2 {
		threshold = 2
	}

	var matches []scored
	for i, e := range q.Catalog.Classes {
		if e.Name == name {
			continue
		}
		d := levenshtein.Distance(name, e.Name, nil)
		if d <= threshold {
			matches = append(matches, scored{name: e.Name, distance: d, order: i})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].distance != matches[j].distance {
			return matches[i].distance < matches[j].distance
		}
		return matches[i].order < matches[j].order
	})

	if len(matches) > max {
		matches = matches[:max]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}
