package classname

import "regexp"

// variableMapPattern matches the conventional SCSS default-map declaration
//
//	$name: ( key: value, ... ) !default;
//
// The body stops at the last ')' before "!default;", so function calls
// inside values do not end the match early.
var variableMapPattern = regexp.MustCompile(`\$([A-Za-z_][\w-]*)\s*:\s*\(([^;]*?)\)\s*!default\s*;`)

// VariableMap is one parsed `$name: (...) !default;` declaration.
//
// Keys keep their first-declared order. A key declared twice keeps its
// first position and takes the later value.
type VariableMap struct {
	Name   string
	Keys   []string
	Values map[string]string
}

func newVariableMap(name string) *VariableMap {
	return &VariableMap{Name: name, Values: make(map[string]string)}
}

func (m *VariableMap) set(key, value string) {
	if _, exists := m.Values[key]; !exists {
		m.Keys = append(m.Keys, key)
	}
	m.Values[key] = value
}

// SymbolTable holds the variable maps declared in a single source unit.
// Tables are never shared between units.
type SymbolTable struct {
	maps   []*VariableMap
	byName map[string]*VariableMap
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{byName: make(map[string]*VariableMap)}
}

// Add records m. A later map with the same name shadows the earlier one for
// Lookup; Maps still returns both in declaration order.
func (t *SymbolTable) Add(m *VariableMap) {
	t.maps = append(t.maps, m)
	t.byName[m.Name] = m
}

// Lookup resolves a map by name. A leading '$' is ignored so mixin
// arguments can be passed through unchanged.
func (t *SymbolTable) Lookup(name string) (*VariableMap, bool) {
	if len(name) > 0 && name[0] == '$' {
		name = name[1:]
	}
	m, ok := t.byName[name]
	return m, ok
}

// Maps returns every declaration in text order.
func (t *SymbolTable) Maps() []*VariableMap {
	return t.maps
}

// Len returns the number of declarations.
func (t *SymbolTable) Len() int {
	return len(t.maps)
}

// ParseVariableMaps scans text for default-map declarations.
//
// The body is treated as a flat comma-separated list: a value that itself
// contains commas is mis-segmented, and the resulting colon-less fragments
// are dropped. Entries without a colon or with an empty key are skipped.
func ParseVariableMaps(text string) *SymbolTable {
	table := NewSymbolTable()

	for _, match := range variableMapPattern.FindAllStringSubmatch(text, -1) {
		m := newVariableMap(match[1])
		for _, entry := range splitFlat(match[2]) {
			key, value, ok := splitEntry(entry)
			if !ok {
				continue
			}
			m.set(key, value)
		}
		table.Add(m)
	}

	return table
}
