package classname

// ResultSet is an insertion-ordered, duplicate-free set of admitted class
// names. It only grows; a new pass builds a new set.
//
// A ResultSet is not safe for concurrent use. Parallel passes build one
// UnitResult per goroutine and Merge them afterwards.
type ResultSet struct {
	entries []Admitted
	index   map[string]int
}

// NewResultSet returns an empty set.
func NewResultSet() *ResultSet {
	return &ResultSet{index: make(map[string]int)}
}

// Admit adds name if it passes IsValid and is not already present. It
// reports whether the name was added.
func (rs *ResultSet) Admit(name string, origin Origin, unit string) bool {
	if !IsValid(name) {
		return false
	}
	if _, exists := rs.index[name]; exists {
		return false
	}
	rs.index[name] = len(rs.entries)
	rs.entries = append(rs.entries, Admitted{Name: name, Origin: origin, Unit: unit})
	return true
}

// Contains reports whether name has been admitted.
func (rs *ResultSet) Contains(name string) bool {
	_, ok := rs.index[name]
	return ok
}

// Get returns the provenance recorded when name was first admitted.
func (rs *ResultSet) Get(name string) (Admitted, bool) {
	i, ok := rs.index[name]
	if !ok {
		return Admitted{}, false
	}
	return rs.entries[i], true
}

// Len returns the number of admitted names.
func (rs *ResultSet) Len() int {
	return len(rs.entries)
}

// Names returns the admitted names in first-insertion order.
func (rs *ResultSet) Names() []string {
	names := make([]string, len(rs.entries))
	for i, e := range rs.entries {
		names[i] = e.Name
	}
	return names
}

// Entries returns a copy of the admitted names with their provenance.
func (rs *ResultSet) Entries() []Admitted {
	out := make([]Admitted, len(rs.entries))
	copy(out, rs.entries)
	return out
}
