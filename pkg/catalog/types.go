package catalog

// ClassEntry is one admitted class name with its provenance.
type ClassEntry struct {
	Name   string `json:"name"`
	Origin string `json:"origin"` // "map-key", "mixin", "selector"
	Source string `json:"source"` // unit that first produced the name
}

// SourceSummary describes one stylesheet that took part in the pass.
type SourceSummary struct {
	ID          string `json:"id"`
	Maps        int    `json:"maps"`
	Invocations int    `json:"invocations"`
	Classes     int    `json:"classes"`
	Rejected    int    `json:"rejected"`
}

// ClassSearchResult holds a class match with the reason it matched.
type ClassSearchResult struct {
	Entry       ClassEntry `json:"entry"`
	MatchReason string     `json:"match_reason"` // "exact", "prefix", "contains", "source"
}
