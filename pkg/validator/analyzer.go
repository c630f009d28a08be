package validator

import (
	"fmt"
	"sort"

	"github.com/gnana997/scssclass/pkg/parser"
)

// UsageAnalysis is a compact summary of the classes a file uses.
type UsageAnalysis struct {
	Classes           []ClassCount `json:"classes"`
	Attributes        int          `json:"attributes"`
	DynamicAttributes int          `json:"dynamic_attributes"`
	LineCount         int          `json:"line_count"`
}

// ClassCount is one class name with its number of uses.
type ClassCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Known bool   `json:"known"`
	// Source is the stylesheet defining the class, when known.
	Source string `json:"source,omitempty"`
	// FirstLine is where the class is first used.
	FirstLine int `json:"first_line"`
}

// AnalyzeUsage parses code and summarizes its class usage, most used
// first. Classes are marked known against the current catalog; with no
// catalog every class is reported unknown.
func (v *Validator) AnalyzeUsage(code, filePath string) (*UsageAnalysis, error) {
	lang := parser.LanguageTSX
	if filePath != "" {
		lang = parser.DetectLanguage(filePath)
		if !lang.HasJSX() {
			return nil, fmt.Errorf("cannot analyze %s: no JSX grammar for %s files", filePath, lang)
		}
	}

	source := []byte(code)
	tree, err := v.parser.Parse(source, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", displayPath(filePath), err)
	}
	defer tree.Close()

	extraction := ExtractClassUsages(tree, source)
	qs := v.source.Current()

	byName := make(map[string]*ClassCount)
	var order []string
	for _, u := range extraction.Usages {
		cc, ok := byName[u.Name]
		if !ok {
			cc = &ClassCount{Name: u.Name, FirstLine: u.Line}
			if qs != nil {
				if entry, found := qs.GetClass(u.Name); found {
					cc.Known = true
					cc.Source = entry.Source
				}
			}
			byName[u.Name] = cc
			order = append(order, u.Name)
		}
		cc.Count++
	}

	classes := make([]ClassCount, 0, len(order))
	for _, name := range order {
		classes = append(classes, *byName[name])
	}
	sort.SliceStable(classes, func(i, j int) bool { return classes[i].Count > classes[j].Count })

	return &UsageAnalysis{
		Classes:           classes,
		Attributes:        len(extraction.Attributes),
		DynamicAttributes: extraction.DynamicCount(),
		LineCount:         lineCount(code),
	}, nil
}
