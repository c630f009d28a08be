package classname

import "regexp"

// literalSelectorPattern matches a class selector directly opening a rule
// body: ".name {" with optional whitespace before the brace.
var literalSelectorPattern = regexp.MustCompile(`\.(-?[A-Za-z_][\w-]*)\s*\{`)

// ScanLiteralSelectors returns the names of `.name {` selectors in text
// order. Combinators, pseudo-classes and nesting are not interpreted, so
// ".a .b {" yields only "b". Names are returned unfiltered.
func ScanLiteralSelectors(text string) []string {
	matches := literalSelectorPattern.FindAllStringSubmatch(text, -1)
	names := make([]string, 0, len(matches))
	for _, match := range matches {
		names = append(names, match[1])
	}
	return names
}
