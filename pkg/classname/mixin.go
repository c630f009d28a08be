package classname

import "regexp"

// includePattern matches the head of `@include name(`. The argument list
// is the text up to the matching ')', found by matchingParen.
var includePattern = regexp.MustCompile(`@include\s+([A-Za-z_][\w-]*)\s*\(`)

// Convention identifies one of the known mixin naming conventions.
type Convention int

const (
	// ConventionUnrecognized is any mixin outside the table; it expands to nothing.
	ConventionUnrecognized Convention = iota
	// ConventionScaleClass is ds4-scale-class(name, map, scales): the
	// cross-product "{name}{key}-{scale}".
	ConventionScaleClass
	// ConventionMapKeysSecond is ds4-scale-font-class and style-class:
	// the keys of the map named by the second argument.
	ConventionMapKeysSecond
	// ConventionMapKeysFirst is ds4-scale-border-radius-class and
	// ds4-border-radius-class: the keys of the map named by the first argument.
	ConventionMapKeysFirst
)

// conventionsByMixin is the closed convention table.
var conventionsByMixin = map[string]Convention{
	"ds4-scale-class":               ConventionScaleClass,
	"ds4-scale-font-class":          ConventionMapKeysSecond,
	"style-class":                   ConventionMapKeysSecond,
	"ds4-scale-border-radius-class": ConventionMapKeysFirst,
	"ds4-border-radius-class":       ConventionMapKeysFirst,
}

// ConventionFor returns the convention a mixin name belongs to.
func ConventionFor(mixin string) Convention {
	if c, ok := conventionsByMixin[mixin]; ok {
		return c
	}
	return ConventionUnrecognized
}

// String returns a short identifier for the convention.
func (c Convention) String() string {
	switch c {
	case ConventionScaleClass:
		return "scale-class"
	case ConventionMapKeysSecond:
		return "map-keys-second"
	case ConventionMapKeysFirst:
		return "map-keys-first"
	default:
		return "unrecognized"
	}
}

// MinArgs is the number of arguments the convention needs to expand.
func (c Convention) MinArgs() int {
	switch c {
	case ConventionScaleClass:
		return 3
	case ConventionMapKeysSecond:
		return 2
	case ConventionMapKeysFirst:
		return 1
	default:
		return 0
	}
}

// MixinInvocation is one `@include name(args)` call. Args are trimmed and
// unquoted but otherwise opaque.
type MixinInvocation struct {
	Name       string
	Convention Convention
	Args       []string
}

// ParseMixinInvocations returns every `@include` with an argument list, in
// text order. Invocations of unrecognized mixins are included so callers
// can report them; they expand to nothing.
func ParseMixinInvocations(text string) []MixinInvocation {
	matches := includePattern.FindAllStringSubmatchIndex(text, -1)
	invocations := make([]MixinInvocation, 0, len(matches))
	for _, match := range matches {
		open := match[1] - 1
		end := matchingParen(text, open)
		if end < 0 {
			continue
		}
		name := text[match[2]:match[3]]
		invocations = append(invocations, MixinInvocation{
			Name:       name,
			Convention: ConventionFor(name),
			Args:       splitArgs(text[open+1 : end]),
		})
	}
	return invocations
}

// matchingParen returns the index of the ')' closing the '(' at open, or -1
// when the list is unterminated. Parentheses inside quotes do not count.
func matchingParen(text string, open int) int {
	depth := 0
	var quote byte
	for i := open; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// Expand synthesizes the candidates for inv against table. Maps are only
// looked up in table; a missing map, or too few arguments, yields nil.
// Candidates are returned unfiltered.
func (inv MixinInvocation) Expand(table *SymbolTable) []string {
	if len(inv.Args) < inv.Convention.MinArgs() {
		return nil
	}

	switch inv.Convention {
	case ConventionScaleClass:
		values, ok := table.Lookup(inv.Args[1])
		if !ok {
			return nil
		}
		scales, ok := table.Lookup(inv.Args[2])
		if !ok {
			return nil
		}
		prefix := inv.Args[0]
		out := make([]string, 0, len(values.Keys)*len(scales.Keys))
		for _, k := range values.Keys {
			for _, s := range scales.Keys {
				out = append(out, prefix+k+"-"+s)
			}
		}
		return out

	case ConventionMapKeysSecond:
		return mapKeys(table, inv.Args[1])

	case ConventionMapKeysFirst:
		return mapKeys(table, inv.Args[0])

	case ConventionUnrecognized:
		return nil
	}
	return nil
}

func mapKeys(table *SymbolTable, ref string) []string {
	m, ok := table.Lookup(ref)
	if !ok {
		return nil
	}
	out := make([]string, len(m.Keys))
	copy(out, m.Keys)
	return out
}
