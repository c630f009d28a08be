// Package classname extracts CSS class names from SCSS source text.
//
// The engine is a targeted scanner rather than an SCSS parser. For each
// source unit it builds a local symbol table of `$name: (...) !default;`
// maps, expands a closed set of mixin conventions against that table, and
// scans literal `.name {` selectors. Every candidate passes IsValid before
// it is admitted to the pass-wide ResultSet.
//
// Output order is deterministic: units are processed in the order given and,
// within a unit, map keys come first, then mixin expansions, then literal
// selectors, each in left-to-right text order.
package classname

import (
	"errors"
	"fmt"
)

// SourceUnit is one stylesheet handed to the engine: an identifier (usually
// a file path) and its full text.
type SourceUnit struct {
	ID   string
	Text string
}

// Origin records which producer first admitted a class name.
type Origin int

const (
	// OriginMapKey is a key of a `$name: (...) !default;` declaration.
	OriginMapKey Origin = iota
	// OriginMixin is a name synthesized by a known mixin convention.
	OriginMixin
	// OriginSelector is a literal `.name {` selector.
	OriginSelector
)

// String returns the lowercase name used in JSON output and logs.
func (o Origin) String() string {
	switch o {
	case OriginMapKey:
		return "map-key"
	case OriginMixin:
		return "mixin"
	case OriginSelector:
		return "selector"
	default:
		return "unknown"
	}
}

// ParseOrigin converts the String form back to an Origin.
func ParseOrigin(s string) (Origin, bool) {
	switch s {
	case "map-key":
		return OriginMapKey, true
	case "mixin":
		return OriginMixin, true
	case "selector":
		return OriginSelector, true
	default:
		return 0, false
	}
}

// Admitted is a class name together with where it was first seen.
type Admitted struct {
	Name   string
	Origin Origin
	Unit   string
}

// ErrInvalidEncoding is the sentinel wrapped by InvalidEncodingError.
var ErrInvalidEncoding = errors.New("source is not valid UTF-8")

// ErrPassCancelled is returned when the context is cancelled between units.
var ErrPassCancelled = errors.New("extraction pass cancelled")

// InvalidEncodingError reports a unit whose text is not valid UTF-8. It
// aborts the whole pass because the result would otherwise be silently
// incomplete.
type InvalidEncodingError struct {
	Unit   string
	Offset int
}

func (e *InvalidEncodingError) Error() string {
	return fmt.Sprintf("%s: invalid UTF-8 at byte %d", e.Unit, e.Offset)
}

func (e *InvalidEncodingError) Unwrap() error {
	return ErrInvalidEncoding
}
