package classname

import (
	"regexp"
	"strings"
	"unicode"
)

// sizeLiteralPattern matches bare numeric sizes such as "4px" or "2rem".
var sizeLiteralPattern = regexp.MustCompile(`^\d+(?:px|rem)$`)

// digitsPattern matches strings made only of decimal digits.
var digitsPattern = regexp.MustCompile(`^\d+$`)

// IsValid reports whether candidate is an admissible class-name token.
//
// Every producer (variable-map keys, mixin expansions, literal selectors)
// goes through this gate before a name reaches a ResultSet. It rejects raw
// SCSS values and punctuation left over from the textual scan:
//
//   - empty strings
//   - a leading '$', '#', '-' or decimal digit
//   - any '$' or '%'
//   - any whitespace, '(' or ')'
//   - a trailing ';'
//   - bare sizes ("4px", "16rem") and bare numbers
func IsValid(candidate string) bool {
	if candidate == "" {
		return false
	}

	switch first := candidate[0]; {
	case first == '$', first == '#', first == '-':
		return false
	case first >= '0' && first <= '9':
		return false
	}

	if strings.ContainsAny(candidate, "$%()") {
		return false
	}
	if strings.IndexFunc(candidate, unicode.IsSpace) >= 0 {
		return false
	}
	if strings.HasSuffix(candidate, ";") {
		return false
	}
	if sizeLiteralPattern.MatchString(candidate) || digitsPattern.MatchString(candidate) {
		return false
	}

	return true
}
