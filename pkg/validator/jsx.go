package validator

import (
	"strings"
	"unicode"
	"unicode/utf8"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// classAttributes are the JSX attribute names whose values hold class names.
var classAttributes = map[string]bool{
	"className": true,
	"class":     true,
}

// ClassUsage is one class name written literally in a class attribute.
type ClassUsage struct {
	Name      string `json:"name"`
	Attribute string `json:"attribute"`
	Line      int    `json:"line"`   // 1-based
	Column    int    `json:"column"` // 1-based, in bytes
	StartByte uint   `json:"-"`
	EndByte   uint   `json:"-"`
}

// ClassAttribute is one className/class attribute found in the markup.
type ClassAttribute struct {
	Attribute string `json:"attribute"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	// Dynamic is true when the value is an expression whose classes cannot
	// be read without evaluating it.
	Dynamic bool `json:"dynamic"`
}

// ClassExtraction holds everything found in one file.
type ClassExtraction struct {
	Usages     []ClassUsage
	Attributes []ClassAttribute
}

// ExtractClassUsages walks a tree-sitter AST and collects the class names
// written in className/class attributes.
//
// Values are read from plain strings, from {"..."} and from template
// literals without substitutions. Any other expression marks the attribute
// as dynamic and contributes no usages.
func ExtractClassUsages(tree *ts.Tree, source []byte) *ClassExtraction {
	result := &ClassExtraction{}
	walkAttributes(tree.RootNode(), source, result)
	return result
}

func walkAttributes(node *ts.Node, source []byte, result *ClassExtraction) {
	if node.Kind() == "jsx_attribute" {
		processAttribute(node, source, result)
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		walkAttributes(node.Child(i), source, result)
	}
}

// processAttribute records a class attribute and the names in its value.
func processAttribute(node *ts.Node, source []byte, result *ClassExtraction) {
	var name string
	var value *ts.Node

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "property_identifier":
			name = child.Utf8Text(source)
		case "string", "jsx_expression":
			value = child
		}
	}

	if !classAttributes[name] {
		// Nested markup can appear inside other attribute expressions.
		if value != nil && value.Kind() == "jsx_expression" {
			walkAttributes(value, source, result)
		}
		return
	}

	attr := ClassAttribute{
		Attribute: name,
		Line:      int(node.StartPosition().Row) + 1,
		Column:    int(node.StartPosition().Column) + 1,
	}

	literal := literalValue(value)
	if literal == nil {
		attr.Dynamic = value != nil
		result.Attributes = append(result.Attributes, attr)
		if value != nil {
			walkAttributes(value, source, result)
		}
		return
	}
	result.Attributes = append(result.Attributes, attr)

	start := literal.StartByte() + 1
	end := literal.EndByte() - 1
	if end <= start {
		return
	}
	pos := literal.StartPosition()
	splitClasses(source[start:end], start, int(pos.Row)+1, int(pos.Column)+2, name, result)
}

// literalValue returns the string or template node holding a static
// attribute value, or nil when the value is dynamic or absent.
func literalValue(value *ts.Node) *ts.Node {
	if value == nil {
		return nil
	}
	if value.Kind() == "string" {
		return value
	}

	// jsx_expression: { <expr> }
	var inner *ts.Node
	for i := uint(0); i < value.NamedChildCount(); i++ {
		child := value.NamedChild(i)
		if child.Kind() == "comment" {
			continue
		}
		if inner != nil {
			return nil
		}
		inner = child
	}
	if inner == nil {
		return nil
	}

	switch inner.Kind() {
	case "string":
		return inner
	case "template_string":
		for i := uint(0); i < inner.NamedChildCount(); i++ {
			if inner.NamedChild(i).Kind() == "template_substitution" {
				return nil
			}
		}
		return inner
	}
	return nil
}

// splitClasses splits a whitespace-separated class list, tracking the
// position of every name.
func splitClasses(content []byte, base uint, line, column int, attribute string, result *ClassExtraction) {
	tokenStart := -1
	tokenLine, tokenColumn := 0, 0

	flush := func(end int) {
		if tokenStart < 0 {
			return
		}
		result.Usages = append(result.Usages, ClassUsage{
			Name:      string(content[tokenStart:end]),
			Attribute: attribute,
			Line:      tokenLine,
			Column:    tokenColumn,
			StartByte: base + uint(tokenStart),
			EndByte:   base + uint(end),
		})
		tokenStart = -1
	}

	for i := 0; i < len(content); {
		r, size := utf8.DecodeRune(content[i:])
		if unicode.IsSpace(r) {
			flush(i)
			if r == '\n' {
				line++
				column = 1
			} else {
				column += size
			}
			i += size
			continue
		}
		if tokenStart < 0 {
			tokenStart = i
			tokenLine, tokenColumn = line, column
		}
		column += size
		i += size
	}
	flush(len(content))
}

// Names returns the distinct class names used, in first-use order.
func (e *ClassExtraction) Names() []string {
	seen := make(map[string]bool, len(e.Usages))
	names := make([]string, 0, len(e.Usages))
	for _, u := range e.Usages {
		if !seen[u.Name] {
			seen[u.Name] = true
			names = append(names, u.Name)
		}
	}
	return names
}

// DynamicCount returns how many class attributes could not be read.
func (e *ClassExtraction) DynamicCount() int {
	n := 0
	for _, a := range e.Attributes {
		if a.Dynamic {
			n++
		}
	}
	return n
}

// lineCount counts lines the way editors do.
func lineCount(code string) int {
	return strings.Count(code, "\n") + 1
}
