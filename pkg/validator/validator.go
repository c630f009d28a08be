// Package validator checks the class names used in component markup
// against the class catalog.
package validator

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/gnana997/scssclass/pkg/catalog"
	"github.com/gnana997/scssclass/pkg/parser"
)

// Rule names reported in violations.
const (
	RuleUnknownClass = "unknown-class"
	RuleSyntaxError  = "syntax-error"
)

// maxSuggestions caps the closest-match names attached to a violation.
const maxSuggestions = 3

// ErrNoCatalog is returned when no class catalog is available yet.
var ErrNoCatalog = errors.New("no class catalog available")

// CatalogSource provides the catalog to validate against. The class index
// satisfies it, so every validation sees the latest published pass.
type CatalogSource interface {
	Current() *catalog.QueryService
}

// StaticCatalog serves one fixed catalog.
type StaticCatalog struct {
	Query *catalog.QueryService
}

// Current returns the fixed catalog.
func (s StaticCatalog) Current() *catalog.QueryService { return s.Query }

// Validator checks source code against the class catalog.
type Validator struct {
	source CatalogSource
	parser *parser.ParserManager
	logger *slog.Logger
}

// NewValidator creates a Validator. The parser manager is owned by the
// caller.
func NewValidator(source CatalogSource, pm *parser.ParserManager, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{source: source, parser: pm, logger: logger}
}

// ValidationResult represents the result of validating a file.
type ValidationResult struct {
	FilePath   string      `json:"file_path,omitempty"`
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations"`
	Summary    string      `json:"summary"`
	// Checked is the number of class usages compared with the catalog.
	Checked int `json:"checked"`
	// Dynamic is the number of class attributes skipped as expressions.
	Dynamic int `json:"dynamic"`
	// PassID identifies the catalog the code was checked against.
	PassID    string `json:"pass_id,omitempty"`
	FixedCode string `json:"fixed_code,omitempty"`
}

// Violation represents a single validation rule violation.
type Violation struct {
	Rule        string   `json:"rule"`
	Message     string   `json:"message"`
	Severity    string   `json:"severity"` // "error", "warning"
	Class       string   `json:"class,omitempty"`
	Attribute   string   `json:"attribute,omitempty"`
	Line        int      `json:"line"`
	Column      int      `json:"column"`
	Suggestions []string `json:"suggestions,omitempty"`
	Fix         *AutoFix `json:"fix,omitempty"`
	// Fixed reports that Fix was applied to FixedCode.
	Fixed bool `json:"fixed,omitempty"`
}

// ValidateSource checks every literal class name in code. The grammar is
// picked from filePath; an empty path parses as TSX.
//
// When autoFix is set, unambiguous misspellings are corrected and the
// result carries the fixed code.
func (v *Validator) ValidateSource(code, filePath string, autoFix bool) (*ValidationResult, error) {
	qs := v.source.Current()
	if qs == nil {
		return nil, ErrNoCatalog
	}

	lang := parser.LanguageTSX
	if filePath != "" {
		lang = parser.DetectLanguage(filePath)
		if !lang.HasJSX() {
			return nil, fmt.Errorf("cannot validate %s: no JSX grammar for %s files", filePath, lang)
		}
	}

	source := []byte(code)
	tree, err := v.parser.Parse(source, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", displayPath(filePath), err)
	}
	defer tree.Close()

	extraction := ExtractClassUsages(tree, source)

	result := &ValidationResult{
		FilePath:   filePath,
		Violations: []Violation{},
		Checked:    len(extraction.Usages),
		Dynamic:    extraction.DynamicCount(),
		PassID:     qs.Catalog.PassID,
	}

	if tree.RootNode().HasError() {
		result.Violations = append(result.Violations, Violation{
			Rule:     RuleSyntaxError,
			Message:  "code contains syntax errors; some class attributes may be missed",
			Severity: "warning",
			Line:     1,
			Column:   1,
		})
	}

	for _, usage := range extraction.Usages {
		if qs.HasClass(usage.Name) {
			continue
		}
		result.Violations = append(result.Violations, unknownClassViolation(qs, usage))
	}

	errCount, warnCount := countSeverities(result.Violations)
	result.Valid = errCount == 0
	result.Summary = summarize(errCount, warnCount)

	if autoFix {
		var fixes []AutoFix
		var owners []int
		for i, vi := range result.Violations {
			if vi.Fix != nil {
				fixes = append(fixes, *vi.Fix)
				owners = append(owners, i)
			}
		}
		if len(fixes) > 0 {
			fixedCode, applied := ApplyFixes(code, fixes)
			for _, i := range applied {
				result.Violations[owners[i]].Fixed = true
			}
			if len(applied) > 0 {
				result.FixedCode = fixedCode
			}
		}
	}

	v.logger.Debug("validated source",
		"file", displayPath(filePath),
		"checked", result.Checked,
		"violations", len(result.Violations))
	return result, nil
}

// ValidateFile reads and validates one file.
func (v *Validator) ValidateFile(path string, autoFix bool) (*ValidationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return v.ValidateSource(string(data), path, autoFix)
}

func unknownClassViolation(qs *catalog.QueryService, usage ClassUsage) Violation {
	vi := Violation{
		Rule:      RuleUnknownClass,
		Message:   fmt.Sprintf("class %q is not defined in any stylesheet", usage.Name),
		Severity:  "error",
		Class:     usage.Name,
		Attribute: usage.Attribute,
		Line:      usage.Line,
		Column:    usage.Column,
	}

	suggestions := qs.Suggest(usage.Name, maxSuggestions)
	if len(suggestions) > 0 {
		vi.Suggestions = suggestions
		vi.Message += fmt.Sprintf("; did you mean %q?", suggestions[0])
	}
	if len(suggestions) == 1 {
		vi.Fix = &AutoFix{
			Line:      usage.Line,
			Column:    usage.Column,
			StartByte: usage.StartByte,
			EndByte:   usage.EndByte,
			OldText:   usage.Name,
			NewText:   suggestions[0],
			Reason:    "closest known class",
		}
	}
	return vi
}

func countSeverities(violations []Violation) (errs, warns int) {
	for _, vi := range violations {
		switch vi.Severity {
		case "error":
			errs++
		case "warning":
			warns++
		}
	}
	return errs, warns
}

func summarize(errs, warns int) string {
	if errs == 0 && warns == 0 {
		return "no issues found"
	}
	return fmt.Sprintf("%d error(s), %d warning(s)", errs, warns)
}

func displayPath(path string) string {
	if path == "" {
		return "<input>"
	}
	return path
}
