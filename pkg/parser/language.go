package parser

import (
	"path/filepath"
	"strings"
)

// Language is a grammar the validator can parse markup with.
type Language int

const (
	// LanguageTSX is TypeScript with JSX (.tsx)
	LanguageTSX Language = iota
	// LanguageTypeScript is plain TypeScript (.ts, .mts, .cts)
	LanguageTypeScript
	// LanguageJavaScript covers .js and .jsx; the grammar accepts JSX
	LanguageJavaScript
	// LanguageUnknown represents an unsupported file
	LanguageUnknown
)

// String returns the string representation of the language.
func (l Language) String() string {
	switch l {
	case LanguageTSX:
		return "tsx"
	case LanguageTypeScript:
		return "typescript"
	case LanguageJavaScript:
		return "javascript"
	default:
		return "unknown"
	}
}

// HasJSX reports whether the grammar parses JSX elements.
func (l Language) HasJSX() bool {
	return l == LanguageTSX || l == LanguageJavaScript
}

// DetectLanguage picks the grammar from a file path.
// Returns LanguageUnknown if the extension is not recognized.
func DetectLanguage(filePath string) Language {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".tsx":
		return LanguageTSX
	case ".ts", ".mts", ".cts":
		return LanguageTypeScript
	case ".js", ".jsx", ".mjs", ".cjs":
		return LanguageJavaScript
	default:
		return LanguageUnknown
	}
}

// ParseLanguageString converts a language name to a Language.
// Returns LanguageUnknown if the string is not recognized.
func ParseLanguageString(lang string) Language {
	switch strings.ToLower(lang) {
	case "tsx":
		return LanguageTSX
	case "typescript", "ts":
		return LanguageTypeScript
	case "javascript", "js", "jsx":
		return LanguageJavaScript
	default:
		return LanguageUnknown
	}
}
