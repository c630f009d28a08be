package scanner

import "fmt"

// ScanConfig configures stylesheet discovery.
type ScanConfig struct {
	// Root is the workspace directory. Relative paths resolve against the
	// working directory.
	Root string

	// Subdirectory restricts discovery to a directory below Root.
	// Empty means the whole workspace.
	Subdirectory string

	// Include glob patterns, matched against paths relative to the
	// discovery directory.
	Include []string

	// Exclude glob patterns. A matching directory is skipped entirely.
	Exclude []string
}

// DefaultScanConfig returns the configuration used when no project config
// exists: every .scss file under the current directory, skipping build
// output and dependency trees.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		Root:    ".",
		Include: []string{"**/*.scss"},
		Exclude: []string{
			"node_modules/**",
			".git/**",
			"dist/**",
			"build/**",
			"coverage/**",
			"out/**",
			".next/**",
			".scssclass/**",
		},
	}
}

// FileError records a stylesheet that could not be read. The pass goes on
// without it.
type FileError struct {
	FilePath string
	Err      error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.FilePath, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}
