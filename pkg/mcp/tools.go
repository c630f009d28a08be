package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Default and maximum result sizes shared by the list-style tools.
const (
	defaultListLimit       = 100
	defaultSearchLimit     = 20
	defaultCompletionLimit = 50
	maxLimit               = 1000
)

func listClassesTool() mcp.Tool {
	return mcp.NewTool("list_classes",
		mcp.WithDescription("List known class names in catalog order. Filter by name prefix and by origin (map-key, mixin, selector)."),
		mcp.WithString("prefix",
			mcp.Description("Only return classes starting with this prefix"),
		),
		mcp.WithString("origin",
			mcp.Description("Only return classes from this origin"),
			mcp.Enum("map-key", "mixin", "selector"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of classes to return (default: 100, max: 1000)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func searchClassesTool() mcp.Tool {
	return mcp.NewTool("search_classes",
		mcp.WithDescription("Search classes by name or stylesheet path. Exact matches rank first, then prefix, substring and source matches."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search text (case-insensitive)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default: 20)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func getClassTool() mcp.Tool {
	return mcp.NewTool("get_class",
		mcp.WithDescription("Look up one class: where it came from and which stylesheet defines it. Unknown names return the closest known classes."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Exact class name, without the leading dot"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func completeClassTool() mcp.Tool {
	return mcp.NewTool("complete_class",
		mcp.WithDescription("Completion items for a partially typed class name."),
		mcp.WithString("prefix",
			mcp.Description("Text typed so far; empty returns the first classes"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of items (default: 50)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func validateClassesTool() mcp.Tool {
	return mcp.NewTool("validate_classes",
		mcp.WithDescription("Check the literal className/class values in TSX or JSX code against the catalog. Reports unknown classes with suggestions."),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("TSX or JSX source code"),
		),
		mcp.WithString("file_path",
			mcp.Description("File name used to pick the grammar (.tsx, .jsx, .js); defaults to TSX"),
		),
		mcp.WithBoolean("auto_fix",
			mcp.Description("Return fixed code with unambiguous misspellings corrected"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func analyzeUsageTool() mcp.Tool {
	return mcp.NewTool("analyze_usage",
		mcp.WithDescription("Summarize the classes a TSX or JSX file uses, most used first, marking the ones the catalog knows."),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("TSX or JSX source code"),
		),
		mcp.WithString("file_path",
			mcp.Description("File name used to pick the grammar; defaults to TSX"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func rescanTool() mcp.Tool {
	return mcp.NewTool("rescan",
		mcp.WithDescription("Run a new extraction pass and publish its catalog. Optionally change the subdirectory discovery is restricted to; the pass in flight is cancelled."),
		mcp.WithString("subdirectory",
			mcp.Description("Subdirectory of the workspace root to scan; empty scans the whole root"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

func getStatusTool() mcp.Tool {
	return mcp.NewTool("get_status",
		mcp.WithDescription("Index status: published pass, class and unit counts, cache statistics and the last error."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}
