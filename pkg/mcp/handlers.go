package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/scssclass/pkg/catalog"
	"github.com/gnana997/scssclass/pkg/classname"
	"github.com/gnana997/scssclass/pkg/indexer"
	"github.com/gnana997/scssclass/pkg/validator"
)

// maxNotFoundSuggestions caps the names offered when get_class misses.
const maxNotFoundSuggestions = 5

// --- argument helpers ---

func stringArg(req mcp.CallToolRequest, key string) string {
	s, _ := req.GetArguments()[key].(string)
	return s
}

func hasArg(req mcp.CallToolRequest, key string) bool {
	_, ok := req.GetArguments()[key]
	return ok
}

func boolArg(req mcp.CallToolRequest, key string) bool {
	b, _ := req.GetArguments()[key].(bool)
	return b
}

// limitArg reads a numeric limit, falling back to def and capping at
// maxLimit.
func limitArg(req mcp.CallToolRequest, def int) int {
	limit := def
	if f, ok := req.GetArguments()["limit"].(float64); ok && f > 0 {
		limit = int(f)
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

// marshalResult marshals v to JSON and wraps it as a text result.
func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// snapshot returns the published catalog or a user-facing error result.
func (s *Server) snapshot() (*catalog.QueryService, *mcp.CallToolResult) {
	qs, err := s.index.Query()
	if err != nil {
		return nil, mcp.NewToolResultError("no class catalog available yet; run rescan or wait for the first pass")
	}
	return qs, nil
}

// --- list_classes ---

type listClassesResponse struct {
	PassID  string   `json:"pass_id"`
	Total   int      `json:"total"`
	Count   int      `json:"count"`
	Classes []string `json:"classes"`
}

func (s *Server) handleListClasses(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	qs, errResult := s.snapshot()
	if errResult != nil {
		return errResult, nil
	}

	origin := stringArg(req, "origin")
	if origin != "" {
		if _, ok := classname.ParseOrigin(origin); !ok {
			return mcp.NewToolResultError(fmt.Sprintf("unknown origin %q: must be map-key, mixin or selector", origin)), nil
		}
	}

	entries := qs.ListClasses(stringArg(req, "prefix"), origin, limitArg(req, defaultListLimit))
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}

	return marshalResult(listClassesResponse{
		PassID:  qs.Catalog.PassID,
		Total:   qs.Len(),
		Count:   len(names),
		Classes: names,
	})
}

// --- search_classes ---

func (s *Server) handleSearchClasses(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(stringArg(req, "query"))
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	qs, errResult := s.snapshot()
	if errResult != nil {
		return errResult, nil
	}

	results := qs.SearchClasses(query, limitArg(req, defaultSearchLimit))
	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("no classes found matching %q", query)), nil
	}
	return marshalResult(results)
}

// --- get_class ---

type classDetail struct {
	catalog.ClassEntry
	Stylesheet *catalog.SourceSummary `json:"stylesheet,omitempty"`
}

func (s *Server) handleGetClass(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimPrefix(strings.TrimSpace(stringArg(req, "name")), ".")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	qs, errResult := s.snapshot()
	if errResult != nil {
		return errResult, nil
	}

	entry, ok := qs.GetClass(name)
	if !ok {
		msg := fmt.Sprintf("class %q not found", name)
		if suggestions := qs.Suggest(name, maxNotFoundSuggestions); len(suggestions) > 0 {
			msg += "; did you mean: " + strings.Join(suggestions, ", ")
		}
		return mcp.NewToolResultError(msg), nil
	}

	return marshalResult(classDetail{
		ClassEntry: *entry,
		Stylesheet: qs.Index.SourceByID[entry.Source],
	})
}

// --- complete_class ---

type completionItem struct {
	Label  string `json:"label"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

func (s *Server) handleCompleteClass(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	qs, errResult := s.snapshot()
	if errResult != nil {
		return errResult, nil
	}

	prefix := strings.TrimPrefix(stringArg(req, "prefix"), ".")
	entries := qs.ListClasses(prefix, "", limitArg(req, defaultCompletionLimit))

	items := make([]completionItem, len(entries))
	for i, e := range entries {
		items[i] = completionItem{
			Label:  e.Name,
			Kind:   "class",
			Detail: fmt.Sprintf("%s in %s", e.Origin, e.Source),
		}
	}
	return marshalResult(items)
}

// --- validate_classes ---

func (s *Server) handleValidateClasses(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.validator == nil {
		return mcp.NewToolResultError("validation is not available: no parser configured"), nil
	}

	code := stringArg(req, "code")
	if code == "" {
		return mcp.NewToolResultError("code is required"), nil
	}

	result, err := s.validator.ValidateSource(code, stringArg(req, "file_path"), boolArg(req, "auto_fix"))
	if err != nil {
		if errors.Is(err, validator.ErrNoCatalog) {
			return mcp.NewToolResultError("no class catalog available yet; run rescan or wait for the first pass"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return marshalResult(result)
}

// --- analyze_usage ---

func (s *Server) handleAnalyzeUsage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.validator == nil {
		return mcp.NewToolResultError("analysis is not available: no parser configured"), nil
	}

	code := stringArg(req, "code")
	if code == "" {
		return mcp.NewToolResultError("code is required"), nil
	}

	analysis, err := s.validator.AnalyzeUsage(code, stringArg(req, "file_path"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return marshalResult(analysis)
}

// --- rescan ---

// passSummary describes one finished pass.
type passSummary struct {
	PassID         string   `json:"pass_id"`
	Subdirectory   string   `json:"subdirectory,omitempty"`
	Files          int      `json:"files"`
	UnitsFromCache int      `json:"units_from_cache"`
	FailedFiles    []string `json:"failed_files,omitempty"`
	Classes        int      `json:"classes"`
	DurationMs     int64    `json:"duration_ms"`
}

func (s *Server) handleRescan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if hasArg(req, "subdirectory") {
		if err := s.index.SetSubdirectory(stringArg(req, "subdirectory")); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid subdirectory: %v", err)), nil
		}
	}

	stats, err := s.index.Rescan(ctx, nil)
	if err != nil {
		if errors.Is(err, classname.ErrPassCancelled) {
			return mcp.NewToolResultError("pass cancelled before it finished; the previous catalog is still served"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("pass failed: %v", err)), nil
	}

	return marshalResult(summarizePass(stats, s.index.GetStats().Subdirectory))
}

func summarizePass(stats *indexer.ScanStats, subdirectory string) *passSummary {
	summary := &passSummary{
		PassID:         stats.PassID,
		Subdirectory:   subdirectory,
		Files:          stats.UnitsExtracted,
		UnitsFromCache: stats.UnitsFromCache,
		Classes:        stats.Classes,
		DurationMs:     stats.TotalTimeMs,
	}
	for _, fe := range stats.Errors {
		summary.FailedFiles = append(summary.FailedFiles, fe.FilePath)
	}
	return summary
}

// --- get_status ---

type statusResponse struct {
	indexer.IndexStats
	ReadOnly   bool         `json:"read_only"`
	Validation bool         `json:"validation"`
	LastPass   *passSummary `json:"last_pass,omitempty"`
}

func (s *Server) handleGetStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats := s.index.GetStats()
	resp := statusResponse{
		IndexStats: stats,
		ReadOnly:   s.readOnly,
		Validation: s.validator != nil,
	}
	// A catalog loaded from disk has no pass behind it.
	if last := s.index.LastScan(); last != nil {
		resp.LastPass = summarizePass(last, stats.Subdirectory)
	}
	return marshalResult(resp)
}
