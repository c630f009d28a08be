package mcplog

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestSanitizeParams(t *testing.T) {
	tests := []struct {
		name     string
		input    map[string]any
		wantKeys map[string]bool // keys expected in output
		wantSkip map[string]bool // keys that should NOT appear
	}{
		{
			name:     "nil map returns empty",
			input:    nil,
			wantKeys: map[string]bool{},
		},
		{
			name:     "short string passes through",
			input:    map[string]any{"prefix": "btn-"},
			wantKeys: map[string]bool{"prefix": true},
		},
		{
			name: "long string replaced with _len key",
			input: map[string]any{
				"code": string(make([]byte, 200)), // 200 bytes > 64
			},
			wantKeys: map[string]bool{"code_len": true},
			wantSkip: map[string]bool{"code": true},
		},
		{
			name: "bool and nil pass through",
			input: map[string]any{
				"auto_fix": true,
				"extra":    nil,
			},
			wantKeys: map[string]bool{"auto_fix": true, "extra": true},
		},
		{
			name: "mixed short and long strings",
			input: map[string]any{
				"name":  "btn-red-1",
				"query": string(make([]byte, 100)),
			},
			wantKeys: map[string]bool{"name": true, "query_len": true},
			wantSkip: map[string]bool{"query": true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := SanitizeParams(tc.input)
			for k := range tc.wantKeys {
				if _, ok := out[k]; !ok {
					t.Errorf("expected key %q in output", k)
				}
			}
			for k := range tc.wantSkip {
				if _, ok := out[k]; ok {
					t.Errorf("unexpected key %q in output", k)
				}
			}
		})
	}
}

func TestResponseBytes(t *testing.T) {
	t.Run("nil returns zero", func(t *testing.T) {
		if got := ResponseBytes(nil); got != 0 {
			t.Errorf("got %d, want 0", got)
		}
	})

	t.Run("text content", func(t *testing.T) {
		if got := ResponseBytes(mcp.NewToolResultText("btn-red-1")); got == 0 {
			t.Errorf("expected non-zero size")
		}
	})
}

func TestNewEntry(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	result := mcp.NewToolResultText(strings.Repeat("x", 400))

	entry := NewEntry("list_classes", map[string]any{"prefix": "btn-"}, start, 1500*time.Millisecond, result, nil)
	if entry.Ts != "2026-03-01T12:00:00Z" {
		t.Errorf("ts=%q", entry.Ts)
	}
	if entry.DurationMs != 1500 {
		t.Errorf("duration_ms=%d, want 1500", entry.DurationMs)
	}
	if entry.TokensEst != entry.ResponseBytes/4 || entry.ResponseBytes < 400 {
		t.Errorf("response_bytes=%d tokens_est=%d", entry.ResponseBytes, entry.TokensEst)
	}
	if entry.ToolError || entry.Error != nil {
		t.Errorf("unexpected error flags: %+v", entry)
	}

	failed := NewEntry("get_class", nil, start, 0, mcp.NewToolResultError("not found"), errors.New("boom"))
	if !failed.ToolError {
		t.Errorf("expected tool_error")
	}
	if failed.Error == nil || *failed.Error != "boom" {
		t.Errorf("error=%v", failed.Error)
	}
}

func TestLoggerClock(t *testing.T) {
	logger, err := NewLogger(filepath.Join(t.TempDir(), "clock.jsonl"))
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer logger.Close()

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	logger.SetClock(func() time.Time { return fixed })
	if got := logger.Now(); !got.Equal(fixed) {
		t.Errorf("Now()=%v, want %v", got, fixed)
	}
}

func TestLoggerWriteAndRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.jsonl")

	logger, err := NewLogger(path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer logger.Close()

	entries := []LogEntry{
		{Ts: time.Now().UTC().Format(time.RFC3339), Tool: "list_classes", Params: map[string]any{}, DurationMs: 5, ResponseBytes: 100, TokensEst: 25},
		{Ts: time.Now().UTC().Format(time.RFC3339), Tool: "validate_classes", Params: map[string]any{"code_len": 1200, "auto_fix": false}, DurationMs: 42, ResponseBytes: 800, TokensEst: 200},
		{Ts: time.Now().UTC().Format(time.RFC3339), Tool: "search_classes", Params: map[string]any{"query": "btn"}, PassID: "pass-1", DurationMs: 3, ResponseBytes: 50, TokensEst: 12},
	}

	for _, e := range entries {
		if err := logger.Write(e); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Re-open and read back.
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var got []LogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var e LogEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("unmarshal line %q: %v", line, err)
		}
		got = append(got, e)
	}

	if len(got) != len(entries) {
		t.Fatalf("got %d lines, want %d", len(got), len(entries))
	}
	for i, e := range entries {
		if got[i].Tool != e.Tool {
			t.Errorf("line %d: tool=%q, want %q", i, got[i].Tool, e.Tool)
		}
		if got[i].DurationMs != e.DurationMs {
			t.Errorf("line %d: duration_ms=%d, want %d", i, got[i].DurationMs, e.DurationMs)
		}
		if got[i].PassID != e.PassID {
			t.Errorf("line %d: pass_id=%q, want %q", i, got[i].PassID, e.PassID)
		}
	}
}

func TestLoggerConcurrency(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "concurrent.jsonl")

	logger, err := NewLogger(path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer logger.Close()

	const goroutines = 50
	const writesEach = 10

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < writesEach; j++ {
				_ = logger.Write(LogEntry{
					Ts:   time.Now().UTC().Format(time.RFC3339),
					Tool: "get_status",
				})
			}
		}(i)
	}
	wg.Wait()

	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var e LogEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("torn write detected at line %d: %v", count+1, err)
		}
		count++
	}

	if count != goroutines*writesEach {
		t.Errorf("got %d lines, want %d", count, goroutines*writesEach)
	}
}

func TestNewLoggerCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deep", "mcp.jsonl")

	logger, err := NewLogger(path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestNewLoggerEmptyPath(t *testing.T) {
	logger, err := NewLogger("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger != nil {
		t.Errorf("expected nil logger for empty path")
	}
}
