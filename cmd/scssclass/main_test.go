package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/scssclass/pkg/catalog"
	"github.com/gnana997/scssclass/pkg/indexer"
	"github.com/gnana997/scssclass/pkg/scanner"
	"github.com/gnana997/scssclass/pkg/util"
	"github.com/gnana997/scssclass/pkg/validator"
)

// --- helpers ---

const buttonsSCSS = `$color: (red: #f00, blue: #00f) !default;
$scale: (1: 4px, 2: 8px) !default;
@include ds4-scale-class("btn-", $color, $scale);
.button-primary { color: red; }
`

const cardSCSS = `.card { padding: 0; }
.card-title { font-weight: bold; }
`

const cardTSX = `export const Card = () => (
  <div className="card card-titel">
    <h2 className="card-title">Title</h2>
  </div>
);
`

var workspaceClasses = []string{
	"card", "card-title",
	"red", "blue", "btn-red-1", "btn-red-2", "btn-blue-1", "btn-blue-2",
	"button-primary",
}

func writeWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "styles/buttons.scss", buttonsSCSS)
	writeFile(t, root, "components/card.scss", cardSCSS)
	writeFile(t, root, "components/Card.tsx", cardTSX)
	return root
}

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(append(args, "--log-level", "error"), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// --- dispatch ---

func TestRun_NoArgs(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage: scssclass")
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run([]string{"version"}, &stdout, &stderr))
	assert.Equal(t, "scssclass "+version+"\n", stdout.String())
}

func TestRun_UnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{"frobnicate"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "unknown command: frobnicate")
}

// --- scan ---

func TestScan_WritesCatalog(t *testing.T) {
	root := writeWorkspace(t)
	out := filepath.Join(t.TempDir(), "nested", "classes.json")

	code, stdout, stderr := runCLI(t, "scan", "--root", root, "-o", out, "--quiet")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Scanned 2 stylesheets")
	assert.Contains(t, stdout, "9 classes")

	qs, err := catalog.LoadAndQuery(out)
	require.NoError(t, err)
	assert.Equal(t, workspaceClasses, qs.Catalog.Names())

	entry, ok := qs.GetClass("btn-blue-2")
	require.True(t, ok)
	assert.Equal(t, "mixin", entry.Origin)
	assert.Equal(t, "styles/buttons.scss", entry.Source)
}

func TestScan_Stdout(t *testing.T) {
	root := writeWorkspace(t)

	code, stdout, stderr := runCLI(t, "scan", "--root", root, "-o", "-")
	require.Equal(t, 0, code, stderr)

	var cat catalog.Catalog
	require.NoError(t, json.Unmarshal([]byte(stdout), &cat))
	assert.Equal(t, workspaceClasses, cat.Names())
}

func TestScan_Subdirectory(t *testing.T) {
	root := writeWorkspace(t)

	code, stdout, stderr := runCLI(t, "scan", "--root", root, "--subdir", "components", "-o", "-")
	require.Equal(t, 0, code, stderr)

	var cat catalog.Catalog
	require.NoError(t, json.Unmarshal([]byte(stdout), &cat))
	assert.Equal(t, []string{"card", "card-title"}, cat.Names())
}

func TestScan_InvalidSubdirectory(t *testing.T) {
	root := writeWorkspace(t)
	code, _, stderr := runCLI(t, "scan", "--root", root, "--subdir", "../outside", "-o", "-")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "scssclass scan:")
}

// --- inspect ---

func TestInspect_FileJSON(t *testing.T) {
	root := writeWorkspace(t)

	code, stdout, stderr := runCLI(t, "inspect", filepath.Join(root, "styles", "buttons.scss"), "--json")
	require.Equal(t, 0, code, stderr)

	var report unitReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))

	require.Len(t, report.Maps, 2)
	assert.Equal(t, "color", report.Maps[0].Name)
	assert.Equal(t, []string{"red", "blue"}, report.Maps[0].Keys)
	assert.Equal(t, []string{"1", "2"}, report.Maps[1].Keys)

	require.Len(t, report.Mixins, 1)
	assert.Equal(t, "ds4-scale-class", report.Mixins[0].Name)
	assert.Equal(t, "scale-class", report.Mixins[0].Convention)
	assert.Equal(t, []string{"btn-red-1", "btn-red-2", "btn-blue-1", "btn-blue-2"}, report.Mixins[0].Produces)

	assert.Equal(t, []string{"button-primary"}, report.Literal)
	assert.Len(t, report.Classes, 7)

	var rejected []string
	for _, r := range report.Rejected {
		rejected = append(rejected, r.Candidate)
	}
	assert.Equal(t, []string{"1", "2"}, rejected)
}

func TestInspect_FileHuman(t *testing.T) {
	root := writeWorkspace(t)

	code, stdout, stderr := runCLI(t, "inspect", filepath.Join(root, "styles", "buttons.scss"))
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "[7 classes]")
	assert.Contains(t, stdout, "$color: red, blue")
	assert.Contains(t, stdout, "@include ds4-scale-class(btn-, $color, $scale)  [scale-class]")
	assert.Contains(t, stdout, "Rejected")
}

func TestInspect_Directory(t *testing.T) {
	root := writeWorkspace(t)

	code, stdout, stderr := runCLI(t, "inspect", root, "--json")
	require.Equal(t, 0, code, stderr)

	var report dirReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, 2, report.Units)
	assert.Len(t, report.Classes, 9)
	assert.Equal(t, 2, report.ByOrigin["map-key"])
	assert.Equal(t, 4, report.ByOrigin["mixin"])
	assert.Equal(t, 3, report.ByOrigin["selector"])
}

func TestInspect_Usage(t *testing.T) {
	code, _, stderr := runCLI(t, "inspect")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "usage: scssclass inspect")
}

// --- lint ---

func TestLint_ReportsUnknownClass(t *testing.T) {
	root := writeWorkspace(t)
	tsx := filepath.Join(root, "components", "Card.tsx")

	code, stdout, _ := runCLI(t, "lint", tsx, "--root", root)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, tsx+":2:")
	assert.Contains(t, stdout, `did you mean "card-title"?`)
	assert.Contains(t, stdout, "(unknown-class)")
	assert.Contains(t, stdout, "1 file(s) checked: 1 error(s), 0 warning(s)")
}

func TestLint_Fix(t *testing.T) {
	root := writeWorkspace(t)
	tsx := filepath.Join(root, "components", "Card.tsx")

	code, stdout, stderr := runCLI(t, "lint", tsx, "--root", root, "--fix")
	require.Equal(t, 0, code, stdout+stderr)
	assert.Contains(t, stdout, "Fixed 1 class name(s)")

	data, err := os.ReadFile(tsx)
	require.NoError(t, err)
	assert.Contains(t, string(data), `className="card card-title"`)
	assert.NotContains(t, string(data), "card-titel")
}

func TestLintReport_TallyCountsAppliedFixesOnly(t *testing.T) {
	fix := &validator.AutoFix{OldText: "card-titel", NewText: "card-title"}
	result := &validator.ValidationResult{Violations: []validator.Violation{
		{Severity: "error", Class: "card-titel", Fix: fix, Fixed: true},
		{Severity: "error", Class: "card-titel", Fix: fix},
		{Severity: "error", Class: "nope"},
		{Severity: "warning", Class: "empty"},
	}}

	var report lintReport
	report.tally(result)
	assert.Equal(t, 1, report.Fixed)
	assert.Equal(t, 2, report.Errors, "a fix that was not applied stays an error")
	assert.Equal(t, 1, report.Warnings)
}

func TestLint_DirectoryAgainstCatalogFile(t *testing.T) {
	root := writeWorkspace(t)
	writeFile(t, root, "node_modules/pkg/Bad.tsx", `export const X = () => <div className="nope" />;`)
	writeFile(t, root, "components/Ok.jsx", `export const Ok = () => <p className="red">ok</p>;`)

	out := filepath.Join(t.TempDir(), "classes.json")
	code, _, stderr := runCLI(t, "scan", "--root", root, "-o", out, "--quiet")
	require.Equal(t, 0, code, stderr)

	code, stdout, _ := runCLI(t, "lint", root, "--catalog", out, "--json")
	assert.Equal(t, 1, code)

	var report lintReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, 2, report.Files)
	assert.Equal(t, 1, report.Errors)
	for _, r := range report.Results {
		assert.NotContains(t, r.FilePath, "node_modules")
	}
}

func TestLint_NoMatches(t *testing.T) {
	root := writeWorkspace(t)
	code, _, stderr := runCLI(t, "lint", filepath.Join(root, "styles", "*.tsx"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "no such file")
}

// --- serve ---

func TestInitialScan_FailedPassPublishesNothing(t *testing.T) {
	root := writeWorkspace(t)
	writeFile(t, root, "styles/bad.scss", ".bad { }\n/* \xff */")

	scanCfg := scanner.DefaultScanConfig()
	scanCfg.Root = root
	idx, err := indexer.NewClassIndex(scanCfg, indexer.DefaultClassIndexConfig(), util.DiscardLogger())
	require.NoError(t, err)
	defer idx.Close()

	var stderr bytes.Buffer
	assert.False(t, initialScan(context.Background(), idx, util.DiscardLogger(), &stderr))
	assert.Contains(t, stderr.String(), "class tools report no catalog until a rescan succeeds")
	assert.NotContains(t, stderr.String(), "empty catalog")
	assert.Nil(t, idx.Current())

	_, err = idx.Query()
	assert.ErrorIs(t, err, indexer.ErrNoSnapshot)
}

func TestInitialScan_Publishes(t *testing.T) {
	scanCfg := scanner.DefaultScanConfig()
	scanCfg.Root = writeWorkspace(t)
	idx, err := indexer.NewClassIndex(scanCfg, indexer.DefaultClassIndexConfig(), util.DiscardLogger())
	require.NoError(t, err)
	defer idx.Close()

	var stderr bytes.Buffer
	assert.True(t, initialScan(context.Background(), idx, util.DiscardLogger(), &stderr))
	assert.Empty(t, stderr.String())
	assert.Equal(t, workspaceClasses, idx.Current().Catalog.Names())
}

// --- init ---

func TestInit(t *testing.T) {
	dir := t.TempDir()

	code, stdout, stderr := runCLI(t, "init", dir)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, configPath(dir))

	code, _, stderr = runCLI(t, "init", dir)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "already exists")

	code, _, stderr = runCLI(t, "init", dir, "--force", "--mcp")
	require.Equal(t, 0, code, stderr)

	data, err := os.ReadFile(filepath.Join(dir, mcpConfigFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scssclass"`)

	changed, err := registerMCPServer(filepath.Join(dir, mcpConfigFile))
	require.NoError(t, err)
	assert.False(t, changed)
}
