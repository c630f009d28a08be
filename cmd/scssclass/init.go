package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// mcpConfigFile is the project-level MCP client config that `init --mcp`
// registers the server in.
const mcpConfigFile = ".mcp.json"

// runInit is the entry point for `scssclass init [dir]`.
func runInit(args []string, stdout io.Writer) error {
	f, err := parseFlags(args, "force", "mcp")
	if err != nil {
		return err
	}

	dir := "."
	if len(f.Args()) > 0 {
		dir = f.Args()[0]
	}

	path, err := writeProjectConfig(dir, defaultProjectConfig(), f.Bool("force"))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %s\n", path)

	if f.Bool("mcp") {
		mcpPath := filepath.Join(dir, mcpConfigFile)
		changed, err := registerMCPServer(mcpPath)
		if err != nil {
			return fmt.Errorf("update %s: %w", mcpPath, err)
		}
		if changed {
			fmt.Fprintf(stdout, "Registered scssclass in %s\n", mcpPath)
		} else {
			fmt.Fprintf(stdout, "%s already lists scssclass\n", mcpPath)
		}
	}
	return nil
}

// registerMCPServer adds a scssclass entry to the MCP config at path,
// creating the file if needed. It reports whether the file changed.
func registerMCPServer(path string) (bool, error) {
	var existing []byte
	if data, err := os.ReadFile(path); err == nil {
		existing = data
	}

	merged, err := mergeServerEntry(existing, "mcpServers")
	if err != nil {
		return false, err
	}
	if merged == nil {
		return false, nil
	}
	return true, os.WriteFile(path, merged, 0644)
}

// mergeServerEntry adds a "scssclass" entry under serversKey and returns
// the merged JSON. Returns nil, nil if the entry already exists.
func mergeServerEntry(existing []byte, serversKey string) ([]byte, error) {
	config := make(map[string]any)
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &config); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	servers, ok := config[serversKey].(map[string]any)
	if !ok {
		servers = make(map[string]any)
	}
	if _, exists := servers["scssclass"]; exists {
		return nil, nil
	}

	servers["scssclass"] = map[string]any{
		"command": "scssclass",
		"args":    []any{"serve"},
	}
	config[serversKey] = servers

	out, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
