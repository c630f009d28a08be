package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

const version = "0.1.0-dev"

// errViolations makes the process exit non-zero without an extra message;
// the command has already reported what failed.
var errViolations = errors.New("violations found")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches one command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	var err error
	command, rest := args[0], args[1:]
	switch command {
	case "init":
		err = runInit(rest, stdout)
	case "scan":
		err = runScan(rest, stdout, stderr)
	case "inspect":
		err = runInspect(rest, stdout, stderr)
	case "lint":
		err = runLint(rest, stdout, stderr)
	case "serve":
		err = runServe(rest, stderr)
	case "watch":
		err = runWatch(rest, stdout, stderr)
	case "version", "--version":
		fmt.Fprintf(stdout, "scssclass %s\n", version)
	case "help", "--help", "-h":
		printUsage(stdout)
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", command)
		printUsage(stderr)
		return 1
	}

	if err != nil {
		if !errors.Is(err, errViolations) {
			fmt.Fprintf(stderr, "scssclass %s: %v\n", command, err)
		}
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: scssclass <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  init [dir]        Write .scssclass/config.yaml (--force, --mcp)")
	fmt.Fprintln(w, "  scan              Extract class names and write the catalog (-o path, --quiet)")
	fmt.Fprintln(w, "  inspect <path>    Show what one stylesheet or directory contributes (--json)")
	fmt.Fprintln(w, "  lint <files...>   Check className/class usage in TSX/JSX files (--fix, --json)")
	fmt.Fprintln(w, "  serve             Start the MCP server on stdio (--catalog path, --no-watch)")
	fmt.Fprintln(w, "  watch             Rescan on stylesheet changes and keep the catalog current")
	fmt.Fprintln(w, "  version           Print version")
	fmt.Fprintln(w, "  help              Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Common flags:")
	fmt.Fprintln(w, "  --root dir        Workspace root (default: .)")
	fmt.Fprintln(w, "  --subdir dir      Restrict discovery to a subdirectory of the root")
	fmt.Fprintln(w, "  --workers n       Extraction workers (0 = automatic)")
	fmt.Fprintln(w, "  --cache-size n    Per-stylesheet result cache entries")
	fmt.Fprintln(w, "  --log-level lvl   debug, info, warn or error")
	fmt.Fprintln(w, "  --log-format fmt  text or json")
}

// commonBoolFlags are the switches every command accepts.
var commonBoolFlags = []string{"debug", "quiet"}

func boolFlags(extra ...string) []string {
	return append(append([]string{}, commonBoolFlags...), extra...)
}
