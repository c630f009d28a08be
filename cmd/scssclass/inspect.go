package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnana997/scssclass/pkg/classname"
	"github.com/gnana997/scssclass/pkg/scanner"
	"github.com/gnana997/scssclass/pkg/util"
)

const maxWidth = 80

// unitReport is the JSON form of `inspect <file>`.
type unitReport struct {
	Unit     string          `json:"unit"`
	Maps     []mapReport     `json:"maps"`
	Mixins   []mixinReport   `json:"mixins"`
	Literal  []string        `json:"selectors"`
	Classes  []classReport   `json:"classes"`
	Rejected []rejectionInfo `json:"rejected,omitempty"`
}

type mapReport struct {
	Name string   `json:"name"`
	Keys []string `json:"keys"`
}

type mixinReport struct {
	Name       string   `json:"name"`
	Convention string   `json:"convention"`
	Args       []string `json:"args"`
	Produces   []string `json:"produces"`
}

type classReport struct {
	Name   string `json:"name"`
	Origin string `json:"origin"`
	Source string `json:"source,omitempty"`
}

type rejectionInfo struct {
	Candidate string `json:"candidate"`
	Origin    string `json:"origin"`
}

// dirReport is the JSON form of `inspect <dir>`.
type dirReport struct {
	Dir      string         `json:"dir"`
	Units    int            `json:"units"`
	Skipped  []string       `json:"skipped,omitempty"`
	Classes  []classReport  `json:"classes"`
	ByOrigin map[string]int `json:"by_origin"`
}

// runInspect is the entry point for `scssclass inspect <path>`.
func runInspect(args []string, stdout, stderr io.Writer) error {
	f, err := parseFlags(args, boolFlags("json")...)
	if err != nil {
		return err
	}
	if len(f.Args()) != 1 {
		return errors.New("usage: scssclass inspect <file.scss|dir> [--json]")
	}
	s, err := resolveSettings(f, ".")
	if err != nil {
		return err
	}
	logger := s.logger()

	target := f.Args()[0]
	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		text, err := util.NewMappedReader(logger).ReadString(target)
		if err != nil {
			return err
		}
		report, err := inspectUnit(classname.SourceUnit{ID: filepath.ToSlash(target), Text: text})
		if err != nil {
			return err
		}
		if f.Bool("json") {
			return writeJSON(stdout, report)
		}
		printUnitHuman(stdout, report)
		return nil
	}

	scan := s.scan
	scan.Root = target
	scan.Subdirectory = ""
	locator, err := scanner.NewLocator(scan, logger)
	if err != nil {
		return err
	}
	units, skipped, err := locator.Load(context.Background())
	if err != nil {
		return err
	}
	for _, fe := range skipped {
		fmt.Fprintf(stderr, "warning: skipped %v\n", fe)
	}

	pipeline := classname.NewPipeline(classname.PipelineConfig{
		Workers: util.GetOptimalPoolSizeWithOverride(s.index.Workers),
		Logger:  logger,
	})
	rs, err := pipeline.Run(context.Background(), units)
	if err != nil {
		return err
	}

	report := dirReport{
		Dir:      target,
		Units:    len(units),
		Classes:  make([]classReport, 0, rs.Len()),
		ByOrigin: make(map[string]int),
	}
	for _, fe := range skipped {
		report.Skipped = append(report.Skipped, fe.FilePath)
	}
	for _, a := range rs.Entries() {
		report.Classes = append(report.Classes, classReport{Name: a.Name, Origin: a.Origin.String(), Source: a.Unit})
		report.ByOrigin[a.Origin.String()]++
	}

	if f.Bool("json") {
		return writeJSON(stdout, report)
	}
	printDirHuman(stdout, &report)
	return nil
}

// inspectUnit runs the engine over one unit and collects every
// intermediate result.
func inspectUnit(unit classname.SourceUnit) (*unitReport, error) {
	result, err := classname.ExtractUnit(unit)
	if err != nil {
		return nil, err
	}

	report := &unitReport{
		Unit:    unit.ID,
		Maps:    make([]mapReport, 0, result.Table.Len()),
		Mixins:  make([]mixinReport, 0, len(result.Invocations)),
		Literal: classname.ScanLiteralSelectors(unit.Text),
		Classes: make([]classReport, 0, len(result.Admitted)),
	}
	for _, m := range result.Table.Maps() {
		report.Maps = append(report.Maps, mapReport{Name: m.Name, Keys: m.Keys})
	}
	for _, inv := range result.Invocations {
		produces := inv.Expand(result.Table)
		if produces == nil {
			produces = []string{}
		}
		report.Mixins = append(report.Mixins, mixinReport{
			Name:       inv.Name,
			Convention: inv.Convention.String(),
			Args:       inv.Args,
			Produces:   produces,
		})
	}
	for _, a := range result.Admitted {
		report.Classes = append(report.Classes, classReport{Name: a.Name, Origin: a.Origin.String()})
	}
	for _, r := range result.Rejected {
		report.Rejected = append(report.Rejected, rejectionInfo{Candidate: r.Candidate, Origin: r.Origin.String()})
	}
	return report, nil
}

func printUnitHuman(w io.Writer, r *unitReport) {
	fmt.Fprintf(w, "%s  [%d classes]\n", r.Unit, len(r.Classes))

	fmt.Fprintln(w)
	if len(r.Maps) == 0 {
		fmt.Fprintln(w, "Maps  (none)")
	} else {
		fmt.Fprintln(w, "Maps")
		for _, m := range r.Maps {
			printWrapped(w, fmt.Sprintf("$%s: %s", m.Name, strings.Join(m.Keys, ", ")), 2, maxWidth)
		}
	}

	fmt.Fprintln(w)
	if len(r.Mixins) == 0 {
		fmt.Fprintln(w, "Mixins  (none)")
	} else {
		fmt.Fprintln(w, "Mixins")
		for _, m := range r.Mixins {
			fmt.Fprintf(w, "  @include %s(%s)  [%s]\n", m.Name, strings.Join(m.Args, ", "), m.Convention)
			if len(m.Produces) > 0 {
				printWrapped(w, "-> "+strings.Join(m.Produces, ", "), 4, maxWidth)
			}
		}
	}

	fmt.Fprintln(w)
	if len(r.Literal) == 0 {
		fmt.Fprintln(w, "Selectors  (none)")
	} else {
		fmt.Fprintln(w, "Selectors")
		printWrapped(w, strings.Join(r.Literal, ", "), 2, maxWidth)
	}

	fmt.Fprintln(w)
	printClassTable(w, r.Classes)

	if len(r.Rejected) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Rejected")
		for _, rej := range r.Rejected {
			fmt.Fprintf(w, "  %q  (%s)\n", rej.Candidate, rej.Origin)
		}
	}
}

func printDirHuman(w io.Writer, r *dirReport) {
	fmt.Fprintf(w, "%s  [%d stylesheets, %d classes]\n", r.Dir, r.Units, len(r.Classes))
	for _, origin := range []string{"map-key", "mixin", "selector"} {
		fmt.Fprintf(w, "  %-9s %d\n", origin, r.ByOrigin[origin])
	}
	fmt.Fprintln(w)
	printClassTable(w, r.Classes)
}

func printClassTable(w io.Writer, classes []classReport) {
	if len(classes) == 0 {
		fmt.Fprintln(w, "Classes  (none)")
		return
	}
	fmt.Fprintln(w, "Classes")
	nameWidth := 0
	for _, c := range classes {
		if len(c.Name) > nameWidth {
			nameWidth = len(c.Name)
		}
	}
	for _, c := range classes {
		padding := strings.Repeat(" ", nameWidth-len(c.Name))
		if c.Source != "" {
			fmt.Fprintf(w, "  %s%s  %-8s  %s\n", c.Name, padding, c.Origin, c.Source)
		} else {
			fmt.Fprintf(w, "  %s%s  %s\n", c.Name, padding, c.Origin)
		}
	}
}

// printWrapped prints text word-wrapped to width, every line indented.
func printWrapped(w io.Writer, text string, indent, width int) {
	prefix := strings.Repeat(" ", indent)
	line := prefix
	for _, word := range strings.Fields(text) {
		if len(line) > indent && len(line)+1+len(word) > width {
			fmt.Fprintln(w, line)
			line = prefix
		}
		if len(line) > indent {
			line += " "
		}
		line += word
	}
	if len(line) > indent {
		fmt.Fprintln(w, line)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
