package classname

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// Rejection is a candidate that a producer proposed and IsValid refused.
type Rejection struct {
	Candidate string
	Origin    Origin
}

// UnitResult is everything extracted from one source unit.
//
// Admitted is already filtered and de-duplicated within the unit, in the
// pipeline order (map keys, mixin expansions, literal selectors). It is
// safe to cache a UnitResult and merge it into later passes: nothing in it
// refers to other units.
type UnitResult struct {
	Unit        string
	Table       *SymbolTable
	Invocations []MixinInvocation
	Admitted    []Admitted
	Rejected    []Rejection
}

// Names returns the admitted names of the unit in order.
func (r *UnitResult) Names() []string {
	names := make([]string, len(r.Admitted))
	for i, a := range r.Admitted {
		names[i] = a.Name
	}
	return names
}

// ExtractUnit runs the three producers over a single unit.
//
// Text that is not valid UTF-8 returns an *InvalidEncodingError. Malformed
// declarations and unresolved mixin references are never errors.
func ExtractUnit(unit SourceUnit) (*UnitResult, error) {
	if !utf8.ValidString(unit.Text) {
		return nil, &InvalidEncodingError{Unit: unit.ID, Offset: firstInvalidByte(unit.Text)}
	}

	result := &UnitResult{Unit: unit.ID}
	local := NewResultSet()
	offer := func(candidate string, origin Origin) {
		if !IsValid(candidate) {
			result.Rejected = append(result.Rejected, Rejection{Candidate: candidate, Origin: origin})
			return
		}
		if local.Admit(candidate, origin, unit.ID) {
			result.Admitted = append(result.Admitted, Admitted{Name: candidate, Origin: origin, Unit: unit.ID})
		}
	}

	result.Table = ParseVariableMaps(unit.Text)
	for _, m := range result.Table.Maps() {
		for _, key := range m.Keys {
			offer(key, OriginMapKey)
		}
	}

	// Expansion runs after the whole table is built, so an @include may
	// reference a map declared further down the same file.
	result.Invocations = ParseMixinInvocations(unit.Text)
	for _, inv := range result.Invocations {
		for _, candidate := range inv.Expand(result.Table) {
			offer(candidate, OriginMixin)
		}
	}

	for _, name := range ScanLiteralSelectors(unit.Text) {
		offer(name, OriginSelector)
	}

	return result, nil
}

// Merge admits the names of results into rs in slice order. Passing unit
// results in source order reproduces the sequential output exactly.
func Merge(rs *ResultSet, results ...*UnitResult) {
	for _, r := range results {
		if r == nil {
			continue
		}
		for _, a := range r.Admitted {
			rs.Admit(a.Name, a.Origin, a.Unit)
		}
	}
}

// PipelineConfig configures a Pipeline.
type PipelineConfig struct {
	// Workers is the number of units processed concurrently.
	// 0 or 1 processes units sequentially.
	Workers int

	// Logger receives per-pass debug output. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultPipelineConfig returns a sequential configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{Workers: 1}
}

// Pipeline runs extraction passes. It holds no state between passes and
// may be used from several goroutines at once.
type Pipeline struct {
	workers int
	logger  *slog.Logger
}

// NewPipeline creates a Pipeline from cfg.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Pipeline{workers: cfg.Workers, logger: cfg.Logger}
}

// Run extracts every unit and returns the pass-wide ResultSet.
//
// The context is checked between units. When it is done, Run returns an
// error wrapping both ErrPassCancelled and the context error, and no
// partial result. With Workers > 1 units run concurrently, but the merge
// follows the input order, so the result is identical to a sequential run.
func (p *Pipeline) Run(ctx context.Context, units []SourceUnit) (*ResultSet, error) {
	var (
		results []*UnitResult
		err     error
	)
	if p.workers > 1 && len(units) > 1 {
		results, err = p.runParallel(ctx, units)
	} else {
		results, err = p.runSequential(ctx, units)
	}
	if err != nil {
		return nil, err
	}

	rs := NewResultSet()
	Merge(rs, results...)

	p.logger.Debug("extraction pass complete",
		"units", len(units),
		"classes", rs.Len(),
		"workers", p.workers)

	return rs, nil
}

func (p *Pipeline) runSequential(ctx context.Context, units []SourceUnit) ([]*UnitResult, error) {
	results := make([]*UnitResult, len(units))
	for i, unit := range units {
		if err := ctx.Err(); err != nil {
			return nil, cancelled(err)
		}
		r, err := ExtractUnit(unit)
		if err != nil {
			return nil, err
		}
		results[i] = r
	}
	return results, nil
}

func (p *Pipeline) runParallel(ctx context.Context, units []SourceUnit) ([]*UnitResult, error) {
	results := make([]*UnitResult, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, unit := range units {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := ExtractUnit(unit)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, cancelled(ctxErr)
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, cancelled(err)
	}
	return results, nil
}

// Extract runs a sequential pass and returns the admitted names in order.
func Extract(ctx context.Context, units []SourceUnit) ([]string, error) {
	rs, err := NewPipeline(DefaultPipelineConfig()).Run(ctx, units)
	if err != nil {
		return nil, err
	}
	return rs.Names(), nil
}

func cancelled(err error) error {
	return fmt.Errorf("%w: %w", ErrPassCancelled, err)
}

func firstInvalidByte(s string) int {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(s)
}
