package classname

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func units(texts ...string) []SourceUnit {
	out := make([]SourceUnit, len(texts))
	for i, text := range texts {
		out[i] = SourceUnit{ID: fmt.Sprintf("unit-%d.scss", i), Text: text}
	}
	return out
}

func TestExtract_LiteralSelector(t *testing.T) {
	names, err := Extract(context.Background(), units(`.button-primary { color: red; }`))
	require.NoError(t, err)
	assert.Equal(t, []string{"button-primary"}, names)
}

func TestExtract_VariableMapKeys(t *testing.T) {
	names, err := Extract(context.Background(), units(`$spacing: (sm: 4px, lg: 16px) !default;`))
	require.NoError(t, err)

	assert.Contains(t, names, "sm")
	assert.Contains(t, names, "lg")
	assert.NotContains(t, names, "spacing")
	assert.NotContains(t, names, "4px")
	assert.NotContains(t, names, "16px")
}

func TestExtract_ScaleClassCrossProduct(t *testing.T) {
	src := colorScaleMaps + `@include ds4-scale-class("btn-", $color, $scale);`
	result, err := ExtractUnit(SourceUnit{ID: "buttons.scss", Text: src})
	require.NoError(t, err)

	var mixinNames []string
	for _, a := range result.Admitted {
		if a.Origin == OriginMixin {
			mixinNames = append(mixinNames, a.Name)
		}
	}
	assert.Equal(t, []string{"btn-red-1", "btn-red-2", "btn-blue-1", "btn-blue-2"}, mixinNames)
}

func TestExtract_SingleMapMixin(t *testing.T) {
	names, err := Extract(context.Background(), units(`
$spacing: (sm: 4px) !default;
@include style-class($foo, $spacing);
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"sm"}, names)
	assert.NotContains(t, names, "foo")
	assert.NotContains(t, names, "spacing")
}

func TestExtract_InvalidKeysRejected(t *testing.T) {
	result, err := ExtractUnit(SourceUnit{ID: "bad.scss", Text: `$m: (123: a, $bad: b, ok: c) !default;`})
	require.NoError(t, err)

	assert.Equal(t, []string{"ok"}, result.Names())
	assert.Equal(t, []Rejection{
		{Candidate: "123", Origin: OriginMapKey},
		{Candidate: "$bad", Origin: OriginMapKey},
	}, result.Rejected)
}

func TestExtract_OrderWithinUnit(t *testing.T) {
	src := `
.literal { }
@include ds4-border-radius-class($radius);
$radius: (pill: 999px, square: 0) !default;
.pill { }
`
	names, err := Extract(context.Background(), units(src))
	require.NoError(t, err)

	// Map keys first, then expansions (already present), then selectors.
	assert.Equal(t, []string{"pill", "square", "literal"}, names)
}

func TestExtract_OrderAcrossUnits(t *testing.T) {
	names, err := Extract(context.Background(), units(
		`.b { } .a { }`,
		`.a { } .c { }`,
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, names)
}

func TestExtract_MapsAreLocalToUnit(t *testing.T) {
	names, err := Extract(context.Background(), units(
		`$spacing: (sm: 4px) !default;`,
		`@include ds4-scale-class("p-", $spacing, $spacing);`,
	))
	require.NoError(t, err)
	assert.Equal(t, []string{"sm"}, names)
}

func TestExtract_Provenance(t *testing.T) {
	rs, err := NewPipeline(DefaultPipelineConfig()).Run(context.Background(), units(
		`.card { }`,
		`$x: (card: 1, chip: 2) !default;`,
	))
	require.NoError(t, err)

	card, ok := rs.Get("card")
	require.True(t, ok)
	assert.Equal(t, OriginSelector, card.Origin)
	assert.Equal(t, "unit-0.scss", card.Unit)

	chip, ok := rs.Get("chip")
	require.True(t, ok)
	assert.Equal(t, OriginMapKey, chip.Origin)
	assert.Equal(t, "unit-1.scss", chip.Unit)
}

func TestExtract_EveryOutputPassesFilter(t *testing.T) {
	src := `
$odd: (123: a, "$x": b, "two words": c, 4px: d, -neg: e, "50%": f, good: g) !default;
$scale: (1: a, 2: b) !default;
@include ds4-scale-class("", $odd, $scale);
@include ds4-scale-class("has space ", $odd, $scale);
.-bad { } .ok { }
`
	names, err := Extract(context.Background(), units(src))
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for _, name := range names {
		assert.True(t, IsValid(name), name)
	}
	assert.Contains(t, names, "good")
	assert.Contains(t, names, "good-1")
	assert.Contains(t, names, "ok")
}

func TestExtract_Idempotent(t *testing.T) {
	input := units(
		colorScaleMaps+`@include ds4-scale-class("btn-", $color, $scale);`,
		`.button-primary { } $spacing: (sm: 4px, lg: 16px) !default;`,
	)

	first, err := Extract(context.Background(), input)
	require.NoError(t, err)
	second, err := Extract(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPipeline_ParallelMatchesSequential(t *testing.T) {
	var texts []string
	for i := 0; i < 40; i++ {
		texts = append(texts, fmt.Sprintf(`
$m%d: (k%d: 1, shared: 2) !default;
$s: (1: a, 2: b) !default;
@include ds4-scale-class("c%d-", $m%d, $s);
.sel-%d { }
`, i, i, i, i, i))
	}
	input := units(texts...)

	sequential, err := NewPipeline(DefaultPipelineConfig()).Run(context.Background(), input)
	require.NoError(t, err)
	parallel, err := NewPipeline(PipelineConfig{Workers: 8}).Run(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, sequential.Names(), parallel.Names())
	assert.Equal(t, sequential.Entries(), parallel.Entries())
}

func TestPipeline_CancelledBetweenUnits(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		rs, err := NewPipeline(PipelineConfig{Workers: workers}).Run(ctx, units(`.a { }`, `.b { }`))
		assert.Nil(t, rs)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPassCancelled)
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestPipeline_InvalidUTF8FailsPass(t *testing.T) {
	bad := SourceUnit{ID: "broken.scss", Text: ".ok { }\xff\xfe"}

	for _, workers := range []int{1, 4} {
		input := []SourceUnit{{ID: "fine.scss", Text: ".fine { }"}, bad}
		rs, err := NewPipeline(PipelineConfig{Workers: workers}).Run(context.Background(), input)
		assert.Nil(t, rs)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidEncoding))

		var encErr *InvalidEncodingError
		require.ErrorAs(t, err, &encErr)
		assert.Equal(t, "broken.scss", encErr.Unit)
		assert.Equal(t, strings.Index(bad.Text, "\xff"), encErr.Offset)
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	names, err := Extract(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, names)
}
