package classname

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const colorScaleMaps = `
$color: (red: #f00, blue: #00f) !default;
$scale: (1: 1x, 2: 2x) !default;
`

func TestConventionFor(t *testing.T) {
	assert.Equal(t, ConventionScaleClass, ConventionFor("ds4-scale-class"))
	assert.Equal(t, ConventionMapKeysSecond, ConventionFor("ds4-scale-font-class"))
	assert.Equal(t, ConventionMapKeysSecond, ConventionFor("style-class"))
	assert.Equal(t, ConventionMapKeysFirst, ConventionFor("ds4-scale-border-radius-class"))
	assert.Equal(t, ConventionMapKeysFirst, ConventionFor("ds4-border-radius-class"))
	assert.Equal(t, ConventionUnrecognized, ConventionFor("button-variant"))
	assert.Equal(t, "unrecognized", ConventionUnrecognized.String())
}

func TestParseMixinInvocations_Args(t *testing.T) {
	invs := ParseMixinInvocations(`
.x { @include ds4-scale-class("btn-", $color, $scale); }
@include style-class( 'foo' , $spacing );
@include button-variant(darken($primary, 10%), $border) { color: red; }
@include no-args;
`)

	require.Len(t, invs, 3)

	assert.Equal(t, "ds4-scale-class", invs[0].Name)
	assert.Equal(t, ConventionScaleClass, invs[0].Convention)
	assert.Equal(t, []string{"btn-", "$color", "$scale"}, invs[0].Args)

	assert.Equal(t, []string{"foo", "$spacing"}, invs[1].Args)

	// Nested commas inside a function call stay in one argument.
	assert.Equal(t, ConventionUnrecognized, invs[2].Convention)
	assert.Equal(t, []string{"darken($primary, 10%)", "$border"}, invs[2].Args)
}

func TestParseMixinInvocations_InterpolatedArg(t *testing.T) {
	text := `$spacing: (sm: 4px, lg: 16px) !default;
@include style-class("#{$ns}", $spacing);
`
	invs := ParseMixinInvocations(text)
	require.Len(t, invs, 1)
	assert.Equal(t, []string{"#{$ns}", "$spacing"}, invs[0].Args)
	assert.Equal(t, []string{"sm", "lg"}, invs[0].Expand(ParseVariableMaps(text)))
}

func TestParseMixinInvocations_MissingSemicolon(t *testing.T) {
	text := `$s: (pill: 1px) !default;
$c: (red: #f00) !default;
$k: (lg: 2) !default;
.a {
  @include style-class(x, $s)
}
@include ds4-scale-class("btn-", $c, $k);
`
	invs := ParseMixinInvocations(text)
	require.Len(t, invs, 2)
	assert.Equal(t, "style-class", invs[0].Name)
	assert.Equal(t, []string{"x", "$s"}, invs[0].Args)
	assert.Equal(t, "ds4-scale-class", invs[1].Name)
	assert.Equal(t, []string{"btn-", "$c", "$k"}, invs[1].Args)

	result, err := ExtractUnit(SourceUnit{ID: "a.scss", Text: text})
	require.NoError(t, err)
	assert.Equal(t, []string{"pill", "red", "lg", "btn-red-lg", "a"}, result.Names())
}

func TestParseMixinInvocations_QuotedParens(t *testing.T) {
	invs := ParseMixinInvocations(`@include style-class(":)", $m); @include broken($a, $b`)
	require.Len(t, invs, 1)
	assert.Equal(t, []string{":)", "$m"}, invs[0].Args)
}

func TestExpand_ScaleClassCrossProduct(t *testing.T) {
	table := ParseVariableMaps(colorScaleMaps)
	inv := MixinInvocation{
		Name:       "ds4-scale-class",
		Convention: ConventionScaleClass,
		Args:       []string{"btn-", "$color", "$scale"},
	}

	assert.Equal(t, []string{"btn-red-1", "btn-red-2", "btn-blue-1", "btn-blue-2"}, inv.Expand(table))
}

func TestExpand_MapKeysSecond(t *testing.T) {
	table := ParseVariableMaps(`$spacing: (sm: 4px, md: 8px) !default;`)
	inv := MixinInvocation{Convention: ConventionMapKeysSecond, Args: []string{"$foo", "$spacing"}}

	assert.Equal(t, []string{"sm", "md"}, inv.Expand(table))
}

func TestExpand_MapKeysFirst(t *testing.T) {
	table := ParseVariableMaps(`$radius: (rounded: 4px, pill: 999px) !default;`)
	inv := MixinInvocation{Convention: ConventionMapKeysFirst, Args: []string{"$radius"}}

	assert.Equal(t, []string{"rounded", "pill"}, inv.Expand(table))
}

func TestExpand_UnresolvedMapYieldsNothing(t *testing.T) {
	table := ParseVariableMaps(colorScaleMaps)

	tests := []MixinInvocation{
		{Convention: ConventionScaleClass, Args: []string{"btn-", "$missing", "$scale"}},
		{Convention: ConventionScaleClass, Args: []string{"btn-", "$color", "$missing"}},
		{Convention: ConventionMapKeysSecond, Args: []string{"x", "$missing"}},
		{Convention: ConventionMapKeysFirst, Args: []string{"$missing"}},
	}
	for _, inv := range tests {
		assert.Empty(t, inv.Expand(table), "%s %v", inv.Convention, inv.Args)
	}
}

func TestExpand_TooFewArgs(t *testing.T) {
	table := ParseVariableMaps(colorScaleMaps)

	assert.Empty(t, MixinInvocation{Convention: ConventionScaleClass, Args: []string{"btn-", "$color"}}.Expand(table))
	assert.Empty(t, MixinInvocation{Convention: ConventionMapKeysSecond, Args: []string{"$color"}}.Expand(table))
	assert.Empty(t, MixinInvocation{Convention: ConventionMapKeysFirst}.Expand(table))
}

func TestExpand_Unrecognized(t *testing.T) {
	table := ParseVariableMaps(colorScaleMaps)
	inv := MixinInvocation{Name: "theme", Convention: ConventionUnrecognized, Args: []string{"$color"}}
	assert.Nil(t, inv.Expand(table))
}
