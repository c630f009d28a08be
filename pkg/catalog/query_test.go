package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueryService(t *testing.T) *QueryService {
	t.Helper()
	cat := validCatalog()
	require.Empty(t, cat.Validate())
	return NewQueryService(cat, cat.BuildIndex())
}

func entryNames(entries []ClassEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

func TestQuery_GetClass(t *testing.T) {
	qs := newTestQueryService(t)

	e, ok := qs.GetClass("card-title")
	require.True(t, ok)
	assert.Equal(t, "selector", e.Origin)
	assert.Equal(t, "components/card.scss", e.Source)

	_, ok = qs.GetClass("Card-Title")
	assert.False(t, ok, "lookups are case sensitive")

	assert.True(t, qs.HasClass("red"))
	assert.False(t, qs.HasClass("green"))
	assert.Equal(t, 6, qs.Len())
}

func TestQuery_ListClasses(t *testing.T) {
	qs := newTestQueryService(t)

	tests := []struct {
		name   string
		prefix string
		origin string
		limit  int
		want   []string
	}{
		{"all", "", "", 0, []string{"red", "btn-red-1", "btn-red-2", "button-primary", "card", "card-title"}},
		{"prefix", "card", "", 0, []string{"card", "card-title"}},
		{"origin", "", "mixin", 0, []string{"btn-red-1", "btn-red-2"}},
		{"prefix and origin", "b", "selector", 0, []string{"button-primary"}},
		{"limit", "", "", 2, []string{"red", "btn-red-1"}},
		{"no match", "zzz", "", 0, []string{}},
		{"unknown origin", "", "guess", 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := qs.ListClasses(tt.prefix, tt.origin, tt.limit)
			assert.Equal(t, tt.want, entryNames(got))
		})
	}
}

func TestQuery_ClassesFromSource(t *testing.T) {
	qs := newTestQueryService(t)

	assert.Equal(t, []string{"card", "card-title"}, entryNames(qs.ClassesFromSource("components/card.scss")))
	assert.Empty(t, qs.ClassesFromSource("missing.scss"))
}

func TestQuery_SearchClasses(t *testing.T) {
	qs := newTestQueryService(t)

	results := qs.SearchClasses("Card", 0)
	require.Len(t, results, 2)
	assert.Equal(t, "card", results[0].Entry.Name)
	assert.Equal(t, "exact", results[0].MatchReason)
	assert.Equal(t, "card-title", results[1].Entry.Name)
	assert.Equal(t, "prefix", results[1].MatchReason)

	results = qs.SearchClasses("red", 0)
	require.Len(t, results, 3)
	assert.Equal(t, "exact", results[0].MatchReason)
	assert.Equal(t, "contains", results[1].MatchReason)
	assert.Equal(t, "btn-red-1", results[1].Entry.Name)

	results = qs.SearchClasses("buttons.scss", 0)
	require.Len(t, results, 4)
	for _, r := range results {
		assert.Equal(t, "source", r.MatchReason)
	}

	assert.Len(t, qs.SearchClasses("red", 1), 1)
	assert.Nil(t, qs.SearchClasses("   ", 0))
}

func TestQuery_Suggest(t *testing.T) {
	qs := newTestQueryService(t)

	assert.Equal(t, []string{"card"}, qs.Suggest("carx", 1))
	assert.Equal(t, []string{"card-title"}, qs.Suggest("card-titel", 3))
	assert.Equal(t, []string{"btn-red-1", "btn-red-2"}, qs.Suggest("btn-red-3", 2))
	assert.Empty(t, qs.Suggest("zzzzzzzz", 3))
	assert.Nil(t, qs.Suggest("", 3))
	assert.Nil(t, qs.Suggest("card", 0))
}
