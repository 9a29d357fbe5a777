package paging

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSortSpec_Canonical(t *testing.T) {
	spec, err := ParseSortSpec([]any{
		"created_at",
		"_score",
		map[string]any{"_id": "desc"},
		map[string]any{"price": map[string]any{"order": "desc", "missing": "_first", "unmapped_type": "long"}},
	})
	require.NoError(t, err)

	assert.Equal(t, SortSpec{
		{Field: "created_at", Order: Ascending, Missing: MissingLast},
		{Field: "_score", Order: Descending, Missing: MissingLast},
		{Field: "_id", Order: Descending, Missing: MissingLast},
		{Field: "price", Order: Descending, Missing: MissingFirst, Options: map[string]any{"unmapped_type": "long"}},
	}, spec)
}

func TestParseSortSpec_Invalid(t *testing.T) {
	cases := map[string]any{
		"two fields":     map[string]any{"a": "asc", "b": "desc"},
		"no field":       map[string]any{},
		"number":         42,
		"bad order":      map[string]any{"a": "sideways"},
		"bad missing":    map[string]any{"a": map[string]any{"missing": "_middle"}},
		"empty field":    "",
		"bad body":       map[string]any{"a": 1},
		"order not text": map[string]any{"a": map[string]any{"order": 1}},
	}
	for name, clause := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSortSpec([]any{"ok", clause})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSort)
			assert.True(t, IsInvalidSort(err))
		})
	}
}

func TestSortSpec_Reverse(t *testing.T) {
	spec := SortSpec{
		Field("created_at"),
		Field("_score"),
		{Field: "price", Order: Descending, Missing: MissingFirst, Options: map[string]any{"mode": "min"}},
	}

	rev := spec.Reverse()
	assert.Equal(t, SortClause{Field: "created_at", Order: Descending, Missing: MissingFirst}, rev[0])
	assert.Equal(t, Ascending, rev[1].Order)
	assert.Equal(t, SortClause{Field: "price", Order: Ascending, Missing: MissingLast, Options: map[string]any{"mode": "min"}}, rev[2])

	assert.Equal(t, spec, rev.Reverse())

	rev[2].Options["mode"] = "max"
	assert.Equal(t, "min", spec[2].Options["mode"], "reversal must not share options")
}

func TestSortSpec_MarshalJSON(t *testing.T) {
	spec := SortSpec{Field("created_at"), Field("_score")}.Reverse()
	b, err := json.Marshal(spec)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"created_at": {"order": "desc", "missing": "_first"}},
		{"_score": {"order": "asc"}}
	]`, string(b))
}

func TestSortSpec_UnmarshalJSON(t *testing.T) {
	var spec SortSpec
	require.NoError(t, json.Unmarshal([]byte(`["title", {"_id": "desc"}]`), &spec))
	assert.Equal(t, []string{"title", "_id"}, spec.Fields())
	assert.Equal(t, Descending, spec[1].Order)

	err := json.Unmarshal([]byte(`{"title": "asc"}`), &spec)
	assert.ErrorIs(t, err, ErrInvalidSort)
}
