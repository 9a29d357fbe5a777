package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/planetsclub/pagable/data/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T) *Engine {
	t.Helper()
	e := New()
	docs := map[string]map[string]any{
		"a": {"rank": 3, "tag": "go", "title": "Learning Go", "tags": []string{"x", "y"}},
		"b": {"rank": 1, "tag": "rust", "title": "Rust in action"},
		"c": {"rank": 2, "tag": "go", "title": "Concurrency in Go", "meta": map[string]any{"lang": "en"}},
		"d": {"tag": "zig", "title": "Zig notes"},
	}
	for id, src := range docs {
		_, err := e.Index(context.Background(), "books", id, src, true)
		require.NoError(t, err)
	}
	return e
}

func hitIDs(resp *search.Response) []string {
	out := make([]string, len(resp.Hits))
	for i, h := range resp.Hits {
		out[i] = h.ID
	}
	return out
}

func run(t *testing.T, e *Engine, req *search.Request) *search.Response {
	t.Helper()
	if req.Index == "" {
		req.Index = "books"
	}
	if req.Size == 0 {
		req.Size = 10
	}
	resp, err := e.Search(context.Background(), req)
	require.NoError(t, err)
	return resp
}

func TestSearch_Queries(t *testing.T) {
	e := seeded(t)
	byID := []any{"_id"}

	cases := []struct {
		name  string
		query map[string]any
		want  []string
	}{
		{"match_all", map[string]any{"match_all": map[string]any{}}, []string{"a", "b", "c", "d"}},
		{"term", map[string]any{"term": map[string]any{"tag": "go"}}, []string{"a", "c"}},
		{"term long form", map[string]any{"term": map[string]any{"tag": map[string]any{"value": "rust"}}}, []string{"b"}},
		{"terms", map[string]any{"terms": map[string]any{"tag": []any{"rust", "zig"}}}, []string{"b", "d"}},
		{"range", map[string]any{"range": map[string]any{"rank": map[string]any{"gt": 1, "lte": 3}}}, []string{"a", "c"}},
		{"exists", map[string]any{"exists": map[string]any{"field": "meta.lang"}}, []string{"c"}},
		{"ids", map[string]any{"ids": map[string]any{"values": []string{"d", "b"}}}, []string{"b", "d"}},
		{"match", map[string]any{"match": map[string]any{"title": "go notes"}}, []string{"a", "c", "d"}},
		{"prefix", map[string]any{"prefix": map[string]any{"title": "Rust"}}, []string{"b"}},
		{"array field", map[string]any{"term": map[string]any{"tags": "y"}}, []string{"a"}},
		{"bool", map[string]any{"bool": map[string]any{
			"filter":   []any{map[string]any{"term": map[string]any{"tag": "go"}}},
			"must_not": map[string]any{"range": map[string]any{"rank": map[string]any{"gte": 3}}},
		}}, []string{"c"}},
		{"bool should", map[string]any{"bool": map[string]any{
			"should": []any{
				map[string]any{"term": map[string]any{"tag": "rust"}},
				map[string]any{"term": map[string]any{"tag": "zig"}},
			},
		}}, []string{"b", "d"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := run(t, e, &search.Request{Query: tc.query, Sort: byID})
			assert.Equal(t, tc.want, hitIDs(resp))
			assert.Equal(t, int64(len(tc.want)), resp.Total.Value)
		})
	}
}

func TestSearch_UnsupportedQuery(t *testing.T) {
	e := seeded(t)
	_, err := e.Search(context.Background(), &search.Request{Index: "books", Size: 1, Query: map[string]any{"fuzzy": map[string]any{}}})
	var re *search.ResponseError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 400, re.Status)
}

func TestSearch_SortAndMissing(t *testing.T) {
	e := seeded(t)

	resp := run(t, e, &search.Request{Sort: []any{map[string]any{"rank": "desc"}, "_id"}})
	assert.Equal(t, []string{"a", "c", "b", "d"}, hitIDs(resp))
	assert.Equal(t, []any{int64(3), "a"}, resp.Hits[0].Sort)
	assert.Equal(t, []any{nil, "d"}, resp.Hits[3].Sort)

	resp = run(t, e, &search.Request{Sort: []any{map[string]any{"rank": map[string]any{"order": "asc", "missing": "_first"}}}})
	assert.Equal(t, []string{"d", "b", "c", "a"}, hitIDs(resp))
}

func TestSearch_SearchAfter(t *testing.T) {
	e := seeded(t)
	sort := []any{map[string]any{"rank": "asc"}, map[string]any{"_id": "asc"}}

	resp := run(t, e, &search.Request{Sort: sort, Size: 2})
	require.Equal(t, []string{"b", "c"}, hitIDs(resp))

	resp = run(t, e, &search.Request{Sort: sort, Size: 2, SearchAfter: resp.Hits[1].Sort})
	assert.Equal(t, []string{"a", "d"}, hitIDs(resp))
	assert.Equal(t, int64(4), resp.Total.Value)

	_, err := e.Search(context.Background(), &search.Request{Index: "books", Size: 2, Sort: sort, SearchAfter: []any{1}})
	var re *search.ResponseError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "illegal_argument_exception", re.Type)
}

func TestSearch_SourceFiltering(t *testing.T) {
	e := seeded(t)

	resp := run(t, e, &search.Request{Query: map[string]any{"ids": map[string]any{"values": []any{"c"}}}, Source: false})
	assert.Nil(t, resp.Hits[0].Source)

	resp = run(t, e, &search.Request{Query: map[string]any{"ids": map[string]any{"values": []any{"c"}}}, Source: []string{"tag", "meta.lang"}})
	assert.Equal(t, map[string]any{"tag": "go", "meta.lang": "en"}, resp.Hits[0].Source)

	resp.Hits[0].Source["tag"] = "changed"
	hit, err := e.Get(context.Background(), "books", "c")
	require.NoError(t, err)
	assert.Equal(t, "go", hit.Source["tag"])
}

func TestMultiSearch(t *testing.T) {
	e := seeded(t)
	resps, err := e.MultiSearch(context.Background(), []*search.Request{
		{Index: "books", Size: 1, Sort: []any{"_id"}},
		{Index: "missing", Size: 1},
	})
	require.NoError(t, err)
	require.Len(t, resps, 2)
	assert.Equal(t, []string{"a"}, hitIDs(resps[0]))
	assert.Empty(t, resps[1].Hits)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.MultiSearch(ctx, []*search.Request{{Index: "books"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	e := New()

	id, err := e.Index(ctx, "books", "", map[string]any{"title": "Untitled"}, true)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	hit, err := e.Update(ctx, "books", id, map[string]any{"rank": 5}, false, true)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "Untitled", "rank": int64(5)}, hit.Source)

	_, err = e.Update(ctx, "books", "nope", map[string]any{"rank": 1}, false, true)
	assert.True(t, errors.Is(err, search.ErrNotFound))

	hit, err = e.Update(ctx, "books", "nope", map[string]any{"rank": 1}, true, true)
	require.NoError(t, err)
	assert.Equal(t, "nope", hit.ID)

	hits, err := e.MultiGet(ctx, "books", []string{"nope", "ghost", id})
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	require.NoError(t, e.Delete(ctx, "books", "nope", true))
	assert.ErrorIs(t, e.Delete(ctx, "books", "nope", true), search.ErrNotFound)
	_, err = e.Get(ctx, "books", "nope")
	assert.ErrorIs(t, err, search.ErrNotFound)

	_, err = e.Index(ctx, "books", "bad", []string{"not", "an", "object"}, true)
	assert.Error(t, err)
}

func TestCompareValues(t *testing.T) {
	assert.Equal(t, 0, compareValues(int64(2), 2.0))
	assert.Equal(t, -1, compareValues(int64(9007199254740992), int64(9007199254740993)))
	assert.Equal(t, 1, compareValues("b", "a"))
	assert.Equal(t, -1, compareValues(false, true))
	assert.Equal(t, -1, compareValues(true, 1), "kinds order before values")
	assert.Equal(t, -1, compareValues(uint64(18446744073709551614), uint64(18446744073709551615)))
}
