package paging_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/planetsclub/pagable/data/search"
	"github.com/planetsclub/pagable/data/search/memory"
	"github.com/planetsclub/pagable/paging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const index = "posts"

var newestFirst = paging.SortSpec{paging.Desc("created_at"), paging.Desc("_id")}

func intp(n int) *int { return &n }

// seed indexes n posts; post-01 is the newest.
func seed(t *testing.T, n int) *memory.Engine {
	t.Helper()
	e := memory.New()
	for i := 1; i <= n; i++ {
		_, err := e.Index(context.Background(), index, postID(i), map[string]any{
			"title":      fmt.Sprintf("post %d", i),
			"created_at": int64(10_000 - i),
			"tags":       []string{"go"},
		}, true)
		require.NoError(t, err)
	}
	return e
}

func postID(i int) string { return fmt.Sprintf("post-%02d", i) }

func ids(p *paging.Page) []string {
	out := make([]string, len(p.Items))
	for i, d := range p.Items {
		out[i] = d.ID
	}
	return out
}

func postRange(from, to int) []string {
	var out []string
	for i := from; i <= to; i++ {
		out = append(out, postID(i))
	}
	return out
}

// spy records every MultiSearch batch.
type spy struct {
	next    search.Backend
	batches [][]*search.Request
	onCall  func()
}

func (s *spy) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	return s.next.Search(ctx, req)
}

func (s *spy) MultiSearch(ctx context.Context, reqs []*search.Request) ([]*search.Response, error) {
	s.batches = append(s.batches, reqs)
	resps, err := s.next.MultiSearch(ctx, reqs)
	if s.onCall != nil {
		s.onCall()
	}
	return resps, err
}

type failing struct{ err error }

func (f failing) Search(context.Context, *search.Request) (*search.Response, error) {
	return nil, f.err
}

func (f failing) MultiSearch(context.Context, []*search.Request) ([]*search.Response, error) {
	return nil, f.err
}

func TestPaginate_Scenario(t *testing.T) {
	ctx := context.Background()
	p := paging.New(seed(t, 25))

	page1, err := p.Paginate(ctx, paging.Query{Index: index, Sort: newestFirst, First: intp(10)})
	require.NoError(t, err)
	assert.Equal(t, postRange(1, 10), ids(page1))
	assert.False(t, page1.PageInfo.HasPreviousPage)
	assert.True(t, page1.PageInfo.HasNextPage)
	assert.Equal(t, int64(25), page1.TotalCount)
	assert.Equal(t, search.RelationEqual, page1.TotalCountRelation)

	page2, err := p.Paginate(ctx, paging.Query{Index: index, Sort: newestFirst, First: intp(10), After: page1.PageInfo.EndCursor})
	require.NoError(t, err)
	assert.Equal(t, postRange(11, 20), ids(page2))
	assert.True(t, page2.PageInfo.HasPreviousPage)
	assert.True(t, page2.PageInfo.HasNextPage)

	back, err := p.Paginate(ctx, paging.Query{Index: index, Sort: newestFirst, Last: intp(10), Before: page2.PageInfo.StartCursor})
	require.NoError(t, err)
	assert.Equal(t, postRange(1, 10), ids(back))
	assert.False(t, back.PageInfo.HasPreviousPage)
	assert.True(t, back.PageInfo.HasNextPage)
	assert.Equal(t, page1.PageInfo.StartCursor, back.PageInfo.StartCursor)
	assert.Equal(t, page1.PageInfo.EndCursor, back.PageInfo.EndCursor)

	page3, err := p.Paginate(ctx, paging.Query{Index: index, Sort: newestFirst, First: intp(10), After: page2.PageInfo.EndCursor})
	require.NoError(t, err)
	assert.Equal(t, postRange(21, 25), ids(page3))
	assert.True(t, page3.PageInfo.HasPreviousPage)
	assert.False(t, page3.PageInfo.HasNextPage)
}

func TestPaginate_AfterWithoutFirst(t *testing.T) {
	ctx := context.Background()
	p := paging.New(seed(t, 25))

	page1, err := p.Paginate(ctx, paging.Query{Index: index, Sort: newestFirst})
	require.NoError(t, err)
	require.Equal(t, postRange(1, 10), ids(page1))

	page2, err := p.Paginate(ctx, paging.Query{Index: index, Sort: newestFirst, After: page1.PageInfo.EndCursor})
	require.NoError(t, err)
	assert.Equal(t, postRange(11, 20), ids(page2))
	assert.True(t, page2.PageInfo.HasPreviousPage)
	assert.True(t, page2.PageInfo.HasNextPage)

	// an explicit zero first with a cursor is an empty window
	page2, err = p.Paginate(ctx, paging.Query{Index: index, Sort: newestFirst, First: intp(0), After: page1.PageInfo.EndCursor})
	require.NoError(t, err)
	assert.Empty(t, page2.Items)
	assert.True(t, page2.PageInfo.HasNextPage)

	// last without before still pages forward from after
	page2, err = p.Paginate(ctx, paging.Query{Index: index, Sort: newestFirst, Last: intp(3), After: page1.PageInfo.EndCursor})
	require.NoError(t, err)
	assert.Equal(t, postRange(11, 20), ids(page2))
	assert.True(t, page2.PageInfo.HasPreviousPage)
}

func TestPaginate_EmptyResult(t *testing.T) {
	p := paging.New(memory.New())

	page, err := p.Paginate(context.Background(), paging.Query{Index: index, Sort: newestFirst, First: intp(10)})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.PageInfo.StartCursor)
	assert.Empty(t, page.PageInfo.EndCursor)
	assert.False(t, page.PageInfo.HasNextPage)
	assert.False(t, page.PageInfo.HasPreviousPage)
	assert.Equal(t, int64(0), page.TotalCount)
}

func TestPaginate_ConcatenatesToFullSet(t *testing.T) {
	ctx := context.Background()
	p := paging.New(seed(t, 25))

	var all []string
	q := paging.Query{Index: index, Sort: newestFirst, First: intp(7)}
	for pages := 0; ; pages++ {
		require.Less(t, pages, 10, "walk did not terminate")
		page, err := p.Paginate(ctx, q)
		require.NoError(t, err)
		all = append(all, ids(page)...)
		if !page.PageInfo.HasNextPage {
			break
		}
		q.After = page.PageInfo.EndCursor
	}
	assert.Equal(t, postRange(1, 25), all)
}

func TestPaginate_BackwardWalk(t *testing.T) {
	ctx := context.Background()
	p := paging.New(seed(t, 25))

	// Anchor on the last document, then walk back to the start.
	last, err := p.Paginate(ctx, paging.Query{Index: index, Sort: newestFirst, First: intp(1), After: mustCursor(t, p, 24)})
	require.NoError(t, err)
	require.Equal(t, []string{postID(25)}, ids(last))

	collected := ids(last)
	q := paging.Query{Index: index, Sort: newestFirst, Last: intp(6), Before: last.PageInfo.StartCursor}
	for pages := 0; ; pages++ {
		require.Less(t, pages, 10, "walk did not terminate")
		page, err := p.Paginate(ctx, q)
		require.NoError(t, err)
		assert.True(t, page.PageInfo.HasNextPage)
		collected = append(ids(page), collected...)
		if !page.PageInfo.HasPreviousPage {
			break
		}
		q.Before = page.PageInfo.StartCursor
	}
	assert.Equal(t, postRange(1, 25), collected)
}

// mustCursor returns the end cursor of the first n documents.
func mustCursor(t *testing.T, p *paging.Paginator, n int) string {
	t.Helper()
	page, err := p.Paginate(context.Background(), paging.Query{Index: index, Sort: newestFirst, First: intp(n)})
	require.NoError(t, err)
	return page.PageInfo.EndCursor
}

func TestPaginate_ForwardThenBackwardRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := paging.New(seed(t, 25))

	prev, err := p.Paginate(ctx, paging.Query{Index: index, Sort: newestFirst, First: intp(5)})
	require.NoError(t, err)
	for k := 0; k < 3; k++ {
		pageK, err := p.Paginate(ctx, paging.Query{Index: index, Sort: newestFirst, First: intp(5), After: prev.PageInfo.EndCursor})
		require.NoError(t, err)
		next, err := p.Paginate(ctx, paging.Query{Index: index, Sort: newestFirst, First: intp(5), After: pageK.PageInfo.EndCursor})
		require.NoError(t, err)

		again, err := p.Paginate(ctx, paging.Query{Index: index, Sort: newestFirst, Last: intp(5), Before: next.PageInfo.StartCursor})
		require.NoError(t, err)
		assert.Equal(t, ids(pageK), ids(again))
		prev = pageK
	}
}

func TestPaginate_TiesBrokenByID(t *testing.T) {
	ctx := context.Background()
	e := memory.New()
	for i := 1; i <= 9; i++ {
		_, err := e.Index(ctx, index, postID(i), map[string]any{"created_at": int64(i % 3)}, true)
		require.NoError(t, err)
	}
	p := paging.New(e)

	var all []string
	q := paging.Query{Index: index, Sort: newestFirst, First: intp(2)}
	for {
		page, err := p.Paginate(ctx, q)
		require.NoError(t, err)
		all = append(all, ids(page)...)
		if !page.PageInfo.HasNextPage {
			break
		}
		q.After = page.PageInfo.EndCursor
	}
	assert.Equal(t, []string{
		"post-08", "post-05", "post-02", // created_at 2
		"post-07", "post-04", "post-01", // created_at 1
		"post-09", "post-06", "post-03", // created_at 0
	}, all)
}

func TestPaginate_InvalidCursorsFailOpen(t *testing.T) {
	ctx := context.Background()
	p := paging.New(seed(t, 25))

	wrongArity, err := paging.EncodeCursor([]any{"post-03"})
	require.NoError(t, err)

	for name, cursor := range map[string]string{
		"malformed":   "%%%",
		"wrong arity": wrongArity,
	} {
		t.Run(name, func(t *testing.T) {
			page, err := p.Paginate(ctx, paging.Query{Index: index, Sort: newestFirst, First: intp(10), After: cursor})
			require.NoError(t, err)
			assert.Equal(t, postRange(1, 10), ids(page))
			assert.True(t, page.PageInfo.HasNextPage)
			assert.False(t, page.PageInfo.HasPreviousPage)
		})
	}
}

func TestPaginate_SingleBatchedCall(t *testing.T) {
	ctx := context.Background()
	s := &spy{next: seed(t, 25)}
	p := paging.New(s, paging.WithTrackTotalHits(true))

	first, err := p.Paginate(ctx, paging.Query{Index: index, Sort: newestFirst, First: intp(10)})
	require.NoError(t, err)
	require.Len(t, s.batches, 1)
	require.Len(t, s.batches[0], 1, "no probe without an edge cursor")
	main := s.batches[0][0]
	assert.Equal(t, 11, main.Size)
	assert.Nil(t, main.SearchAfter)
	assert.Equal(t, true, main.TrackTotalHits)

	_, err = p.Paginate(ctx, paging.Query{Index: index, Sort: newestFirst, First: intp(10), After: first.PageInfo.EndCursor})
	require.NoError(t, err)
	require.Len(t, s.batches, 2)
	require.Len(t, s.batches[1], 2, "probe batched with the main query")
	main, probe := s.batches[1][0], s.batches[1][1]
	assert.Equal(t, []any{int64(10_000 - 10), postID(10)}, main.SearchAfter)
	assert.Equal(t, 1, probe.Size)
	assert.Equal(t, false, probe.Source)
	assert.Nil(t, probe.SearchAfter)
	assert.Nil(t, probe.TrackTotalHits)
	assert.Equal(t, main.Sort, probe.Sort)
}

func TestPaginate_BackwardReversesSort(t *testing.T) {
	ctx := context.Background()
	s := &spy{next: seed(t, 5)}
	p := paging.New(s)

	first, err := p.Paginate(ctx, paging.Query{Index: index, Sort: newestFirst, First: intp(2)})
	require.NoError(t, err)
	_, err = p.Paginate(ctx, paging.Query{Index: index, Sort: newestFirst, Last: intp(2), Before: first.PageInfo.EndCursor})
	require.NoError(t, err)

	assert.Equal(t, newestFirst, s.batches[0][0].Sort)
	assert.Equal(t, newestFirst.Reverse(), s.batches[1][0].Sort)
	assert.Equal(t, newestFirst.Reverse(), s.batches[1][1].Sort)
}

func TestPaginate_Windows(t *testing.T) {
	ctx := context.Background()
	e := seed(t, 25)

	cases := []struct {
		name  string
		opts  []paging.Option
		query paging.Query
		want  int
		next  bool
	}{
		{name: "default", query: paging.Query{}, want: 10, next: true},
		{name: "zero first uses default", query: paging.Query{First: intp(0)}, want: 10, next: true},
		{name: "negative clamps to zero", query: paging.Query{First: intp(-3)}, want: 0, next: true},
		{name: "last without before pages forward", query: paging.Query{Last: intp(3)}, want: 10, next: true},
		{name: "clamped to max", opts: []paging.Option{paging.WithWindow(4, 8)}, query: paging.Query{First: intp(100)}, want: 8, next: true},
		{name: "configured default", opts: []paging.Option{paging.WithWindow(4, 8)}, query: paging.Query{}, want: 4, next: true},
		{name: "whole set", query: paging.Query{First: intp(2000)}, want: 25, next: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := tc.query
			q.Index, q.Sort = index, newestFirst
			page, err := paging.New(e, tc.opts...).Paginate(ctx, q)
			require.NoError(t, err)
			assert.Len(t, page.Items, tc.want)
			assert.Equal(t, tc.next, page.PageInfo.HasNextPage)
		})
	}
}

func TestPaginate_DefaultSort(t *testing.T) {
	p := paging.New(seed(t, 3))
	page, err := p.Paginate(context.Background(), paging.Query{Index: index})
	require.NoError(t, err)
	assert.Equal(t, []string{postID(3), postID(2), postID(1)}, ids(page))
}

func TestPaginate_FilterSourceAndTotal(t *testing.T) {
	ctx := context.Background()
	p := paging.New(seed(t, 25))

	page, err := p.Paginate(ctx, paging.Query{
		Index:  index,
		Sort:   newestFirst,
		First:  intp(3),
		Filter: map[string]any{"range": map[string]any{"created_at": map[string]any{"gte": 10_000 - 12}}},
		Source: []string{"title"},
	})
	require.NoError(t, err)
	assert.Equal(t, postRange(1, 3), ids(page))
	assert.Equal(t, int64(12), page.TotalCount)
	assert.Equal(t, map[string]any{"title": "post 1"}, page.Items[0].Source)
}

func TestPaginate_BackendError(t *testing.T) {
	boom := errors.New("connection refused")
	page, err := paging.New(failing{err: boom}).Paginate(context.Background(), paging.Query{Index: index})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, page)
}

func TestPaginate_ItemErrorSurfaces(t *testing.T) {
	page, err := paging.New(seed(t, 3)).Paginate(context.Background(), paging.Query{
		Index:  index,
		Filter: map[string]any{"geo_shape": map[string]any{}},
	})
	require.Error(t, err)
	var re *search.ResponseError
	assert.ErrorAs(t, err, &re)
	assert.Equal(t, 400, re.Status)
	assert.Nil(t, page)
}

func TestPaginate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	page, err := paging.New(seed(t, 3)).Paginate(ctx, paging.Query{Index: index})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, page)
}

func TestPaginate_CancelledDuringCall(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := &spy{next: seed(t, 3), onCall: cancel}

	page, err := paging.New(s).Paginate(ctx, paging.Query{Index: index})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, page)
}

type recorder struct {
	direction paging.Direction
	items     int
	probed    bool
	err       error
	calls     int
}

func (r *recorder) ObservePage(direction paging.Direction, items int, probed bool, err error) {
	r.direction, r.items, r.probed, r.err = direction, items, probed, err
	r.calls++
}

func TestPaginate_Observer(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	p := paging.New(seed(t, 25), paging.WithObserver(rec))

	first, err := p.Paginate(ctx, paging.Query{Index: index, Sort: newestFirst, First: intp(4)})
	require.NoError(t, err)
	assert.Equal(t, recorder{direction: paging.Forward, items: 4, calls: 1}, *rec)

	_, err = p.Paginate(ctx, paging.Query{Index: index, Sort: newestFirst, Last: intp(4), Before: first.PageInfo.EndCursor})
	require.NoError(t, err)
	assert.Equal(t, paging.Backward, rec.direction)
	assert.Equal(t, 3, rec.items)
	assert.True(t, rec.probed)
	assert.Equal(t, 2, rec.calls)
}

func TestPaginate_DocumentsAreCopies(t *testing.T) {
	ctx := context.Background()
	p := paging.New(seed(t, 2))

	page, err := p.Paginate(ctx, paging.Query{Index: index, Sort: newestFirst})
	require.NoError(t, err)
	page.Items[0].Source["title"] = "changed"

	again, err := p.Paginate(ctx, paging.Query{Index: index, Sort: newestFirst})
	require.NoError(t, err)
	assert.Equal(t, "post 1", again.Items[0].Source["title"])
}
