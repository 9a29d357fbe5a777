package paging

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"

	"github.com/planetsclub/pagable/data/search"
	"github.com/planetsclub/pagable/logging/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Direction is the paging direction of a request
type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

// Query is a paginated search request.
//
// First/After page forward, Last/Before page backward. When neither pair is
// complete the request pages forward, from After when it is set, with First
// or the default window.
type Query struct {
	Index  string
	Filter map[string]any
	Sort   SortSpec

	First  *int
	After  string
	Last   *int
	Before string

	Highlight map[string]any
	Source    any
}

// PageObserver receives one notification per Paginate call
type PageObserver interface {
	ObservePage(direction Direction, items int, probed bool, err error)
}

type noopObserver struct{}

func (noopObserver) ObservePage(Direction, int, bool, error) {}

// Option configures a Paginator
type Option func(*Paginator)

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(p *Paginator) { p.logger = l }
}

// WithTracer sets the tracer used for spans
func WithTracer(t trace.Tracer) Option {
	return func(p *Paginator) { p.tracer = t }
}

// WithObserver sets the page observer
func WithObserver(o PageObserver) Option {
	return func(p *Paginator) { p.observer = o }
}

// WithTrackTotalHits forwards track_total_hits to every main query.
// It accepts a bool or an integer threshold.
func WithTrackTotalHits(v any) Option {
	return func(p *Paginator) { p.trackTotalHits = v }
}

// WithWindow overrides the default and maximum page sizes
func WithWindow(def, max int) Option {
	return func(p *Paginator) {
		if max > 0 {
			p.maxWindow = max
		}
		if def > 0 {
			p.defaultWindow = def
		}
	}
}

// Paginator runs cursor-paginated queries against a search backend.
// It is immutable after New and safe for concurrent use.
type Paginator struct {
	backend        search.Backend
	logger         *logger.Logger
	tracer         trace.Tracer
	observer       PageObserver
	trackTotalHits any
	defaultWindow  int
	maxWindow      int
}

// New creates a Paginator over backend
func New(backend search.Backend, opts ...Option) *Paginator {
	p := &Paginator{
		backend:       backend,
		logger:        logger.StdLogger(),
		tracer:        otel.Tracer("github.com/planetsclub/pagable/paging"),
		observer:      noopObserver{},
		defaultWindow: DefaultWindow,
		maxWindow:     MaxWindow,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.defaultWindow > p.maxWindow {
		p.defaultWindow = p.maxWindow
	}
	return p
}

// plan is the resolved shape of one request
type plan struct {
	direction Direction
	window    int
	sort      SortSpec
	// edge reports whether the cursor for the paging direction was supplied
	edge        bool
	searchAfter []any
}

func (p *Paginator) plan(ctx context.Context, q Query) plan {
	sort := q.Sort
	if len(sort) == 0 {
		sort = DefaultSort
	}

	pl := plan{direction: Forward, window: p.defaultWindow}
	var cursor string
	switch {
	case q.First != nil && q.After != "":
		pl.window, cursor = *q.First, q.After
	case q.Last != nil && q.Before != "":
		pl.direction, pl.window, cursor = Backward, *q.Last, q.Before
	default:
		if q.First != nil && *q.First != 0 {
			pl.window = *q.First
		}
		cursor = q.After
	}
	pl.window = normalizeWindow(pl.window, p.maxWindow)

	if pl.direction == Backward {
		sort = sort.Reverse()
	}
	pl.sort = sort
	pl.edge = cursor != ""

	if pl.edge {
		values, ok := DecodeCursor(cursor)
		switch {
		case !ok:
			p.logger.Debugf(ctx, "paging: ignoring malformed %s cursor", pl.direction)
		case len(values) != len(sort):
			p.logger.Debugf(ctx, "paging: ignoring cursor with %d keys for %d sort clauses", len(values), len(sort))
		default:
			pl.searchAfter = values
		}
	}
	return pl
}

func (p *Paginator) requests(q Query, pl plan) []*search.Request {
	main := &search.Request{
		Index:          q.Index,
		Query:          q.Filter,
		Sort:           pl.sort,
		Size:           pl.window + 1,
		SearchAfter:    pl.searchAfter,
		Highlight:      q.Highlight,
		Source:         q.Source,
		TrackTotalHits: p.trackTotalHits,
	}
	reqs := []*search.Request{main}
	if pl.edge {
		reqs = append(reqs, &search.Request{
			Index:  q.Index,
			Query:  q.Filter,
			Sort:   pl.sort,
			Size:   1,
			Source: false,
		})
	}
	return reqs
}

// Paginate runs one page of q with a single batched backend call.
func (p *Paginator) Paginate(ctx context.Context, q Query) (page *Page, err error) {
	pl := p.plan(ctx, q)

	ctx, span := p.tracer.Start(ctx, "paging.Paginate", trace.WithAttributes(
		attribute.String("paging.index", q.Index),
		attribute.String("paging.direction", string(pl.direction)),
		attribute.Int("paging.window", pl.window),
		attribute.Bool("paging.probe", pl.edge),
		attribute.Bool("paging.search_after", pl.searchAfter != nil),
	))
	defer func() {
		items := 0
		if page != nil {
			items = len(page.Items)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.Int("paging.items", items))
		span.End()
		p.observer.ObservePage(pl.direction, items, pl.edge, err)
	}()

	reqs := p.requests(q, pl)
	resps, err := p.backend.MultiSearch(ctx, reqs)
	if err != nil {
		return nil, fmt.Errorf("paging: multi search: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(resps) != len(reqs) {
		return nil, fmt.Errorf("paging: backend returned %d responses for %d requests", len(resps), len(reqs))
	}
	for i, r := range resps {
		if r == nil {
			return nil, fmt.Errorf("paging: empty response for request %d", i)
		}
	}

	page, err = p.assemble(pl, resps)
	if err != nil {
		return nil, err
	}
	p.logger.Debugf(ctx, "paging: %s page of %d on %s (next=%t previous=%t)",
		pl.direction, len(page.Items), q.Index, page.PageInfo.HasNextPage, page.PageInfo.HasPreviousPage)
	return page, nil
}

func (p *Paginator) assemble(pl plan, resps []*search.Response) (*Page, error) {
	main := resps[0]
	hits := main.Hits

	more := len(hits) > pl.window
	if more {
		hits = hits[:pl.window]
	}

	opposite := false
	if pl.edge {
		probe := resps[1].Hits
		opposite = len(probe) > 0 && len(hits) > 0 && !sameKey(probe[0].Sort, hits[0].Sort)
	}

	var info PageInfo
	if pl.direction == Forward {
		info.HasNextPage, info.HasPreviousPage = more, opposite
	} else {
		info.HasPreviousPage, info.HasNextPage = more, opposite
	}

	items := make([]Document, len(hits))
	for i, h := range hits {
		items[i] = newDocument(h)
	}
	if pl.direction == Backward {
		slices.Reverse(items)
		hits = slices.Clone(hits)
		slices.Reverse(hits)
	}

	if len(hits) > 0 {
		var err error
		if info.StartCursor, err = EncodeCursor(hits[0].Sort); err != nil {
			return nil, err
		}
		if info.EndCursor, err = EncodeCursor(hits[len(hits)-1].Sort); err != nil {
			return nil, err
		}
	}

	relation := main.Total.Relation
	if relation == "" {
		relation = search.RelationEqual
	}
	return &Page{
		Items:              items,
		PageInfo:           info,
		TotalCount:         main.Total.Value,
		TotalCountRelation: relation,
	}, nil
}

// sameKey compares two sort tuples, treating numbers of different Go types
// with equal value as equal.
func sameKey(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sameValue(a[i], b[i]) {
			return false
		}
	}
	return true
}

func sameValue(a, b any) bool {
	if ia, ok := a.(int64); ok {
		if ib, ok := b.(int64); ok {
			return ia == ib
		}
	}
	if ua, ok := a.(uint64); ok {
		if ub, ok := b.(uint64); ok {
			return ua == ub
		}
	}
	if fa, ok := number(a); ok {
		fb, ok := number(b)
		return ok && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// IsInvalidSort reports whether err came from a bad sort specification
func IsInvalidSort(err error) bool {
	return errors.Is(err, ErrInvalidSort)
}
