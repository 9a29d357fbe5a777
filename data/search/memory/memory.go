// Package memory provides an in-process search backend.
//
// It understands the subset of the query DSL used by the paginator
// (match_all, term, terms, range and bool) and honours sort order, missing
// placement, search_after, size, _source filtering and total counts. It
// registers itself as the "memory" engine when imported.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/planetsclub/pagable/data/search"
)

func init() {
	search.RegisterAdapterFactory(search.Memory, func(cfg *search.Config) (search.Adapter, error) {
		e := New()
		if cfg.Memory != nil && cfg.Memory.SeedFile != "" {
			if err := e.LoadFile(cfg.Memory.SeedFile); err != nil {
				return nil, err
			}
		}
		return e, nil
	})
}

type document struct {
	id     string
	source map[string]any
}

// Engine is a concurrency-safe in-memory index set.
type Engine struct {
	mu      sync.RWMutex
	indices map[string]map[string]map[string]any
}

// New returns an empty engine
func New() *Engine {
	return &Engine{indices: make(map[string]map[string]map[string]any)}
}

// Type implements search.Adapter
func (e *Engine) Type() search.Engine {
	return search.Memory
}

// Close implements search.Adapter
func (e *Engine) Close() error {
	return nil
}

// Health implements search.Adapter
func (e *Engine) Health(context.Context) error {
	return nil
}

// LoadFile seeds the engine from a JSON object of index name to documents.
// Each document carries its id under "_id".
func (e *Engine) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("memory: read seed file: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var seed map[string][]map[string]any
	if err := dec.Decode(&seed); err != nil {
		return fmt.Errorf("memory: decode seed file: %w", err)
	}
	for index, docs := range seed {
		for _, doc := range docs {
			id, _ := doc["_id"].(string)
			delete(doc, "_id")
			e.put(index, id, search.NormalizeMap(doc))
		}
	}
	return nil
}

func (e *Engine) put(index, id string, source map[string]any) string {
	if id == "" {
		id = uuid.NewString()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	docs, ok := e.indices[index]
	if !ok {
		docs = make(map[string]map[string]any)
		e.indices[index] = docs
	}
	docs[id] = source
	return id
}

func (e *Engine) snapshot(index string) []document {
	e.mu.RLock()
	defer e.mu.RUnlock()
	docs := e.indices[index]
	out := make([]document, 0, len(docs))
	for id, src := range docs {
		out = append(out, document{id: id, source: src})
	}
	// ties under the requested sort resolve by id
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Search implements search.Backend
func (e *Engine) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.search(req)
}

// MultiSearch implements search.Backend
func (e *Engine) MultiSearch(ctx context.Context, reqs []*search.Request) ([]*search.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]*search.Response, len(reqs))
	for i, req := range reqs {
		resp, err := e.search(req)
		if err != nil {
			return nil, fmt.Errorf("msearch item %d: %w", i, err)
		}
		out[i] = resp
	}
	return out, nil
}

func (e *Engine) search(req *search.Request) (*search.Response, error) {
	match, err := compileQuery(req.Query)
	if err != nil {
		return nil, &search.ResponseError{Status: 400, Type: "parsing_exception", Reason: err.Error()}
	}
	clauses, err := parseSort(req.Sort)
	if err != nil {
		return nil, &search.ResponseError{Status: 400, Type: "parsing_exception", Reason: err.Error()}
	}
	if len(req.SearchAfter) > 0 && len(req.SearchAfter) != len(clauses) {
		return nil, &search.ResponseError{
			Status: 400,
			Type:   "illegal_argument_exception",
			Reason: fmt.Sprintf("search_after has %d value(s) but sort has %d", len(req.SearchAfter), len(clauses)),
		}
	}

	var matched []search.Hit
	for _, d := range e.snapshot(req.Index) {
		if !match(d) {
			continue
		}
		matched = append(matched, search.Hit{
			Index:  req.Index,
			ID:     d.id,
			Source: d.source,
			Sort:   sortKey(clauses, d),
		})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return compareKeys(clauses, matched[i].Sort, matched[j].Sort) < 0
	})

	resp := &search.Response{
		Total: search.Total{Value: int64(len(matched)), Relation: search.RelationEqual},
	}
	for _, h := range matched {
		if len(resp.Hits) >= req.Size {
			break
		}
		if len(req.SearchAfter) > 0 && compareKeys(clauses, h.Sort, req.SearchAfter) <= 0 {
			continue
		}
		h.Source = filterSource(h.Source, req.Source)
		resp.Hits = append(resp.Hits, h)
	}
	return resp, nil
}

// Get implements search.Store
func (e *Engine) Get(_ context.Context, index, id string) (*search.Hit, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	src, ok := e.indices[index][id]
	if !ok {
		return nil, search.ErrNotFound
	}
	return &search.Hit{Index: index, ID: id, Source: copyMap(src)}, nil
}

// MultiGet implements search.Store
func (e *Engine) MultiGet(_ context.Context, index string, ids []string) ([]search.Hit, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	hits := make([]search.Hit, 0, len(ids))
	for _, id := range ids {
		if src, ok := e.indices[index][id]; ok {
			hits = append(hits, search.Hit{Index: index, ID: id, Source: copyMap(src)})
		}
	}
	return hits, nil
}

// Index implements search.Store
func (e *Engine) Index(_ context.Context, index, id string, doc any, _ bool) (string, error) {
	source, err := toSource(doc)
	if err != nil {
		return "", err
	}
	return e.put(index, id, source), nil
}

// Update implements search.Store
func (e *Engine) Update(_ context.Context, index, id string, partial map[string]any, upsert, _ bool) (*search.Hit, error) {
	patch, err := toSource(partial)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	docs := e.indices[index]
	src, ok := docs[id]
	if !ok {
		if !upsert {
			return nil, fmt.Errorf("%w: %s", search.ErrNotFound, id)
		}
		if docs == nil {
			docs = make(map[string]map[string]any)
			e.indices[index] = docs
		}
		src = make(map[string]any)
	}
	merged := copyMap(src)
	for k, v := range patch {
		merged[k] = v
	}
	docs[id] = merged
	return &search.Hit{Index: index, ID: id, Source: copyMap(merged)}, nil
}

// Delete implements search.Store
func (e *Engine) Delete(_ context.Context, index, id string, _ bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.indices[index][id]; !ok {
		return fmt.Errorf("%w: %s", search.ErrNotFound, id)
	}
	delete(e.indices[index], id)
	return nil
}

func toSource(doc any) (map[string]any, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("memory: encode document: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("memory: document must be an object: %w", err)
	}
	return search.NormalizeMap(m), nil
}

func filterSource(src map[string]any, filter any) map[string]any {
	switch f := filter.(type) {
	case nil:
		return copyMap(src)
	case bool:
		if !f {
			return nil
		}
		return copyMap(src)
	case string:
		return pick(src, []string{f})
	case []string:
		return pick(src, f)
	case []any:
		fields := make([]string, 0, len(f))
		for _, v := range f {
			if s, ok := v.(string); ok {
				fields = append(fields, s)
			}
		}
		return pick(src, fields)
	}
	return copyMap(src)
}

func pick(src map[string]any, fields []string) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := lookup(src, f); ok {
			out[f] = copyValue(v)
		}
	}
	return out
}

// lookup resolves a dotted field path.
func lookup(src map[string]any, field string) (any, bool) {
	var cur any = src
	for _, part := range strings.Split(field, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = copyValue(x)
		}
		return out
	}
	return v
}
