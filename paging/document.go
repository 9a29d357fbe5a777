package paging

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/planetsclub/pagable/data/search"
)

// Document is a generic search hit returned on a page.
//
// Each Document owns its maps; mutating one never affects another page or
// the backend response it was built from.
type Document struct {
	ID        string              `json:"id"`
	Index     string              `json:"index,omitempty"`
	Source    map[string]any      `json:"source,omitempty"`
	Highlight map[string][]string `json:"highlight,omitempty"`
	InnerHits map[string]any      `json:"inner_hits,omitempty"`
}

func newDocument(h search.Hit) Document {
	d := Document{
		ID:        h.ID,
		Index:     h.Index,
		Source:    cloneMap(h.Source),
		InnerHits: cloneMap(h.InnerHits),
	}
	if h.Highlight != nil {
		d.Highlight = make(map[string][]string, len(h.Highlight))
		for k, v := range h.Highlight {
			d.Highlight[k] = slices.Clone(v)
		}
	}
	return d
}

// Bind decodes a document into a domain view.
//
// The source fields map onto T through its json tags; the document id is
// exposed as "id" unless the source already carries one.
func Bind[T any](d Document) (T, error) {
	var out T
	fields := maps.Clone(d.Source)
	if fields == nil {
		fields = make(map[string]any, 1)
	}
	if _, ok := fields["id"]; !ok {
		fields["id"] = d.ID
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return out, fmt.Errorf("bind document %s: %w", d.ID, err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("bind document %s: %w", d.ID, err)
	}
	return out, nil
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = cloneValue(x)
		}
		return out
	}
	return v
}
