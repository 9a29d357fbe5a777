package paging

import (
	"fmt"

	"github.com/planetsclub/pagable/data/search"
)

// Window bounds
const (
	DefaultWindow = 10
	MaxWindow     = 2000
)

// PageInfo holds the navigation state of a page
type PageInfo struct {
	HasNextPage     bool   `json:"has_next_page"`
	HasPreviousPage bool   `json:"has_previous_page"`
	StartCursor     string `json:"start_cursor,omitempty"`
	EndCursor       string `json:"end_cursor,omitempty"`
}

// Page is the result of one paginated query. Items are always in forward
// order of the requested sort.
type Page struct {
	Items              []Document      `json:"items"`
	PageInfo           PageInfo        `json:"page_info"`
	TotalCount         int64           `json:"total_count"`
	TotalCountRelation search.Relation `json:"total_count_relation"`
}

// Connection is a typed view of a Page
type Connection[T any] struct {
	Items              []T             `json:"items"`
	PageInfo           PageInfo        `json:"page_info"`
	TotalCount         int64           `json:"total_count"`
	TotalCountRelation search.Relation `json:"total_count_relation"`
}

// ViewFunc maps a generic document to a domain view
type ViewFunc[T any] func(Document) (T, error)

// NewConnection renders a page through view. A nil view uses Bind.
func NewConnection[T any](p *Page, view ViewFunc[T]) (*Connection[T], error) {
	if view == nil {
		view = Bind[T]
	}
	items := make([]T, 0, len(p.Items))
	for i, d := range p.Items {
		item, err := view(d)
		if err != nil {
			return nil, fmt.Errorf("page item %d: %w", i, err)
		}
		items = append(items, item)
	}
	return &Connection[T]{
		Items:              items,
		PageInfo:           p.PageInfo,
		TotalCount:         p.TotalCount,
		TotalCountRelation: p.TotalCountRelation,
	}, nil
}

// normalizeWindow clamps a requested window into [0, max]
func normalizeWindow(window, max int) int {
	if window < 0 {
		return 0
	}
	if window > max {
		return max
	}
	return window
}
