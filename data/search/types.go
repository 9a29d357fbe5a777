package search

import (
	"context"
	"time"
)

// Engine represents search engine type
type Engine string

const (
	Elasticsearch Engine = "elasticsearch"
	OpenSearch    Engine = "opensearch"
	Memory        Engine = "memory"
)

// Relation tells whether a total hit count is exact or a lower bound
type Relation string

const (
	RelationEqual              Relation = "eq"
	RelationGreaterThanOrEqual Relation = "gte"
)

// Request is a single search against one index.
//
// Sort must marshal to the backend sort array syntax. SearchAfter carries the
// sort-key tuple of the hit to continue after.
type Request struct {
	Index          string         `json:"-"`
	Query          map[string]any `json:"query,omitempty"`
	Sort           any            `json:"sort,omitempty"`
	Size           int            `json:"size"`
	SearchAfter    []any          `json:"search_after,omitempty"`
	Source         any            `json:"_source,omitempty"`
	Highlight      map[string]any `json:"highlight,omitempty"`
	TrackTotalHits any            `json:"track_total_hits,omitempty"`
}

// Total is the hit count reported by the backend
type Total struct {
	Value    int64    `json:"value"`
	Relation Relation `json:"relation"`
}

// Response represents unified search response
type Response struct {
	Took     int64         `json:"took"`
	Total    Total         `json:"total"`
	Hits     []Hit         `json:"hits"`
	Duration time.Duration `json:"duration"`
	Engine   Engine        `json:"engine"`
}

// Hit represents search result item
type Hit struct {
	Index     string              `json:"index"`
	ID        string              `json:"id"`
	Score     *float64            `json:"score,omitempty"`
	Source    map[string]any      `json:"source,omitempty"`
	Sort      []any               `json:"sort,omitempty"`
	Highlight map[string][]string `json:"highlight,omitempty"`
	InnerHits map[string]any      `json:"inner_hits,omitempty"`
}

// Backend is the query contract consumed by the paginator.
type Backend interface {
	Search(ctx context.Context, req *Request) (*Response, error)
	// MultiSearch issues all requests in one round trip; responses keep
	// request order.
	MultiSearch(ctx context.Context, reqs []*Request) ([]*Response, error)
}

// Store holds single document operations.
type Store interface {
	Get(ctx context.Context, index, id string) (*Hit, error)
	MultiGet(ctx context.Context, index string, ids []string) ([]Hit, error)
	Index(ctx context.Context, index, id string, doc any, refresh bool) (string, error)
	Update(ctx context.Context, index, id string, partial map[string]any, upsert, refresh bool) (*Hit, error)
	Delete(ctx context.Context, index, id string, refresh bool) error
}

// Adapter interface for search engine implementations
type Adapter interface {
	Backend
	Store
	Health(ctx context.Context) error
	Close() error
	Type() Engine
}

// Collector interface for metrics
type Collector interface {
	SearchQuery(engine string, err error)
	SearchIndex(engine, operation string)
}

// NoOpCollector implementation
type NoOpCollector struct{}

func (NoOpCollector) SearchQuery(string, error)  {}
func (NoOpCollector) SearchIndex(string, string) {}
