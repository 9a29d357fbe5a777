package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrNoEngineAvailable = errors.New("no search engine available")
	ErrEngineNotFound    = errors.New("search engine not found")
)

var tracer = otel.Tracer("github.com/planetsclub/pagable/data/search")

// Client routes requests to the active engine, prefixing index names and
// collecting metrics. It is safe for concurrent use.
type Client struct {
	adapters    map[Engine]Adapter
	collector   Collector
	engine      Engine
	mu          sync.RWMutex
	indexPrefix string
	config      *Config
}

// NewClient creates a new search client with provided adapters
func NewClient(collector Collector, adapters ...Adapter) *Client {
	return NewClientWithConfig(collector, nil, adapters...)
}

// NewClientWithConfig creates a new search client with configuration
func NewClientWithConfig(collector Collector, cfg *Config, adapters ...Adapter) *Client {
	if cfg == nil {
		cfg = &Config{DefaultEngine: string(Elasticsearch)}
	}
	if collector == nil {
		collector = NoOpCollector{}
	}

	adapterMap := make(map[Engine]Adapter, len(adapters))
	for _, a := range adapters {
		adapterMap[a.Type()] = a
	}

	c := &Client{
		adapters:    adapterMap,
		collector:   collector,
		indexPrefix: cfg.IndexPrefix,
		config:      cfg,
	}
	c.setEngine()
	return c
}

// Open builds adapters for every configured engine with a registered factory.
// The returned cleanup closes them.
func Open(cfg *Config, collector Collector) (*Client, func(), error) {
	if cfg == nil {
		return nil, nil, ErrNoEngineAvailable
	}

	var adapters []Adapter
	cleanup := func() {
		for _, a := range adapters {
			_ = a.Close()
		}
	}

	for _, engine := range GetRegisteredEngines() {
		if !configured(cfg, engine) {
			continue
		}
		factory, err := GetAdapterFactory(engine)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		a, err := factory(cfg)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("open %s: %w", engine, err)
		}
		adapters = append(adapters, a)
	}
	if len(adapters) == 0 {
		return nil, nil, ErrNoEngineAvailable
	}

	return NewClientWithConfig(collector, cfg, adapters...), cleanup, nil
}

// GetIndexPrefix returns the current index prefix
func (c *Client) GetIndexPrefix() string {
	return c.indexPrefix
}

// GetEngine returns the active engine
func (c *Client) GetEngine() Engine {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.engine
}

// BuildIndexName builds full index name with prefix
func (c *Client) BuildIndexName(index string) string {
	if c.indexPrefix == "" {
		return index
	}
	return fmt.Sprintf("%s-%s", c.indexPrefix, index)
}

func (c *Client) setEngine() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Use configured default engine if specified and available
	if c.config.DefaultEngine != "" {
		if adapter, ok := c.adapters[Engine(c.config.DefaultEngine)]; ok && adapter.Health(ctx) == nil {
			c.engine = adapter.Type()
			return
		}
	}

	// Priority: OpenSearch > Elasticsearch > Memory
	for _, eng := range []Engine{OpenSearch, Elasticsearch, Memory} {
		if adapter, ok := c.adapters[eng]; ok && adapter.Health(ctx) == nil {
			c.engine = eng
			return
		}
	}
}

func (c *Client) getAdapter() (Adapter, error) {
	c.mu.RLock()
	engine := c.engine
	c.mu.RUnlock()

	if engine == "" {
		c.setEngine()
		if engine = c.GetEngine(); engine == "" {
			return nil, ErrNoEngineAvailable
		}
	}
	if adapter, ok := c.adapters[engine]; ok {
		return adapter, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrEngineNotFound, engine)
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.Timeout > 0 {
		return context.WithTimeout(ctx, c.config.Timeout)
	}
	return ctx, func() {}
}

func (c *Client) prefixed(req *Request) *Request {
	r := *req
	r.Index = c.BuildIndexName(req.Index)
	return &r
}

// Search runs a single query on the active engine.
func (c *Client) Search(ctx context.Context, req *Request) (*Response, error) {
	adapter, err := c.getAdapter()
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "search.Search", trace.WithAttributes(
		attribute.String("search.engine", string(adapter.Type())),
		attribute.String("search.index", req.Index),
	))
	defer span.End()
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	resp, err := adapter.Search(ctx, c.prefixed(req))
	c.collector.SearchQuery(string(adapter.Type()), err)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	resp.Duration = time.Since(start)
	resp.Engine = adapter.Type()
	return resp, nil
}

// MultiSearch runs all requests in a single round trip on the active engine.
func (c *Client) MultiSearch(ctx context.Context, reqs []*Request) ([]*Response, error) {
	adapter, err := c.getAdapter()
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "search.MultiSearch", trace.WithAttributes(
		attribute.String("search.engine", string(adapter.Type())),
		attribute.Int("search.requests", len(reqs)),
	))
	defer span.End()
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	prefixed := make([]*Request, len(reqs))
	for i, r := range reqs {
		prefixed[i] = c.prefixed(r)
	}

	start := time.Now()
	resps, err := adapter.MultiSearch(ctx, prefixed)
	c.collector.SearchQuery(string(adapter.Type()), err)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	duration := time.Since(start)
	for _, r := range resps {
		r.Duration = duration
		r.Engine = adapter.Type()
	}
	return resps, nil
}

// Get fetches a document by id
func (c *Client) Get(ctx context.Context, index, id string) (*Hit, error) {
	adapter, err := c.getAdapter()
	if err != nil {
		return nil, err
	}
	hit, err := adapter.Get(ctx, c.BuildIndexName(index), id)
	c.collector.SearchQuery(string(adapter.Type()), ignoreNotFound(err))
	return hit, err
}

// MultiGet fetches the documents that exist among ids
func (c *Client) MultiGet(ctx context.Context, index string, ids []string) ([]Hit, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	adapter, err := c.getAdapter()
	if err != nil {
		return nil, err
	}
	hits, err := adapter.MultiGet(ctx, c.BuildIndexName(index), ids)
	c.collector.SearchQuery(string(adapter.Type()), err)
	return hits, err
}

// Index stores a document and returns its id
func (c *Client) Index(ctx context.Context, index, id string, doc any, refresh bool) (string, error) {
	adapter, err := c.getAdapter()
	if err != nil {
		return "", err
	}
	docID, err := adapter.Index(ctx, c.BuildIndexName(index), id, doc, refresh)
	c.collectWrite(adapter.Type(), "index", err)
	return docID, err
}

// Update applies a partial document and returns the stored source
func (c *Client) Update(ctx context.Context, index, id string, partial map[string]any, upsert, refresh bool) (*Hit, error) {
	adapter, err := c.getAdapter()
	if err != nil {
		return nil, err
	}
	hit, err := adapter.Update(ctx, c.BuildIndexName(index), id, partial, upsert, refresh)
	c.collectWrite(adapter.Type(), "update", err)
	return hit, err
}

// Delete removes a document
func (c *Client) Delete(ctx context.Context, index, id string, refresh bool) error {
	adapter, err := c.getAdapter()
	if err != nil {
		return err
	}
	err = adapter.Delete(ctx, c.BuildIndexName(index), id, refresh)
	c.collectWrite(adapter.Type(), "delete", err)
	return err
}

// Engines returns the engines with an open adapter, sorted
func (c *Client) Engines() []Engine {
	engines := make([]Engine, 0, len(c.adapters))
	for eng := range c.adapters {
		engines = append(engines, eng)
	}
	sort.Slice(engines, func(i, j int) bool { return engines[i] < engines[j] })
	return engines
}

// CheckEngine pings a single engine
func (c *Client) CheckEngine(ctx context.Context, engine Engine) error {
	adapter, ok := c.adapters[engine]
	if !ok {
		return fmt.Errorf("%w: %s", ErrEngineNotFound, engine)
	}
	return adapter.Health(ctx)
}

// Health reports the health of every adapter
func (c *Client) Health(ctx context.Context) map[Engine]error {
	results := make(map[Engine]error, len(c.adapters))
	for eng, adapter := range c.adapters {
		results[eng] = adapter.Health(ctx)
	}
	return results
}

func (c *Client) collectWrite(engine Engine, operation string, err error) {
	c.collector.SearchQuery(string(engine), err)
	if err == nil {
		c.collector.SearchIndex(string(engine), operation)
	}
}

func ignoreNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
