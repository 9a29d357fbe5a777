// Package opensearch provides the OpenSearch search backend.
//
// It uses opensearch-go/v4 and registers itself when imported:
//
//	import _ "github.com/planetsclub/pagable/data/search/opensearch"
package opensearch

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/planetsclub/pagable/data/search"
)

func init() {
	search.RegisterAdapterFactory(search.OpenSearch, func(cfg *search.Config) (search.Adapter, error) {
		c, err := NewClient(cfg.OpenSearch)
		if err != nil {
			return nil, err
		}
		return NewAdapter(c), nil
	})
}

// Adapter implements search.Adapter on top of Client
type Adapter struct {
	client *Client
}

// NewAdapter wraps c
func NewAdapter(c *Client) *Adapter {
	return &Adapter{client: c}
}

// Type implements search.Adapter
func (a *Adapter) Type() search.Engine {
	return search.OpenSearch
}

// Close implements search.Adapter
func (a *Adapter) Close() error {
	return nil
}

// MultiSearch implements search.Backend
func (a *Adapter) MultiSearch(ctx context.Context, reqs []*search.Request) ([]*search.Response, error) {
	body, err := search.MultiSearchBody(reqs)
	if err != nil {
		return nil, err
	}
	res, err := a.client.MultiSearch(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("opensearch msearch: %w", err)
	}
	defer res.Body.Close()

	if err := checkResponse(res); err != nil {
		return nil, err
	}
	return search.DecodeMultiSearchResponse(res.Body, len(reqs))
}

// Search implements search.Backend
func (a *Adapter) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	body, err := search.SearchBody(req)
	if err != nil {
		return nil, err
	}
	res, err := a.client.Search(ctx, req.Index, body)
	if err != nil {
		return nil, fmt.Errorf("opensearch search: %w", err)
	}
	defer res.Body.Close()

	if err := checkResponse(res); err != nil {
		return nil, err
	}
	return search.DecodeSearchResponse(res.Body)
}

// Get implements search.Store
func (a *Adapter) Get(ctx context.Context, index, id string) (*search.Hit, error) {
	res, err := a.client.GetDocument(ctx, index, id)
	if err != nil {
		return nil, fmt.Errorf("opensearch get: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, search.ErrNotFound
	}
	if err := checkResponse(res); err != nil {
		return nil, err
	}
	return search.DecodeGetResponse(res.Body)
}

// MultiGet implements search.Store
func (a *Adapter) MultiGet(ctx context.Context, index string, ids []string) ([]search.Hit, error) {
	res, err := a.client.MultiGetDocuments(ctx, index, ids)
	if err != nil {
		return nil, fmt.Errorf("opensearch mget: %w", err)
	}
	defer res.Body.Close()

	if err := checkResponse(res); err != nil {
		return nil, err
	}
	return search.DecodeMultiGetResponse(res.Body)
}

// Index implements search.Store
func (a *Adapter) Index(ctx context.Context, index, id string, doc any, refresh bool) (string, error) {
	return a.client.IndexDocument(ctx, index, id, doc, refresh)
}

// Update implements search.Store
func (a *Adapter) Update(ctx context.Context, index, id string, partial map[string]any, upsert, refresh bool) (*search.Hit, error) {
	res, err := a.client.UpdateDocument(ctx, index, id, partial, upsert, refresh)
	if err != nil {
		return nil, fmt.Errorf("opensearch update: %w", err)
	}
	defer res.Body.Close()

	if err := checkResponse(res); err != nil {
		return nil, err
	}
	docID, source, err := search.DecodeWriteResponse(res.Body)
	if err != nil {
		return nil, err
	}
	return &search.Hit{Index: index, ID: docID, Source: source}, nil
}

// Delete implements search.Store
func (a *Adapter) Delete(ctx context.Context, index, id string, refresh bool) error {
	return a.client.DeleteDocument(ctx, index, id, refresh)
}

// Health implements search.Adapter
func (a *Adapter) Health(ctx context.Context) error {
	status, err := a.client.Health(ctx)
	if err != nil {
		return err
	}
	if status == "red" {
		return errors.New("opensearch cluster status is red")
	}
	return nil
}

func checkResponse(res *http.Response) error {
	if res.StatusCode < 300 {
		return nil
	}
	return search.DecodeError(res.StatusCode, res.Body)
}
