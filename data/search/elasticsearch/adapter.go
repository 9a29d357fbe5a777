// Package elasticsearch provides the Elasticsearch search backend.
//
// It uses go-elasticsearch/v8 and registers itself when imported:
//
//	import _ "github.com/planetsclub/pagable/data/search/elasticsearch"
package elasticsearch

import (
	"context"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/planetsclub/pagable/data/search"
)

func init() {
	search.RegisterAdapterFactory(search.Elasticsearch, func(cfg *search.Config) (search.Adapter, error) {
		c, err := NewClient(cfg.Elasticsearch)
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
	return search.Elasticsearch
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
		return nil, fmt.Errorf("elasticsearch msearch: %w", err)
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
		return nil, fmt.Errorf("elasticsearch search: %w", err)
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
		return nil, fmt.Errorf("elasticsearch get: %w", err)
	}
	defer res.Body.Close()

	// A missing document answers 404 with found=false.
	if res.StatusCode == 404 {
		return search.DecodeGetResponse(res.Body)
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
		return nil, fmt.Errorf("elasticsearch mget: %w", err)
	}
	defer res.Body.Close()

	if err := checkResponse(res); err != nil {
		return nil, err
	}
	return search.DecodeMultiGetResponse(res.Body)
}

// Index implements search.Store
func (a *Adapter) Index(ctx context.Context, index, id string, doc any, refresh bool) (string, error) {
	res, err := a.client.IndexDocument(ctx, index, id, doc, refresh)
	if err != nil {
		return "", fmt.Errorf("elasticsearch index: %w", err)
	}
	defer res.Body.Close()

	if err := checkResponse(res); err != nil {
		return "", err
	}
	docID, _, err := search.DecodeWriteResponse(res.Body)
	return docID, err
}

// Update implements search.Store
func (a *Adapter) Update(ctx context.Context, index, id string, partial map[string]any, upsert, refresh bool) (*search.Hit, error) {
	res, err := a.client.UpdateDocument(ctx, index, id, partial, upsert, refresh)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch update: %w", err)
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
	res, err := a.client.DeleteDocument(ctx, index, id, refresh)
	if err != nil {
		return fmt.Errorf("elasticsearch delete: %w", err)
	}
	defer res.Body.Close()

	return checkResponse(res)
}

// Health implements search.Adapter
func (a *Adapter) Health(ctx context.Context) error {
	res, err := a.client.Info(ctx)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return checkResponse(res)
}

func checkResponse(res *esapi.Response) error {
	if !res.IsError() {
		return nil
	}
	return search.DecodeError(res.StatusCode, res.Body)
}
