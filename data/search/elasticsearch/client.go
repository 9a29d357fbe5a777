package elasticsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/planetsclub/pagable/data/search"
)

var errNilClient = errors.New("elasticsearch client is nil")

// Client Elasticsearch client
type Client struct {
	client *elasticsearch.Client
}

// NewClient new Elasticsearch client
func NewClient(cfg *search.ElasticsearchConfig) (*Client, error) {
	if cfg == nil || (len(cfg.Addresses) == 0 && cfg.CloudID == "") {
		return nil, errors.New("elasticsearch: addresses are empty")
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		APIKey:    cfg.APIKey,
		CloudID:   cfg.CloudID,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client creation error: %w", err)
	}

	return &Client{client: es}, nil
}

// GetClient get Elasticsearch client
func (c *Client) GetClient() *elasticsearch.Client {
	return c.client
}

// MultiSearch sends an NDJSON payload to _msearch
func (c *Client) MultiSearch(ctx context.Context, body io.Reader) (*esapi.Response, error) {
	if c == nil || c.client == nil {
		return nil, errNilClient
	}
	return c.client.Msearch(body, c.client.Msearch.WithContext(ctx))
}

// Search search from Elasticsearch
func (c *Client) Search(ctx context.Context, indexName string, body io.Reader) (*esapi.Response, error) {
	if c == nil || c.client == nil {
		return nil, errNilClient
	}
	return c.client.Search(
		c.client.Search.WithContext(ctx),
		c.client.Search.WithIndex(indexName),
		c.client.Search.WithBody(body),
	)
}

// GetDocument fetches one document
func (c *Client) GetDocument(ctx context.Context, indexName, documentID string) (*esapi.Response, error) {
	if c == nil || c.client == nil {
		return nil, errNilClient
	}
	return c.client.Get(indexName, documentID, c.client.Get.WithContext(ctx))
}

// MultiGetDocuments fetches documents by ids
func (c *Client) MultiGetDocuments(ctx context.Context, indexName string, ids []string) (*esapi.Response, error) {
	if c == nil || c.client == nil {
		return nil, errNilClient
	}
	body, err := json.Marshal(map[string]any{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("error encoding ids: %w", err)
	}
	return c.client.Mget(
		strings.NewReader(string(body)),
		c.client.Mget.WithContext(ctx),
		c.client.Mget.WithIndex(indexName),
	)
}

// IndexDocument index document to Elasticsearch
func (c *Client) IndexDocument(ctx context.Context, indexName, documentID string, document any, refresh bool) (*esapi.Response, error) {
	if c == nil || c.client == nil {
		return nil, errNilClient
	}

	var b strings.Builder
	if err := json.NewEncoder(&b).Encode(document); err != nil {
		return nil, fmt.Errorf("error encoding document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      indexName,
		DocumentID: documentID,
		Body:       strings.NewReader(b.String()),
		Refresh:    refreshParam(refresh),
	}
	return req.Do(ctx, c.client)
}

// UpdateDocument applies a partial update and asks for the resulting source
func (c *Client) UpdateDocument(ctx context.Context, indexName, documentID string, partial map[string]any, upsert, refresh bool) (*esapi.Response, error) {
	if c == nil || c.client == nil {
		return nil, errNilClient
	}

	body := map[string]any{"doc": partial}
	if upsert {
		body["doc_as_upsert"] = true
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error encoding update: %w", err)
	}

	req := esapi.UpdateRequest{
		Index:      indexName,
		DocumentID: documentID,
		Body:       strings.NewReader(string(b)),
		Refresh:    refreshParam(refresh),
		Source:     []string{"true"},
	}
	return req.Do(ctx, c.client)
}

// DeleteDocument delete document from Elasticsearch
func (c *Client) DeleteDocument(ctx context.Context, indexName, documentID string, refresh bool) (*esapi.Response, error) {
	if c == nil || c.client == nil {
		return nil, errNilClient
	}
	req := esapi.DeleteRequest{
		Index:      indexName,
		DocumentID: documentID,
		Refresh:    refreshParam(refresh),
	}
	return req.Do(ctx, c.client)
}

// Info pings the cluster
func (c *Client) Info(ctx context.Context) (*esapi.Response, error) {
	if c == nil || c.client == nil {
		return nil, errNilClient
	}
	return c.client.Info(c.client.Info.WithContext(ctx))
}

func refreshParam(refresh bool) string {
	if refresh {
		return "true"
	}
	return ""
}
