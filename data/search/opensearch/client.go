package opensearch

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
	"github.com/planetsclub/pagable/data/search"
)

var errNilClient = errors.New("opensearch client is nil")

// Client OpenSearch client
type Client struct {
	client *opensearchapi.Client
}

// NewClient creates a new OpenSearch client
func NewClient(cfg *search.OpenSearchConfig) (*Client, error) {
	if cfg == nil || len(cfg.Addresses) == 0 {
		return nil, errors.New("opensearch: addresses are empty")
	}

	// Configure transport with TLS options
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipTLS,
		},
	}

	client, err := opensearchapi.NewClient(
		opensearchapi.Config{
			Client: opensearch.Config{
				Addresses: cfg.Addresses,
				Username:  cfg.Username,
				Password:  cfg.Password,
				Transport: transport,
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("opensearch client creation error: %w", err)
	}

	return &Client{client: client}, nil
}

// GetClient returns the OpenSearch client
func (c *Client) GetClient() *opensearchapi.Client {
	return c.client
}

// perform sends a raw request through the client transport so the body can
// be decoded by the shared search codec.
func (c *Client) perform(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Response, error) {
	if c == nil || c.client == nil {
		return nil, errNilClient
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.client.Client.Perform(req)
}

// MultiSearch sends an NDJSON payload to _msearch
func (c *Client) MultiSearch(ctx context.Context, body io.Reader) (*http.Response, error) {
	if c == nil || c.client == nil {
		return nil, errNilClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/_msearch", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	return c.client.Client.Perform(req)
}

// Search performs a search in OpenSearch
func (c *Client) Search(ctx context.Context, indexName string, body io.Reader) (*http.Response, error) {
	return c.perform(ctx, http.MethodPost, "/"+url.PathEscape(indexName)+"/_search", nil, body)
}

// GetDocument fetches one document
func (c *Client) GetDocument(ctx context.Context, indexName, documentID string) (*http.Response, error) {
	return c.perform(ctx, http.MethodGet, "/"+url.PathEscape(indexName)+"/_doc/"+url.PathEscape(documentID), nil, nil)
}

// MultiGetDocuments fetches documents by ids
func (c *Client) MultiGetDocuments(ctx context.Context, indexName string, ids []string) (*http.Response, error) {
	body, err := json.Marshal(map[string]any{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("error encoding ids: %w", err)
	}
	return c.perform(ctx, http.MethodPost, "/"+url.PathEscape(indexName)+"/_mget", nil, strings.NewReader(string(body)))
}

// UpdateDocument applies a partial update and asks for the resulting source
func (c *Client) UpdateDocument(ctx context.Context, indexName, documentID string, partial map[string]any, upsert, refresh bool) (*http.Response, error) {
	body := map[string]any{"doc": partial}
	if upsert {
		body["doc_as_upsert"] = true
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error encoding update: %w", err)
	}

	query := url.Values{"_source": []string{"true"}}
	if refresh {
		query.Set("refresh", "true")
	}
	return c.perform(ctx, http.MethodPost, "/"+url.PathEscape(indexName)+"/_update/"+url.PathEscape(documentID), query, strings.NewReader(string(b)))
}

// IndexDocument indexes a document in OpenSearch
func (c *Client) IndexDocument(ctx context.Context, indexName, documentID string, document any, refresh bool) (string, error) {
	if c == nil || c.client == nil {
		return "", errNilClient
	}

	data, err := json.Marshal(document)
	if err != nil {
		return "", fmt.Errorf("error encoding document: %w", err)
	}

	indexReq := opensearchapi.IndexReq{
		Index:      indexName,
		DocumentID: documentID,
		Body:       strings.NewReader(string(data)),
	}
	if refresh {
		indexReq.Params = opensearchapi.IndexParams{Refresh: "true"}
	}

	resp, err := c.client.Index(ctx, indexReq)
	if err != nil {
		return "", fmt.Errorf("opensearch indexing error: %w", err)
	}
	return resp.ID, nil
}

// DeleteDocument deletes a document from OpenSearch
func (c *Client) DeleteDocument(ctx context.Context, indexName, documentID string, refresh bool) error {
	if c == nil || c.client == nil {
		return errNilClient
	}

	deleteReq := opensearchapi.DocumentDeleteReq{
		Index:      indexName,
		DocumentID: documentID,
	}
	if refresh {
		deleteReq.Params = opensearchapi.DocumentDeleteParams{Refresh: "true"}
	}

	if _, err := c.client.Document.Delete(ctx, deleteReq); err != nil {
		var opensearchError *opensearch.StructError
		if errors.As(err, &opensearchError) && opensearchError.Status == http.StatusNotFound {
			return fmt.Errorf("%w: %s", search.ErrNotFound, documentID)
		}
		return fmt.Errorf("opensearch deletion error: %w", err)
	}
	return nil
}

// Health checks cluster health
func (c *Client) Health(ctx context.Context) (string, error) {
	if c == nil || c.client == nil {
		return "", errNilClient
	}

	res, err := c.client.Cluster.Health(ctx, &opensearchapi.ClusterHealthReq{})
	if err != nil {
		return "", fmt.Errorf("opensearch health check error: %w", err)
	}
	return res.Status, nil
}
