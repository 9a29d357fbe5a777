package elasticsearch

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/planetsclub/pagable/data/search"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(&search.ElasticsearchConfig{Addresses: []string{srv.URL}})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return NewAdapter(c)
}

func TestNewClient_EmptyAddresses(t *testing.T) {
	if _, err := NewClient(nil); err == nil {
		t.Error("Expected error for nil config")
	}
	if _, err := NewClient(&search.ElasticsearchConfig{}); err == nil {
		t.Error("Expected error for empty addresses")
	}
}

func TestAdapter_MultiSearch(t *testing.T) {
	var lines []string
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/_msearch" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		sc := bufio.NewScanner(r.Body)
		for sc.Scan() {
			lines = append(lines, sc.Text())
		}
		_, _ = io.WriteString(w, `{"responses":[
			{"status":200,"hits":{"total":{"value":2,"relation":"eq"},"hits":[{"_index":"posts","_id":"p1","sort":[1700000000000123,"p1"]}]}},
			{"status":200,"hits":{"hits":[{"_index":"posts","_id":"p0","sort":[1700000000000999,"p0"]}]}}]}`)
	})

	resps, err := a.MultiSearch(context.Background(), []*search.Request{
		{Index: "posts", Size: 2},
		{Index: "posts", Size: 1, Source: false},
	})
	if err != nil {
		t.Fatalf("MultiSearch failed: %v", err)
	}
	if len(lines) != 4 {
		t.Errorf("Expected 4 NDJSON lines, got %d", len(lines))
	}
	if len(resps) != 2 || resps[0].Hits[0].Sort[0] != int64(1700000000000123) {
		t.Errorf("Unexpected responses %+v", resps)
	}
}

func TestAdapter_Errors(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/_search"):
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"type":"parsing_exception","reason":"bad"},"status":400}`)
		case strings.Contains(r.URL.Path, "/_doc/"):
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"_index":"posts","_id":"missing","found":false}`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	_, err := a.Search(context.Background(), &search.Request{Index: "posts"})
	var re *search.ResponseError
	if !errors.As(err, &re) || re.Status != 400 || re.Type != "parsing_exception" {
		t.Errorf("Expected parsing_exception, got %v", err)
	}

	if _, err := a.Get(context.Background(), "posts", "missing"); !errors.Is(err, search.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
