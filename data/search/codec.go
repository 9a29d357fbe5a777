package search

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ErrNotFound is returned when a document does not exist
var ErrNotFound = errors.New("document not found")

// ResponseError is a query failure reported by the backend.
type ResponseError struct {
	Status int
	Type   string
	Reason string
}

func (e *ResponseError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("search backend error: status %d", e.Status)
	}
	return fmt.Sprintf("search backend error: status %d: %s: %s", e.Status, e.Type, e.Reason)
}

// MultiSearchBody renders requests as an msearch NDJSON payload.
func MultiSearchBody(reqs []*Request) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i, req := range reqs {
		if err := enc.Encode(map[string]string{"index": req.Index}); err != nil {
			return nil, fmt.Errorf("encode msearch header %d: %w", i, err)
		}
		if err := enc.Encode(req); err != nil {
			return nil, fmt.Errorf("encode msearch body %d: %w", i, err)
		}
	}
	return &buf, nil
}

// SearchBody renders a single request body.
func SearchBody(req *Request) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(req); err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}
	return &buf, nil
}

type rawError struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type rawHit struct {
	Index     string              `json:"_index"`
	ID        string              `json:"_id"`
	Score     *float64            `json:"_score"`
	Source    map[string]any      `json:"_source"`
	Sort      []any               `json:"sort"`
	Highlight map[string][]string `json:"highlight"`
	InnerHits map[string]any      `json:"inner_hits"`
}

type rawSearch struct {
	Took   int64     `json:"took"`
	Status int       `json:"status"`
	Error  *rawError `json:"error"`
	Hits   struct {
		Total *struct {
			Value    json.Number `json:"value"`
			Relation string      `json:"relation"`
		} `json:"total"`
		Hits []rawHit `json:"hits"`
	} `json:"hits"`
}

func (r *rawSearch) response() (*Response, error) {
	if r.Error != nil || r.Status >= 400 {
		re := &ResponseError{Status: r.Status}
		if r.Error != nil {
			re.Type, re.Reason = r.Error.Type, r.Error.Reason
		}
		return nil, re
	}
	resp := &Response{Took: r.Took, Hits: make([]Hit, len(r.Hits.Hits))}
	if t := r.Hits.Total; t != nil {
		v, _ := t.Value.Int64()
		resp.Total = Total{Value: v, Relation: Relation(t.Relation)}
	}
	if resp.Total.Relation == "" {
		resp.Total.Relation = RelationEqual
	}
	for i, h := range r.Hits.Hits {
		resp.Hits[i] = h.hit()
	}
	return resp, nil
}

func (h rawHit) hit() Hit {
	return Hit{
		Index:     h.Index,
		ID:        h.ID,
		Score:     h.Score,
		Source:    NormalizeMap(h.Source),
		Sort:      normalizeSlice(h.Sort),
		Highlight: h.Highlight,
		InnerHits: NormalizeMap(h.InnerHits),
	}
}

func newDecoder(r io.Reader) *json.Decoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec
}

// DecodeSearchResponse parses a _search response body.
func DecodeSearchResponse(r io.Reader) (*Response, error) {
	var raw rawSearch
	if err := newDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return raw.response()
}

// DecodeMultiSearchResponse parses a _msearch response body holding want items.
func DecodeMultiSearchResponse(r io.Reader, want int) ([]*Response, error) {
	var raw struct {
		Responses []rawSearch `json:"responses"`
	}
	if err := newDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode msearch response: %w", err)
	}
	if len(raw.Responses) != want {
		return nil, fmt.Errorf("msearch returned %d responses, want %d", len(raw.Responses), want)
	}
	out := make([]*Response, len(raw.Responses))
	for i := range raw.Responses {
		resp, err := raw.Responses[i].response()
		if err != nil {
			return nil, fmt.Errorf("msearch item %d: %w", i, err)
		}
		out[i] = resp
	}
	return out, nil
}

type rawDoc struct {
	Index  string         `json:"_index"`
	ID     string         `json:"_id"`
	Found  bool           `json:"found"`
	Source map[string]any `json:"_source"`
}

// DecodeGetResponse parses a document get response body.
func DecodeGetResponse(r io.Reader) (*Hit, error) {
	var raw rawDoc
	if err := newDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode get response: %w", err)
	}
	if !raw.Found {
		return nil, ErrNotFound
	}
	return &Hit{Index: raw.Index, ID: raw.ID, Source: NormalizeMap(raw.Source)}, nil
}

// DecodeMultiGetResponse parses an _mget response body, skipping missing documents.
func DecodeMultiGetResponse(r io.Reader) ([]Hit, error) {
	var raw struct {
		Docs []rawDoc `json:"docs"`
	}
	if err := newDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode mget response: %w", err)
	}
	hits := make([]Hit, 0, len(raw.Docs))
	for _, d := range raw.Docs {
		if d.Found {
			hits = append(hits, Hit{Index: d.Index, ID: d.ID, Source: NormalizeMap(d.Source)})
		}
	}
	return hits, nil
}

// DecodeWriteResponse parses index/update/delete responses.
func DecodeWriteResponse(r io.Reader) (id string, source map[string]any, err error) {
	var raw struct {
		ID  string `json:"_id"`
		Get *struct {
			Source map[string]any `json:"_source"`
		} `json:"get"`
	}
	if err := newDecoder(r).Decode(&raw); err != nil {
		return "", nil, fmt.Errorf("decode write response: %w", err)
	}
	if raw.Get != nil {
		source = NormalizeMap(raw.Get.Source)
	}
	return raw.ID, source, nil
}

// DecodeError builds a ResponseError from a failed response body.
func DecodeError(status int, r io.Reader) error {
	var raw struct {
		Error json.RawMessage `json:"error"`
	}
	re := &ResponseError{Status: status}
	if err := json.NewDecoder(r).Decode(&raw); err == nil && len(raw.Error) > 0 {
		var detail rawError
		if json.Unmarshal(raw.Error, &detail) == nil {
			re.Type, re.Reason = detail.Type, detail.Reason
		} else {
			re.Reason, _ = strconv.Unquote(string(raw.Error))
		}
	}
	if status == 404 && re.Type == "" {
		return fmt.Errorf("%w: %s", ErrNotFound, re.Error())
	}
	return re
}

// normalizeValue turns json.Number into int64 when integral, uint64 when it
// only fits unsigned, float64 otherwise.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if u, err := strconv.ParseUint(t.String(), 10, 64); err == nil {
			return u
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		return NormalizeMap(t)
	case []any:
		return normalizeSlice(t)
	}
	return v
}

// NormalizeMap rewrites json.Number values of m in place.
func NormalizeMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
	return m
}

func normalizeSlice(s []any) []any {
	for i, v := range s {
		s[i] = normalizeValue(v)
	}
	return s
}
