package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/planetsclub/pagable/data/search"
	"github.com/planetsclub/pagable/ecode"
	"github.com/planetsclub/pagable/paging"
	"github.com/spf13/pflag"
)

// queryFlags are the flags shared by page and walk
type queryFlags struct {
	index  string
	sort   string
	filter string
	source []string
}

func (f *queryFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.index, "index", "i", "", "index to query")
	fs.StringVarP(&f.sort, "sort", "s", "", `sort as JSON, e.g. '[{"created_at":"desc"},{"_id":"desc"}]'`)
	fs.StringVarP(&f.filter, "filter", "f", "", `query DSL filter as JSON, e.g. '{"term":{"status":"published"}}'`)
	fs.StringSliceVar(&f.source, "source", nil, "source fields to return")
}

func (f *queryFlags) query() (paging.Query, error) {
	q := paging.Query{Index: f.index}
	if q.Index == "" {
		return q, errors.New(ecode.FieldIsRequired("--index"))
	}

	if f.sort != "" {
		if err := json.Unmarshal([]byte(f.sort), &q.Sort); err != nil {
			return q, fmt.Errorf("--sort: %w", err)
		}
	}

	if f.filter != "" {
		dec := json.NewDecoder(strings.NewReader(f.filter))
		dec.UseNumber()
		var filter map[string]any
		if err := dec.Decode(&filter); err != nil {
			return q, fmt.Errorf("--filter: %w", err)
		}
		q.Filter = search.NormalizeMap(filter)
	}

	if len(f.source) > 0 {
		q.Source = f.source
	}
	return q, nil
}

func encodeJSON(v any, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
