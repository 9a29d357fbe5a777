package memory

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
)

type sortClause struct {
	field   string
	desc    bool
	missing string
}

// parseSort reads any sort value that renders to the backend's JSON form.
func parseSort(raw any) ([]sortClause, error) {
	if raw == nil {
		return nil, nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid sort: %w", err)
	}
	var list []any
	if err := json.Unmarshal(b, &list); err != nil {
		var single any
		if err := json.Unmarshal(b, &single); err != nil {
			return nil, fmt.Errorf("invalid sort: %w", err)
		}
		list = []any{single}
	}

	clauses := make([]sortClause, 0, len(list))
	for i, item := range list {
		c, err := parseSortClause(item)
		if err != nil {
			return nil, fmt.Errorf("invalid sort clause %d: %w", i, err)
		}
		clauses = append(clauses, c)
	}
	return clauses, nil
}

func parseSortClause(item any) (sortClause, error) {
	switch t := item.(type) {
	case string:
		return sortClause{field: t, desc: t == "_score", missing: "_last"}, nil
	case map[string]any:
		if len(t) != 1 {
			return sortClause{}, fmt.Errorf("expected one field, got %d", len(t))
		}
		for field, body := range t {
			c := sortClause{field: field, desc: field == "_score", missing: "_last"}
			switch b := body.(type) {
			case string:
				c.desc = b == "desc"
			case map[string]any:
				if o, ok := b["order"].(string); ok {
					c.desc = o == "desc"
				}
				if m, ok := b["missing"].(string); ok {
					c.missing = m
				}
			default:
				return sortClause{}, fmt.Errorf("unsupported body for [%s]", field)
			}
			return c, nil
		}
	}
	return sortClause{}, fmt.Errorf("unsupported clause %v", item)
}

// sortKey extracts the sort tuple the backend would return for d.
func sortKey(clauses []sortClause, d document) []any {
	if len(clauses) == 0 {
		return nil
	}
	key := make([]any, len(clauses))
	for i, c := range clauses {
		switch c.field {
		case "_id":
			key[i] = d.id
		case "_score":
			key[i] = 1.0
		default:
			v, ok := lookup(d.source, c.field)
			if !ok {
				continue
			}
			if arr, ok := v.([]any); ok {
				v = pickExtreme(arr, c.desc)
			}
			key[i] = v
		}
	}
	return key
}

// pickExtreme mirrors the backend's min for ascending and max for descending
// on multi-valued fields.
func pickExtreme(arr []any, desc bool) any {
	var out any
	for _, v := range arr {
		if v == nil {
			continue
		}
		if out == nil {
			out = v
			continue
		}
		c := compareValues(v, out)
		if (desc && c > 0) || (!desc && c < 0) {
			out = v
		}
	}
	return out
}

// compareKeys orders two sort tuples under clauses. Missing values are
// placed first or last regardless of direction.
func compareKeys(clauses []sortClause, a, b []any) int {
	for i, c := range clauses {
		var x, y any
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		switch {
		case x == nil && y == nil:
			continue
		case x == nil:
			if c.missing == "_first" {
				return -1
			}
			return 1
		case y == nil:
			if c.missing == "_first" {
				return 1
			}
			return -1
		}
		r := compareValues(x, y)
		if c.desc {
			r = -r
		}
		if r != 0 {
			return r
		}
	}
	return 0
}

// compareValues compares scalars. Values of different kinds order by kind.
func compareValues(a, b any) int {
	ka, kb := kind(a), kind(b)
	if ka != kb {
		return cmp.Compare(ka, kb)
	}
	switch ka {
	case kindNumber:
		ai, aInt := asInt(a)
		bi, bInt := asInt(b)
		if aInt && bInt {
			return cmp.Compare(ai, bi)
		}
		if au, ok := a.(uint64); ok {
			if bu, ok := b.(uint64); ok {
				return cmp.Compare(au, bu)
			}
		}
		return cmp.Compare(asFloat(a), asFloat(b))
	case kindString:
		return cmp.Compare(a.(string), b.(string))
	case kindBool:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		}
		return 1
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

const (
	kindNil = iota
	kindBool
	kindNumber
	kindString
	kindOther
)

func kind(v any) int {
	switch v.(type) {
	case nil:
		return kindNil
	case bool:
		return kindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number:
		return kindNumber
	case string:
		return kindString
	}
	return kindOther
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float32:
		return float64(n)
	case float64:
		return n
	case json.Number:
		f, _ := n.Float64()
		return f
	}
	if i, ok := asInt(v); ok {
		return float64(i)
	}
	if u, ok := v.(uint64); ok {
		return float64(u)
	}
	return 0
}
