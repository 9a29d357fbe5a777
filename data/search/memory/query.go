package memory

import (
	"errors"
	"fmt"
	"strings"
)

type matcher func(document) bool

func matchAll(document) bool { return true }

// compileQuery turns a query DSL object into a predicate.
func compileQuery(q map[string]any) (matcher, error) {
	if len(q) == 0 {
		return matchAll, nil
	}
	if len(q) != 1 {
		return nil, fmt.Errorf("query must have exactly one clause, got %d", len(q))
	}
	for kind, body := range q {
		switch kind {
		case "match_all":
			return matchAll, nil
		case "match_none":
			return func(document) bool { return false }, nil
		case "bool":
			return compileBool(body)
		case "term":
			return compileTerm(body)
		case "terms":
			return compileTerms(body)
		case "range":
			return compileRange(body)
		case "exists":
			return compileExists(body)
		case "ids":
			return compileIDs(body)
		case "match":
			return compileMatch(body)
		case "prefix":
			return compilePrefix(body)
		default:
			return nil, fmt.Errorf("unsupported query type [%s]", kind)
		}
	}
	return matchAll, nil
}

func fieldBody(kind string, body any) (string, any, error) {
	m, ok := body.(map[string]any)
	if !ok || len(m) != 1 {
		return "", nil, fmt.Errorf("[%s] query must name exactly one field", kind)
	}
	for f, v := range m {
		return f, v, nil
	}
	return "", nil, nil
}

// unwrap reads the {"value": x} or {"query": x} long form.
func unwrap(v any, key string) any {
	if m, ok := v.(map[string]any); ok {
		return m[key]
	}
	return v
}

func fieldValue(d document, field string) (any, bool) {
	if field == "_id" {
		return d.id, true
	}
	return lookup(d.source, field)
}

// values returns the field value as a list, flattening arrays.
func values(d document, field string) []any {
	v, ok := fieldValue(d, field)
	if !ok {
		return nil
	}
	if arr, ok := v.([]any); ok {
		return arr
	}
	return []any{v}
}

func compileTerm(body any) (matcher, error) {
	field, v, err := fieldBody("term", body)
	if err != nil {
		return nil, err
	}
	want := unwrap(v, "value")
	return func(d document) bool {
		for _, got := range values(d, field) {
			if compareValues(got, want) == 0 {
				return true
			}
		}
		return false
	}, nil
}

func compileTerms(body any) (matcher, error) {
	field, v, err := fieldBody("terms", body)
	if err != nil {
		return nil, err
	}
	wants, ok := asSlice(v)
	if !ok {
		return nil, errors.New("[terms] query requires an array of values")
	}
	return func(d document) bool {
		for _, got := range values(d, field) {
			for _, want := range wants {
				if compareValues(got, want) == 0 {
					return true
				}
			}
		}
		return false
	}, nil
}

func compileRange(body any) (matcher, error) {
	field, v, err := fieldBody("range", body)
	if err != nil {
		return nil, err
	}
	bounds, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("[range] query requires an object of bounds")
	}
	for op := range bounds {
		switch op {
		case "gt", "gte", "lt", "lte", "format", "time_zone":
		default:
			return nil, fmt.Errorf("[range] query does not support [%s]", op)
		}
	}
	return func(d document) bool {
		for _, got := range values(d, field) {
			if inRange(got, bounds) {
				return true
			}
		}
		return false
	}, nil
}

func inRange(v any, bounds map[string]any) bool {
	if b, ok := bounds["gt"]; ok && compareValues(v, b) <= 0 {
		return false
	}
	if b, ok := bounds["gte"]; ok && compareValues(v, b) < 0 {
		return false
	}
	if b, ok := bounds["lt"]; ok && compareValues(v, b) >= 0 {
		return false
	}
	if b, ok := bounds["lte"]; ok && compareValues(v, b) > 0 {
		return false
	}
	return true
}

func compileExists(body any) (matcher, error) {
	m, ok := body.(map[string]any)
	if !ok {
		return nil, errors.New("[exists] query requires a field")
	}
	field, _ := m["field"].(string)
	if field == "" {
		return nil, errors.New("[exists] query requires a field")
	}
	return func(d document) bool {
		_, ok := fieldValue(d, field)
		return ok
	}, nil
}

func compileIDs(body any) (matcher, error) {
	m, ok := body.(map[string]any)
	if !ok {
		return nil, errors.New("[ids] query requires values")
	}
	raw, ok := asSlice(m["values"])
	if !ok {
		return nil, errors.New("[ids] query requires values")
	}
	ids := make(map[string]struct{}, len(raw))
	for _, v := range raw {
		ids[fmt.Sprint(v)] = struct{}{}
	}
	return func(d document) bool {
		_, ok := ids[d.id]
		return ok
	}, nil
}

// compileMatch matches when any whitespace token of the query appears in the
// field text, case-insensitively.
func compileMatch(body any) (matcher, error) {
	field, v, err := fieldBody("match", body)
	if err != nil {
		return nil, err
	}
	text := strings.ToLower(fmt.Sprint(unwrap(v, "query")))
	tokens := strings.Fields(text)
	return func(d document) bool {
		for _, got := range values(d, field) {
			s := strings.ToLower(fmt.Sprint(got))
			for _, tok := range tokens {
				if strings.Contains(s, tok) {
					return true
				}
			}
		}
		return false
	}, nil
}

func compilePrefix(body any) (matcher, error) {
	field, v, err := fieldBody("prefix", body)
	if err != nil {
		return nil, err
	}
	prefix := fmt.Sprint(unwrap(v, "value"))
	return func(d document) bool {
		for _, got := range values(d, field) {
			if s, ok := got.(string); ok && strings.HasPrefix(s, prefix) {
				return true
			}
		}
		return false
	}, nil
}

func compileBool(body any) (matcher, error) {
	m, ok := body.(map[string]any)
	if !ok {
		return nil, errors.New("[bool] query requires an object")
	}
	var must, should, mustNot []matcher
	for key, clauses := range m {
		var target *[]matcher
		switch key {
		case "must", "filter":
			target = &must
		case "should":
			target = &should
		case "must_not":
			target = &mustNot
		case "minimum_should_match", "boost":
			continue
		default:
			return nil, fmt.Errorf("[bool] query does not support [%s]", key)
		}
		list, ok := asSlice(clauses)
		if !ok {
			list = []any{clauses}
		}
		for _, c := range list {
			cm, ok := c.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("[bool] %s clause must be an object", key)
			}
			compiled, err := compileQuery(cm)
			if err != nil {
				return nil, err
			}
			*target = append(*target, compiled)
		}
	}
	return func(d document) bool {
		for _, f := range must {
			if !f(d) {
				return false
			}
		}
		for _, f := range mustNot {
			if f(d) {
				return false
			}
		}
		if len(should) == 0 || len(must) > 0 {
			return true
		}
		for _, f := range should {
			if f(d) {
				return true
			}
		}
		return false
	}, nil
}

func asSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	case []int:
		out := make([]any, len(t))
		for i, n := range t {
			out[i] = n
		}
		return out, true
	case []int64:
		out := make([]any, len(t))
		for i, n := range t {
			out[i] = n
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out, true
	}
	return nil, false
}
