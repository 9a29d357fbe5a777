package paging

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sort"

	"github.com/planetsclub/pagable/ecode"
)

// ErrInvalidSort is returned when a sort specification cannot be parsed.
var ErrInvalidSort = errors.New("invalid sort criteria")

// Order represents sorting direction.
type Order string

const (
	Ascending  Order = "asc"  // Ascending order
	Descending Order = "desc" // Descending order
)

// Reverse returns the opposite direction.
func (o Order) Reverse() Order {
	if o == Ascending {
		return Descending
	}
	return Ascending
}

// Missing is the placement of documents lacking the sort field.
type Missing string

const (
	MissingFirst Missing = "_first"
	MissingLast  Missing = "_last"
)

// Reverse returns the opposite placement.
func (m Missing) Reverse() Missing {
	if m == MissingFirst {
		return MissingLast
	}
	return MissingFirst
}

// ScoreField is the relevance pseudo field.
const ScoreField = "_score"

// IDField is the document identifier pseudo field.
const IDField = "_id"

// DefaultSort is used when a query carries no sort.
var DefaultSort = SortSpec{Desc(IDField)}

// SortClause is one canonical sort criterion.
type SortClause struct {
	Field   string
	Order   Order
	Missing Missing
	// Options holds extra backend options (unmapped_type, mode, nested...).
	Options map[string]any
}

// Asc builds an ascending clause with missing values last.
func Asc(field string) SortClause {
	return SortClause{Field: field, Order: Ascending, Missing: MissingLast}
}

// Desc builds a descending clause with missing values last.
func Desc(field string) SortClause {
	return SortClause{Field: field, Order: Descending, Missing: MissingLast}
}

// Field builds a clause with the backend defaults for a bare field name.
func Field(field string) SortClause {
	return SortClause{Field: field, Order: defaultOrder(field), Missing: MissingLast}
}

func defaultOrder(field string) Order {
	if field == ScoreField {
		return Descending
	}
	return Ascending
}

// Reverse flips order and missing placement.
func (c SortClause) Reverse() SortClause {
	return SortClause{
		Field:   c.Field,
		Order:   c.Order.Reverse(),
		Missing: c.Missing.Reverse(),
		Options: maps.Clone(c.Options),
	}
}

// MarshalJSON renders the clause in the search backend sort syntax.
func (c SortClause) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, len(c.Options)+2)
	maps.Copy(body, c.Options)
	body["order"] = string(c.Order)
	if c.Field != ScoreField {
		body["missing"] = string(c.Missing)
	}
	return json.Marshal(map[string]any{c.Field: body})
}

// SortSpec is an ordered list of clauses; ties are broken left to right.
type SortSpec []SortClause

// Reverse returns the spec used to walk the same ordering backwards.
func (s SortSpec) Reverse() SortSpec {
	r := make(SortSpec, len(s))
	for i, c := range s {
		r[i] = c.Reverse()
	}
	return r
}

// Fields returns the clause field names in order.
func (s SortSpec) Fields() []string {
	fields := make([]string, len(s))
	for i, c := range s {
		fields[i] = c.Field
	}
	return fields
}

// ParseSortSpec canonicalises a JSON-shaped sort array.
//
// Each element is either a bare field name, a {field: "asc"|"desc"} mapping,
// or a {field: {"order": ..., "missing": ..., ...}} mapping.
func ParseSortSpec(raw []any) (SortSpec, error) {
	spec := make(SortSpec, 0, len(raw))
	for i, item := range raw {
		c, err := parseClause(item)
		if err != nil {
			return nil, fmt.Errorf("%w: clause %d: %v", ErrInvalidSort, i, err)
		}
		spec = append(spec, c)
	}
	return spec, nil
}

// UnmarshalJSON parses a sort array in backend syntax.
func (s *SortSpec) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSort, err)
	}
	spec, err := ParseSortSpec(raw)
	if err != nil {
		return err
	}
	*s = spec
	return nil
}

func parseClause(item any) (SortClause, error) {
	switch v := item.(type) {
	case string:
		if v == "" {
			return SortClause{}, errors.New(ecode.FieldIsEmpty("field"))
		}
		return Field(v), nil
	case map[string]any:
		if len(v) != 1 {
			return SortClause{}, fmt.Errorf("expected exactly one field, got %d", len(v))
		}
		for field, body := range v {
			return parseFieldBody(field, body)
		}
	}
	return SortClause{}, fmt.Errorf("unsupported clause type %T", item)
}

func parseFieldBody(field string, body any) (SortClause, error) {
	c := Field(field)
	switch b := body.(type) {
	case string:
		o, err := parseOrder(b)
		if err != nil {
			return SortClause{}, err
		}
		c.Order = o
	case map[string]any:
		for _, k := range sortedKeys(b) {
			switch k {
			case "order":
				s, _ := b[k].(string)
				o, err := parseOrder(s)
				if err != nil {
					return SortClause{}, err
				}
				c.Order = o
			case "missing":
				s, _ := b[k].(string)
				m, err := parseMissing(s)
				if err != nil {
					return SortClause{}, err
				}
				c.Missing = m
			default:
				if c.Options == nil {
					c.Options = make(map[string]any)
				}
				c.Options[k] = b[k]
			}
		}
	default:
		return SortClause{}, fmt.Errorf("field %q: unsupported body type %T", field, body)
	}
	return c, nil
}

func parseOrder(s string) (Order, error) {
	switch Order(s) {
	case Ascending, Descending:
		return Order(s), nil
	}
	return "", errors.New(ecode.FieldIsInvalid("order " + s))
}

func parseMissing(s string) (Missing, error) {
	switch Missing(s) {
	case MissingFirst, MissingLast:
		return Missing(s), nil
	}
	return "", errors.New(ecode.FieldIsInvalid("missing " + s))
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
