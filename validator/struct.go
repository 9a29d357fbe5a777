// Package validator checks struct tags with go-playground/validator and
// turns failures into readable messages keyed by field name.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var messages = map[string]string{
	"required":      "The field '%s' is required.",
	"min":           "The field '%s' must be at least %s.",
	"max":           "The field '%s' must be at most %s.",
	"lte":           "The field '%s' must be less than or equal to %s.",
	"gte":           "The field '%s' must be greater than or equal to %s.",
	"gt":            "The field '%s' must be greater than %s.",
	"lt":            "The field '%s' must be less than %s.",
	"oneof":         "The field '%s' must be one of [%s].",
	"hostname_port": "The field '%s' must be a host:port address.",
}

func parseMessage(name string, e validator.FieldError) string {
	if msg, ok := messages[e.Tag()]; ok {
		if strings.Count(msg, "%s") == 2 {
			return fmt.Sprintf(msg, name, e.Param())
		}
		return fmt.Sprintf(msg, name)
	}
	return fmt.Sprintf("Field '%s' is invalid: %s", name, e.Tag())
}

// ValidateStruct validates a struct pointer and returns a map of field names
// (json tag when present) to messages. It is empty when s is valid.
func ValidateStruct(s any) map[string]string {
	out := make(map[string]string)

	var errs validator.ValidationErrors
	if err := validate.Struct(s); !errors.As(err, &errs) {
		return out
	}
	t := reflect.TypeOf(s)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	for _, e := range errs {
		name := e.StructField()
		if field, ok := t.FieldByName(e.StructField()); ok {
			if tag := strings.Split(field.Tag.Get("json"), ",")[0]; tag != "" && tag != "-" {
				name = tag
			}
		}
		out[name] = parseMessage(name, e)
	}
	return out
}

// Validate returns one error listing every failed field of s, or nil.
func Validate(s any) error {
	msgs := ValidateStruct(s)
	if len(msgs) == 0 {
		return nil
	}
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, m)
	}
	sort.Strings(lines)
	return errors.New(strings.Join(lines, " "))
}
