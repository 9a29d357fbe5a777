package logger

import (
	"strings"

	"github.com/planetsclub/pagable/logging/logger/config"
	"github.com/sirupsen/logrus"
)

const maskLength = 6

// Desensitizer masks sensitive values in log fields
type Desensitizer struct {
	config *config.Desensitization
}

// NewDesensitizer creates a new desensitizer instance
func NewDesensitizer(cfg *config.Desensitization) *Desensitizer {
	return &Desensitizer{config: cfg}
}

// DesensitizeFields returns a copy of fields with sensitive values masked
func (d *Desensitizer) DesensitizeFields(fields logrus.Fields) logrus.Fields {
	if d == nil || d.config == nil || !d.config.Enabled {
		return fields
	}
	result := make(logrus.Fields, len(fields))
	for key, value := range fields {
		result[key] = d.desensitizeValue(key, value, 0)
	}
	return result
}

func (d *Desensitizer) desensitizeValue(key string, value any, depth int) any {
	if value == nil || depth > 10 {
		return value
	}
	if d.isSensitiveField(key) {
		return d.mask(value)
	}
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, x := range v {
			out[k] = d.desensitizeValue(k, x, depth+1)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(v))
		for k, x := range v {
			if d.isSensitiveField(k) {
				out[k] = d.mask(x).(string)
				continue
			}
			out[k] = x
		}
		return out
	}
	return value
}

func (d *Desensitizer) isSensitiveField(key string) bool {
	key = strings.ToLower(key)
	for _, f := range d.config.SensitiveFields {
		if strings.Contains(key, strings.ToLower(f)) {
			return true
		}
	}
	return false
}

func (d *Desensitizer) mask(value any) any {
	s, ok := value.(string)
	if !ok {
		return strings.Repeat(d.config.MaskChar, maskLength)
	}
	if s == "" {
		return s
	}
	keep := d.config.PreservePrefix
	if keep >= len(s) {
		keep = 0
	}
	return s[:keep] + strings.Repeat(d.config.MaskChar, maskLength)
}
