package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config configuration struct
type Config struct {
	Level      int    `json:"level" yaml:"level"`
	Format     string `json:"format" yaml:"format"`
	Output     string `json:"output" yaml:"output"`
	OutputFile string `json:"output_file" yaml:"output_file"`
	// IndexName is the search index receiving log entries when SearchHook is on.
	IndexName       string           `json:"index_name" yaml:"index_name"`
	SearchHook      bool             `json:"search_hook" yaml:"search_hook"`
	Desensitization *Desensitization `json:"desensitization" yaml:"desensitization"`
}

// Desensitization holds field masking settings
type Desensitization struct {
	Enabled         bool     `json:"enabled" yaml:"enabled"`
	SensitiveFields []string `json:"sensitive_fields" yaml:"sensitive_fields"`
	MaskChar        string   `json:"mask_char" yaml:"mask_char"`
	PreservePrefix  int      `json:"preserve_prefix" yaml:"preserve_prefix"`
}

var defaultSensitiveFields = []string{
	"password", "passwd", "api_key", "apikey", "token", "secret", "cloud_id",
}

// GetConfig returns the logger configuration
func GetConfig(v *viper.Viper) *Config {
	indexName := strings.ToLower(v.GetString("app_name") + "-" + v.GetString("run_mode") + "-log")
	if v.GetString("logger.index_name") != "" {
		indexName = v.GetString("logger.index_name")
	}

	level := 4 // info
	if v.IsSet("logger.level") {
		level = v.GetInt("logger.level")
	}

	return &Config{
		Level:           level,
		Format:          v.GetString("logger.format"),
		Output:          v.GetString("logger.output"),
		OutputFile:      v.GetString("logger.output_file"),
		IndexName:       indexName,
		SearchHook:      v.GetBool("logger.search_hook"),
		Desensitization: getDesensitization(v),
	}
}

func getDesensitization(v *viper.Viper) *Desensitization {
	d := &Desensitization{
		Enabled:         true,
		SensitiveFields: defaultSensitiveFields,
		MaskChar:        "*",
	}
	if !v.IsSet("logger.desensitization") {
		return d
	}
	if v.IsSet("logger.desensitization.enabled") {
		d.Enabled = v.GetBool("logger.desensitization.enabled")
	}
	if fields := v.GetStringSlice("logger.desensitization.sensitive_fields"); len(fields) > 0 {
		d.SensitiveFields = fields
	}
	if c := v.GetString("logger.desensitization.mask_char"); c != "" {
		d.MaskChar = c
	}
	d.PreservePrefix = v.GetInt("logger.desensitization.preserve_prefix")
	return d
}
