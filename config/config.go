package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/planetsclub/pagable/data/search"
	logcfg "github.com/planetsclub/pagable/logging/logger/config"
	"github.com/planetsclub/pagable/validator"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. PAGABLE_SEARCH_DEFAULT_ENGINE.
const EnvPrefix = "PAGABLE"

// Config represents the configuration implementation.
type Config struct {
	AppName  string
	RunMode  string
	Logger   *logcfg.Config
	Search   *search.Config
	Paging   *Paging
	Observes *Observes
	Viper    *viper.Viper
}

// LoadConfig loads the configuration from configPath, or from config.yaml in
// the usual locations when configPath is empty. A missing default file is not
// an error: defaults and environment variables still apply.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("/etc/pagable")
		v.AddConfigPath("$HOME/.pagable")
		v.AddConfigPath(".")
		if ex, err := os.Executable(); err == nil {
			v.AddConfigPath(filepath.Dir(ex))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppName:  getStringOrDefault(v, "app_name", "pagable"),
		RunMode:  getStringOrDefault(v, "run_mode", "debug"),
		Logger:   logcfg.GetConfig(v),
		Search:   getSearchConfig(v),
		Paging:   getPagingConfig(v),
		Observes: getObservesConfig(v),
		Viper:    v,
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Search.DefaultEngine != "" {
		switch search.Engine(c.Search.DefaultEngine) {
		case search.Elasticsearch, search.OpenSearch, search.Memory:
		default:
			return fmt.Errorf("%w: %q", search.ErrEngineNotFound, c.Search.DefaultEngine)
		}
	}
	for name, section := range map[string]any{
		"paging":           c.Paging,
		"observes.sentry":  c.Observes.Sentry,
		"observes.tracer":  c.Observes.Tracer,
		"observes.metrics": c.Observes.Metrics,
	} {
		if err := validator.Validate(section); err != nil {
			return fmt.Errorf("invalid %s config: %w", name, err)
		}
	}
	return nil
}
