package config

import (
	"fmt"
	"strings"

	"github.com/planetsclub/pagable/data/search"
	"github.com/spf13/viper"
)

// getSearchConfig reads search configurations
func getSearchConfig(v *viper.Viper) *search.Config {
	cfg := &search.Config{
		IndexPrefix:   getSearchIndexPrefix(v),
		DefaultEngine: getStringOrDefault(v, "search.default_engine", string(search.Elasticsearch)),
		Timeout:       getDurationOrDefault(v, "search.timeout", 0),
		Elasticsearch: getElasticsearchConfig(v),
		OpenSearch:    getOpenSearchConfig(v),
		Memory:        getMemoryConfig(v),
		Breaker:       getBreakerConfig(v),
	}
	return cfg
}

// getSearchIndexPrefix gets search index prefix
func getSearchIndexPrefix(v *viper.Viper) string {
	if v.IsSet("search.index_prefix") {
		return v.GetString("search.index_prefix")
	}
	appName := v.GetString("app_name")
	environment := v.GetString("environment")
	if appName != "" && environment != "" {
		return strings.ToLower(fmt.Sprintf("%s-%s", appName, environment))
	}
	return ""
}

// getElasticsearchConfig prefers `search.elasticsearch.*` and falls back to
// `data.elasticsearch.*`.
func getElasticsearchConfig(v *viper.Viper) *search.ElasticsearchConfig {
	return &search.ElasticsearchConfig{
		Addresses: stringSliceWithFallback(v, "search.elasticsearch.addresses", "data.elasticsearch.addresses"),
		Username:  stringWithFallback(v, "search.elasticsearch.username", "data.elasticsearch.username"),
		Password:  stringWithFallback(v, "search.elasticsearch.password", "data.elasticsearch.password"),
		APIKey:    stringWithFallback(v, "search.elasticsearch.api_key", "data.elasticsearch.api_key"),
		CloudID:   stringWithFallback(v, "search.elasticsearch.cloud_id", "data.elasticsearch.cloud_id"),
	}
}

// getOpenSearchConfig prefers `search.opensearch.*` and falls back to
// `data.opensearch.*`.
func getOpenSearchConfig(v *viper.Viper) *search.OpenSearchConfig {
	insecureSkipTLS := v.GetBool("search.opensearch.insecure_skip_tls")
	if !v.IsSet("search.opensearch.insecure_skip_tls") {
		insecureSkipTLS = v.GetBool("data.opensearch.insecure_skip_tls")
	}
	return &search.OpenSearchConfig{
		Addresses:       stringSliceWithFallback(v, "search.opensearch.addresses", "data.opensearch.addresses"),
		Username:        stringWithFallback(v, "search.opensearch.username", "data.opensearch.username"),
		Password:        stringWithFallback(v, "search.opensearch.password", "data.opensearch.password"),
		InsecureSkipTLS: insecureSkipTLS,
	}
}

func getMemoryConfig(v *viper.Viper) *search.MemoryConfig {
	if !v.IsSet("search.memory") && v.GetString("search.default_engine") != string(search.Memory) {
		return nil
	}
	return &search.MemoryConfig{SeedFile: v.GetString("search.memory.seed_file")}
}

func getBreakerConfig(v *viper.Viper) *search.BreakerConfig {
	if !v.IsSet("search.breaker") {
		return nil
	}
	return &search.BreakerConfig{
		Enabled:          getBoolOrDefault(v, "search.breaker.enabled", true),
		MaxRequests:      getUint32OrDefault(v, "search.breaker.max_requests", 1),
		Interval:         getDurationOrDefault(v, "search.breaker.interval", 0),
		Timeout:          getDurationOrDefault(v, "search.breaker.timeout", 0),
		FailureThreshold: getUint32OrDefault(v, "search.breaker.failure_threshold", 5),
	}
}

func stringWithFallback(v *viper.Viper, key, legacy string) string {
	if s := v.GetString(key); s != "" {
		return s
	}
	return v.GetString(legacy)
}

func stringSliceWithFallback(v *viper.Viper, key, legacy string) []string {
	if s := v.GetStringSlice(key); len(s) > 0 {
		return s
	}
	return v.GetStringSlice(legacy)
}
