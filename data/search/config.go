package search

import "time"

// Config represents search engine configuration
type Config struct {
	IndexPrefix   string
	DefaultEngine string
	// Timeout bounds each backend round trip; zero leaves it to the caller context.
	Timeout       time.Duration
	Elasticsearch *ElasticsearchConfig
	OpenSearch    *OpenSearchConfig
	Memory        *MemoryConfig
	Breaker       *BreakerConfig
}

// ElasticsearchConfig elasticsearch connection settings
type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
	APIKey    string
	CloudID   string
}

// OpenSearchConfig opensearch connection settings
type OpenSearchConfig struct {
	Addresses       []string
	Username        string
	Password        string
	InsecureSkipTLS bool
}

// MemoryConfig in-process engine settings
type MemoryConfig struct {
	// SeedFile is a JSON object mapping index names to document arrays.
	SeedFile string
}

// BreakerConfig circuit breaker settings
type BreakerConfig struct {
	Enabled          bool
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}
