package search

import (
	"fmt"
	"sort"
	"sync"
)

// AdapterFactory creates a search adapter from configuration
type AdapterFactory func(cfg *Config) (Adapter, error)

var (
	// Registry of adapter factories by engine type
	adapterFactories = make(map[Engine]AdapterFactory)
	factoriesMu      sync.RWMutex
)

// RegisterAdapterFactory registers a factory for creating search adapters.
// This is called by engine packages in their init() functions.
func RegisterAdapterFactory(engine Engine, factory AdapterFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	adapterFactories[engine] = factory
}

// GetAdapterFactory returns the factory for a given engine
func GetAdapterFactory(engine Engine) (AdapterFactory, error) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	factory, ok := adapterFactories[engine]
	if !ok {
		return nil, fmt.Errorf("%w: no adapter factory registered for %s", ErrEngineNotFound, engine)
	}
	return factory, nil
}

// GetRegisteredEngines returns list of engines with registered factories
func GetRegisteredEngines() []Engine {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	engines := make([]Engine, 0, len(adapterFactories))
	for engine := range adapterFactories {
		engines = append(engines, engine)
	}
	sort.Slice(engines, func(i, j int) bool { return engines[i] < engines[j] })
	return engines
}

// configured reports whether cfg carries settings for engine.
func configured(cfg *Config, engine Engine) bool {
	switch engine {
	case Elasticsearch:
		return cfg.Elasticsearch != nil && len(cfg.Elasticsearch.Addresses) > 0
	case OpenSearch:
		return cfg.OpenSearch != nil && len(cfg.OpenSearch.Addresses) > 0
	case Memory:
		return cfg.Memory != nil
	}
	return false
}
