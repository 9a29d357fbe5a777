// Package metrics exposes search and paging metrics through Prometheus.
package metrics

import (
	"github.com/planetsclub/pagable/paging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
)

// Collector records search backend and paginator metrics. It implements
// search.Collector and paging.PageObserver.
type Collector struct {
	searchQueries  *prometheus.CounterVec
	searchIndexOps *prometheus.CounterVec
	pages          *prometheus.CounterVec
	pageItems      *prometheus.HistogramVec
	probes         prometheus.Counter
	health         *prometheus.GaugeVec
	breakerState   *prometheus.GaugeVec
}

// NewCollector creates the collector and registers it with reg
func NewCollector(namespace string, reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		searchQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "queries_total",
			Help:      "Search backend queries by engine and outcome.",
		}, []string{"engine", "outcome"}),
		searchIndexOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "document_operations_total",
			Help:      "Document operations by engine and operation.",
		}, []string{"engine", "operation"}),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "paging",
			Name:      "pages_total",
			Help:      "Paginated queries by direction and outcome.",
		}, []string{"direction", "outcome"}),
		pageItems: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "paging",
			Name:      "page_items",
			Help:      "Items returned per page.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000, 2000},
		}, []string{"direction"}),
		probes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "paging",
			Name:      "boundary_probes_total",
			Help:      "Pages that batched a boundary probe query.",
		}),
		health: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "component_healthy",
			Help:      "1 when the component passed its last health check.",
		}, []string{"component"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "breaker_state",
			Help:      "Circuit breaker state: 0 closed, 1 half-open, 2 open.",
		}, []string{"name"}),
	}

	if reg != nil {
		for _, col := range []prometheus.Collector{
			c.searchQueries, c.searchIndexOps, c.pages, c.pageItems, c.probes, c.health, c.breakerState,
		} {
			if err := reg.Register(col); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// SearchQuery implements search.Collector
func (c *Collector) SearchQuery(engine string, err error) {
	c.searchQueries.WithLabelValues(engine, outcome(err)).Inc()
}

// SearchIndex implements search.Collector
func (c *Collector) SearchIndex(engine, operation string) {
	c.searchIndexOps.WithLabelValues(engine, operation).Inc()
}

// ObservePage implements paging.PageObserver
func (c *Collector) ObservePage(direction paging.Direction, items int, probed bool, err error) {
	c.pages.WithLabelValues(string(direction), outcome(err)).Inc()
	if err != nil {
		return
	}
	c.pageItems.WithLabelValues(string(direction)).Observe(float64(items))
	if probed {
		c.probes.Inc()
	}
}

// HealthCheck records a component health result
func (c *Collector) HealthCheck(component string, healthy bool) {
	v := 0.0
	if healthy {
		v = 1
	}
	c.health.WithLabelValues(component).Set(v)
}

// BreakerStateChange matches the search.NewBreaker state callback
func (c *Collector) BreakerStateChange(name string, _, to gobreaker.State) {
	c.breakerState.WithLabelValues(name).Set(float64(to))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
