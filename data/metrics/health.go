package metrics

import (
	"context"
	"sort"
	"time"
)

const healthTimeout = 3 * time.Second

// HealthChecker interface for health checking
type HealthChecker interface {
	Check(ctx context.Context) error
	Name() string
}

// CheckerFunc adapts a function to HealthChecker
type CheckerFunc struct {
	ComponentName string
	Fn            func(ctx context.Context) error
}

// Check implements HealthChecker
func (f CheckerFunc) Check(ctx context.Context) error { return f.Fn(ctx) }

// Name implements HealthChecker
func (f CheckerFunc) Name() string { return f.ComponentName }

// HealthReporter receives health results
type HealthReporter interface {
	HealthCheck(component string, healthy bool)
}

// HealthResult is the outcome of one component check
type HealthResult struct {
	Component string `json:"component"`
	Healthy   bool   `json:"healthy"`
	Error     string `json:"error,omitempty"`
}

// HealthMonitor runs registered checks and reports them
type HealthMonitor struct {
	reporter   HealthReporter
	components map[string]HealthChecker
}

// NewHealthMonitor creates a new health monitor; reporter may be nil
func NewHealthMonitor(reporter HealthReporter) *HealthMonitor {
	return &HealthMonitor{
		reporter:   reporter,
		components: make(map[string]HealthChecker),
	}
}

// RegisterComponent registers a component for health monitoring
func (h *HealthMonitor) RegisterComponent(checker HealthChecker) {
	h.components[checker.Name()] = checker
}

// CheckAll checks every component, ordered by name
func (h *HealthMonitor) CheckAll(ctx context.Context) []HealthResult {
	names := make([]string, 0, len(h.components))
	for name := range h.components {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]HealthResult, 0, len(names))
	for _, name := range names {
		results = append(results, h.check(ctx, h.components[name]))
	}
	return results
}

func (h *HealthMonitor) check(ctx context.Context, checker HealthChecker) HealthResult {
	checkCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	res := HealthResult{Component: checker.Name(), Healthy: true}
	if err := checker.Check(checkCtx); err != nil {
		res.Healthy = false
		res.Error = err.Error()
	}
	if h.reporter != nil {
		h.reporter.HealthCheck(res.Component, res.Healthy)
	}
	return res
}
