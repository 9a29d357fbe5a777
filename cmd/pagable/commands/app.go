package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/planetsclub/pagable/config"
	"github.com/planetsclub/pagable/data/metrics"
	"github.com/planetsclub/pagable/data/search"
	"github.com/planetsclub/pagable/logging/logger"
	"github.com/planetsclub/pagable/logging/observes"
	"github.com/planetsclub/pagable/paging"
	"github.com/planetsclub/pagable/version"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	// Register search engines
	_ "github.com/planetsclub/pagable/data/search/elasticsearch"
	_ "github.com/planetsclub/pagable/data/search/memory"
	_ "github.com/planetsclub/pagable/data/search/opensearch"
)

const shutdownTimeout = 5 * time.Second

// app holds everything a command needs, built from one config file
type app struct {
	cfg       *config.Config
	client    *search.Client
	paginator *paging.Paginator
	health    *metrics.HealthMonitor
	cleanups  []func()
}

func newApp(ctx context.Context, configPath string) (_ *app, err error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	logger.SetVersion(version.GetVersionInfo().Version)
	cleanupLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a.cleanups = append(a.cleanups, cleanupLogger)

	if err := a.initObserves(ctx); err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(cfg.Observes.Metrics.Namespace, registry)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	if addr := cfg.Observes.Metrics.Addr; addr != "" {
		a.serveMetrics(ctx, addr, registry)
	}

	client, closeSearch, err := search.Open(cfg.Search, collector)
	if err != nil {
		return nil, fmt.Errorf("open search: %w", err)
	}
	a.cleanups = append(a.cleanups, closeSearch)
	a.client = client

	if cfg.Logger.SearchHook {
		logger.StdLogger().AddHook(logger.NewSearchHook(client, cfg.Logger.IndexName, logrus.WarnLevel))
	}

	var backend search.Backend = client
	if b := cfg.Search.Breaker; b != nil && b.Enabled {
		backend = search.NewBreaker("search", client, *b, collector.BreakerStateChange)
	}

	opts := []paging.Option{
		paging.WithLogger(logger.StdLogger()),
		paging.WithObserver(collector),
		paging.WithWindow(cfg.Paging.DefaultWindow, cfg.Paging.MaxWindow),
	}
	if cfg.Paging.TrackTotalHits != nil {
		opts = append(opts, paging.WithTrackTotalHits(cfg.Paging.TrackTotalHits))
	}
	a.paginator = paging.New(backend, opts...)

	a.health = metrics.NewHealthMonitor(collector)
	for _, engine := range client.Engines() {
		engine := engine
		a.health.RegisterComponent(metrics.CheckerFunc{
			ComponentName: "search." + string(engine),
			Fn: func(ctx context.Context) error {
				return client.CheckEngine(ctx, engine)
			},
		})
	}

	logger.Debugf(ctx, "pagable ready on %s engine", client.GetEngine())
	return a, nil
}

func (a *app) initObserves(ctx context.Context) error {
	obs := a.cfg.Observes

	if t := obs.Tracer; t != nil && t.Endpoint != "" {
		shutdown, err := observes.NewTracer(ctx, &observes.TracerOption{
			URL:                t.Endpoint,
			Name:               t.ServiceName,
			Version:            version.GetVersionInfo().Version,
			Environment:        t.Environment,
			SamplingRate:       t.SamplingRate,
			BatchTimeout:       t.BatchTimeout,
			ExportTimeout:      t.ExportTimeout,
			MaxExportBatchSize: t.MaxExportBatchSize,
			Headers:            t.Headers,
		})
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		a.cleanups = append(a.cleanups, func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				logger.Warnf(ctx, "tracer shutdown: %v", err)
			}
		})
	}

	if s := obs.Sentry; s != nil && s.Endpoint != "" {
		flush, err := observes.NewSentry(&observes.SentryOptions{
			Dsn:         s.Endpoint,
			Name:        a.cfg.AppName,
			Release:     s.Release,
			Environment: s.Environment,
			SampleRate:  s.SampleRate,
		})
		if err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		logger.StdLogger().AddHook(observes.NewSentryHook())
		a.cleanups = append(a.cleanups, flush)
	}
	return nil
}

func (a *app) serveMetrics(ctx context.Context, addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(ctx, "metrics server: %v", err)
		}
	}()
	a.cleanups = append(a.cleanups, func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
}

// Close releases resources in reverse order of acquisition
func (a *app) Close() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
	a.cleanups = nil
}
