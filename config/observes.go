package config

import (
	"time"

	"github.com/spf13/viper"
)

// Sentry config struct
type Sentry struct {
	Endpoint    string  `json:"endpoint" yaml:"endpoint"`
	Environment string  `json:"environment" yaml:"environment"`
	Release     string  `json:"release" yaml:"release"`
	SampleRate  float64 `json:"sample_rate" yaml:"sample_rate" validate:"gte=0,lte=1"`
}

// Tracer config struct for OpenTelemetry
type Tracer struct {
	Endpoint       string `json:"endpoint" yaml:"endpoint"` // OTLP gRPC endpoint
	ServiceName    string `json:"service_name" yaml:"service_name"`
	ServiceVersion string `json:"service_version" yaml:"service_version"`
	Environment    string `json:"environment" yaml:"environment"`

	SamplingRate float64 `json:"sampling_rate" yaml:"sampling_rate" validate:"gte=0,lte=1"`

	MaxExportBatchSize int           `json:"max_export_batch_size" yaml:"max_export_batch_size"`
	BatchTimeout       time.Duration `json:"batch_timeout" yaml:"batch_timeout"`
	ExportTimeout      time.Duration `json:"export_timeout" yaml:"export_timeout"`

	Headers map[string]string `json:"headers" yaml:"headers"`
}

// Metrics config struct
type Metrics struct {
	// Addr serves /metrics when set, e.g. ":9090".
	Addr      string `json:"addr" yaml:"addr" validate:"omitempty,hostname_port"`
	Namespace string `json:"namespace" yaml:"namespace"`
}

// Observes config struct
type Observes struct {
	Sentry  *Sentry
	Tracer  *Tracer
	Metrics *Metrics
}

func getObservesConfig(v *viper.Viper) *Observes {
	return &Observes{
		Sentry: &Sentry{
			Endpoint:    v.GetString("observes.sentry.endpoint"),
			Environment: v.GetString("observes.sentry.environment"),
			Release:     v.GetString("observes.sentry.release"),
			SampleRate:  getFloat64OrDefault(v, "observes.sentry.sample_rate", 1.0),
		},
		Tracer: &Tracer{
			Endpoint:           v.GetString("observes.tracer.endpoint"),
			ServiceName:        getStringOrDefault(v, "observes.tracer.service_name", v.GetString("app_name")),
			ServiceVersion:     v.GetString("observes.tracer.service_version"),
			Environment:        getStringOrDefault(v, "observes.tracer.environment", v.GetString("run_mode")),
			SamplingRate:       getFloat64OrDefault(v, "observes.tracer.sampling_rate", 1.0),
			MaxExportBatchSize: getIntOrDefault(v, "observes.tracer.max_export_batch_size", 512),
			BatchTimeout:       getDurationOrDefault(v, "observes.tracer.batch_timeout", 5*time.Second),
			ExportTimeout:      getDurationOrDefault(v, "observes.tracer.export_timeout", 30*time.Second),
			Headers:            v.GetStringMapString("observes.tracer.headers"),
		},
		Metrics: &Metrics{
			Addr:      v.GetString("observes.metrics.addr"),
			Namespace: getStringOrDefault(v, "observes.metrics.namespace", "pagable"),
		},
	}
}
