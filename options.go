package orgaudit

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/zero-day-ai/orgaudit/config"
	"github.com/zero-day-ai/orgaudit/sink"
)

// Option configures an Auditor.
type Option func(*options)

// options holds configuration for an Auditor instance.
type options struct {
	cfg           *config.Config
	logger        *slog.Logger
	tracer        trace.Tracer
	meterProvider metric.MeterProvider
	sink          sink.Sink
}

// WithConfig sets the run configuration. If not provided, config.Default()
// is used.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithLogger sets a custom logger for the auditor and the packages it drives.
// If not provided, logs are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTracer sets an OpenTelemetry tracer for the analysis spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider for finding and
// diagnostic counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithSink sets where findings are written. The sink is not closed by the
// Auditor. If not provided, findings are collected in the Report.
func WithSink(s sink.Sink) Option {
	return func(o *options) {
		o.sink = s
	}
}
