package analyzer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/zero-day-ai/orgaudit/diag"
	"github.com/zero-day-ai/orgaudit/finding"
)

// instrumentationName identifies this package to tracer and meter providers.
const instrumentationName = "github.com/zero-day-ai/orgaudit/analyzer"

// otelMetrics holds the metric instruments for the analyzer.
type otelMetrics struct {
	// findingCounter counts findings by kind and severity
	findingCounter metric.Int64Counter

	// diagnosticCounter counts diagnostics raised during analysis by kind
	diagnosticCounter metric.Int64Counter

	// recordsHistogram records the size of each analyzed store
	recordsHistogram metric.Int64Histogram
}

func newOTelMetrics(meter metric.Meter) (*otelMetrics, error) {
	m := &otelMetrics{}
	var err error

	m.findingCounter, err = meter.Int64Counter(
		"orgaudit.findings",
		metric.WithDescription("Number of findings emitted"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create findings counter: %w", err)
	}

	m.diagnosticCounter, err = meter.Int64Counter(
		"orgaudit.diagnostics",
		metric.WithDescription("Number of diagnostics raised during analysis"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create diagnostics counter: %w", err)
	}

	m.recordsHistogram, err = meter.Int64Histogram(
		"orgaudit.records",
		metric.WithDescription("Number of records in each analyzed hierarchy"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create records histogram: %w", err)
	}

	return m, nil
}

func (m *otelMetrics) recordFinding(ctx context.Context, f *finding.Finding) {
	m.findingCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("finding.kind", f.Kind.String()),
		attribute.String("finding.severity", f.Severity.String()),
	))
}

func (m *otelMetrics) recordDiagnostic(ctx context.Context, kind diag.Kind) {
	m.diagnosticCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("diagnostic.kind", kind.String()),
	))
}
