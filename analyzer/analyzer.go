package analyzer

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/zero-day-ai/orgaudit/auditerr"
	"github.com/zero-day-ai/orgaudit/diag"
	"github.com/zero-day-ai/orgaudit/finding"
	"github.com/zero-day-ai/orgaudit/hierarchy"
)

// ctxCheckInterval is how many records are processed between context checks.
const ctxCheckInterval = 1024

// Sink consumes findings as they are produced.
type Sink interface {
	Emit(ctx context.Context, f finding.Finding) error
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithConfig sets the analysis thresholds.
func WithConfig(cfg Config) Option {
	return func(a *Analyzer) {
		a.cfg = cfg
	}
}

// WithLogger sets a custom logger. If not provided, logs are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithTracer sets an OpenTelemetry tracer. If not provided, a noop tracer
// is used.
func WithTracer(tracer trace.Tracer) Option {
	return func(a *Analyzer) {
		if tracer != nil {
			a.tracer = tracer
		}
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider used for finding
// and diagnostic counters. If not provided, a noop provider is used.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(a *Analyzer) {
		if mp != nil {
			a.meterProvider = mp
		}
	}
}

// Analyzer runs the compensation band and reporting-chain checks. It holds
// no per-run state and is safe for concurrent use.
type Analyzer struct {
	cfg           Config
	logger        *slog.Logger
	tracer        trace.Tracer
	meterProvider metric.MeterProvider
	metrics       *otelMetrics
}

// New creates an Analyzer. It returns an error wrapping
// auditerr.ErrInvalidConfig if the configuration is invalid.
func New(opts ...Option) (*Analyzer, error) {
	a := &Analyzer{
		cfg:           DefaultConfig(),
		logger:        slog.New(slog.DiscardHandler),
		tracer:        tracenoop.NewTracerProvider().Tracer(instrumentationName),
		meterProvider: metricnoop.NewMeterProvider(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}

	metrics, err := newOTelMetrics(a.meterProvider.Meter(instrumentationName))
	if err != nil {
		return nil, &auditerr.Error{Op: "analyzer.New", Kind: auditerr.KindInternal, Err: err}
	}
	a.metrics = metrics
	return a, nil
}

// Config returns the analyzer's configuration.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// emitFunc receives each finding as it is produced.
type emitFunc func(ctx context.Context, f *finding.Finding) error

// CheckCompensation runs the compensation band check and returns its
// findings in the order superiors were first referenced.
func (a *Analyzer) CheckCompensation(ctx context.Context, store *hierarchy.Store) ([]finding.Finding, error) {
	var out []finding.Finding
	err := a.compensation(ctx, store, collect(&out))
	return out, err
}

// CheckReportingChains runs the reporting-chain check and returns its
// findings in record input order. Broken and cyclic chains are added to
// diags.
func (a *Analyzer) CheckReportingChains(ctx context.Context, store *hierarchy.Store, diags *diag.Set) ([]finding.Finding, error) {
	var out []finding.Finding
	err := a.reportingChains(ctx, store, diags, collect(&out))
	return out, err
}

// Analyze runs both checks and returns compensation findings followed by
// chain findings.
func (a *Analyzer) Analyze(ctx context.Context, store *hierarchy.Store, diags *diag.Set) ([]finding.Finding, error) {
	var out []finding.Finding
	err := a.run(ctx, store, diags, collect(&out))
	return out, err
}

// Run runs both checks and streams every finding to sink. A sink error
// stops the run and is returned wrapping auditerr.ErrSinkFailed.
func (a *Analyzer) Run(ctx context.Context, store *hierarchy.Store, diags *diag.Set, sink Sink) error {
	return a.run(ctx, store, diags, func(ctx context.Context, f *finding.Finding) error {
		if err := sink.Emit(ctx, *f); err != nil {
			return auditerr.NewOutputError("analyzer.Run", err)
		}
		return nil
	})
}

func (a *Analyzer) run(ctx context.Context, store *hierarchy.Store, diags *diag.Set, emit emitFunc) (err error) {
	if diags == nil {
		diags = &diag.Set{}
	}

	ctx, span := a.tracer.Start(ctx, "orgaudit.analyze", trace.WithAttributes(
		attribute.Int("hierarchy.records", store.Len()),
		attribute.Int("hierarchy.roots", len(store.Roots())),
		attribute.Bool("analyzer.concurrent", a.cfg.Concurrent),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()
	a.metrics.recordsHistogram.Record(ctx, int64(store.Len()))

	if !a.cfg.Concurrent {
		if err := a.compensation(ctx, store, emit); err != nil {
			return err
		}
		return a.reportingChains(ctx, store, diags, emit)
	}

	var compensation, chains []*finding.Finding
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.compensation(gctx, store, buffer(&compensation))
	})
	g.Go(func() error {
		return a.reportingChains(gctx, store, diags, buffer(&chains))
	})
	if err := g.Wait(); err != nil {
		return err
	}

	for _, f := range append(compensation, chains...) {
		if err := emit(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) compensation(ctx context.Context, store *hierarchy.Store, emit emitFunc) error {
	ctx, span := a.tracer.Start(ctx, "orgaudit.compensation")
	defer span.End()

	checked, emitted := 0, 0
	for i, superiorID := range store.Superiors() {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		superior, ok := store.Get(superiorID)
		if !ok {
			a.logger.DebugContext(ctx, "skipping compensation check for missing superior", "superior_id", superiorID)
			continue
		}
		subordinates := store.SubordinatesOf(superiorID)
		if len(subordinates) == 0 {
			continue
		}
		checked++

		band := a.band(subordinates)
		f := finding.NewCompensationAnomaly(superior.ID, superior.DisplayName, superior.Compensation, band)
		if f == nil {
			continue
		}
		a.metrics.recordFinding(ctx, f)
		if err := emit(ctx, f); err != nil {
			return err
		}
		emitted++
	}

	span.SetAttributes(
		attribute.Int("compensation.superiors_checked", checked),
		attribute.Int("compensation.findings", emitted),
	)
	a.logger.DebugContext(ctx, "compensation check complete", "superiors", checked, "findings", emitted)
	return nil
}

// band returns the expected compensation range for a supervisor of subs.
func (a *Analyzer) band(subs []hierarchy.Record) finding.Band {
	var total float64
	for _, s := range subs {
		total += s.Compensation
	}
	avg := total / float64(len(subs))
	return finding.Band{
		Min: avg * a.cfg.MinRatio,
		Max: avg * a.cfg.MaxRatio,
	}
}

func (a *Analyzer) reportingChains(ctx context.Context, store *hierarchy.Store, diags *diag.Set, emit emitFunc) error {
	ctx, span := a.tracer.Start(ctx, "orgaudit.reporting_chains", trace.WithAttributes(
		attribute.Int("chain.limit", a.cfg.MaxChainDepth),
	))
	defer span.End()

	report := func(d diag.Diagnostic) {
		diags.Add(d)
		a.metrics.recordDiagnostic(ctx, d.Kind)
		a.logger.LogAttrs(ctx, d.Kind.Level(), d.Reason, d.LogAttrs()...)
	}

	walker := newChainWalker(store, func(holder hierarchy.Record, missing int) {
		report(diag.ForRecord(diag.KindDanglingSuperior, holder.ID,
			fmt.Sprintf("superior %d does not exist; chain treated as reaching a root", missing)))
	})

	walked, cyclic, emitted := 0, 0, 0
	for i, rec := range store.All() {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if rec.IsRoot() {
			continue
		}
		walked++

		res := walker.resolve(rec.ID)
		if res.Cyclic {
			cyclic++
			report(diag.ForRecord(diag.KindCyclicChain, rec.ID, "reporting chain never reaches a root"))
			continue
		}

		f := finding.NewChainTooLong(rec.ID, rec.DisplayName, res.Depth, a.cfg.MaxChainDepth)
		if f == nil {
			continue
		}
		a.metrics.recordFinding(ctx, f)
		if err := emit(ctx, f); err != nil {
			return err
		}
		emitted++
	}

	span.SetAttributes(
		attribute.Int("chain.records_walked", walked),
		attribute.Int("chain.cyclic", cyclic),
		attribute.Int("chain.findings", emitted),
	)
	a.logger.DebugContext(ctx, "reporting chain check complete", "records", walked, "cyclic", cyclic, "findings", emitted)
	return nil
}

func collect(out *[]finding.Finding) emitFunc {
	return func(_ context.Context, f *finding.Finding) error {
		*out = append(*out, *f)
		return nil
	}
}

func buffer(out *[]*finding.Finding) emitFunc {
	return func(_ context.Context, f *finding.Finding) error {
		*out = append(*out, f)
		return nil
	}
}
