package orgaudit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/zero-day-ai/orgaudit/analyzer"
	"github.com/zero-day-ai/orgaudit/auditerr"
	"github.com/zero-day-ai/orgaudit/config"
	"github.com/zero-day-ai/orgaudit/diag"
	"github.com/zero-day-ai/orgaudit/finding"
	"github.com/zero-day-ai/orgaudit/health"
	"github.com/zero-day-ai/orgaudit/hierarchy"
	"github.com/zero-day-ai/orgaudit/sink"
	"github.com/zero-day-ai/orgaudit/source"
)

// Auditor loads a record source and runs both analyses over it. An Auditor
// holds no per-run state and may be reused.
type Auditor struct {
	cfg      *config.Config
	logger   *slog.Logger
	loader   *source.Loader
	analyzer *analyzer.Analyzer
	filter   finding.Filter
	expr     *finding.Expression
	out      sink.Sink
}

// New creates an Auditor. It returns an error wrapping ErrInvalidConfig if
// the configuration or its output expression is invalid.
func New(opts ...Option) (*Auditor, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.cfg == nil {
		o.cfg = config.Default()
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	filter, err := o.cfg.Filter()
	if err != nil {
		return nil, auditerr.NewConfigurationError("orgaudit.New", err)
	}
	expr, err := o.cfg.Expression()
	if err != nil {
		return nil, err
	}

	an, err := analyzer.New(
		analyzer.WithConfig(o.cfg.Analysis),
		analyzer.WithLogger(o.logger),
		analyzer.WithTracer(o.tracer),
		analyzer.WithMeterProvider(o.meterProvider),
	)
	if err != nil {
		return nil, err
	}

	return &Auditor{
		cfg:    o.cfg,
		logger: o.logger,
		loader: source.New(
			source.WithLogger(o.logger),
			source.WithHeader(!o.cfg.Source.NoHeader),
		),
		analyzer: an,
		filter:   filter,
		expr:     expr,
		out:      o.sink,
	}, nil
}

// Config returns the auditor's configuration.
func (a *Auditor) Config() *config.Config {
	return a.cfg
}

// Run loads the records at path and analyzes them. Ingestion completes
// before analysis starts. If the source cannot be read, the returned error
// wraps ErrSourceUnreadable and no analysis is attempted.
func (a *Auditor) Run(ctx context.Context, path string) (*Report, error) {
	start := time.Now()
	diags := &diag.Set{}
	store, err := a.loader.LoadFile(ctx, path, diags)
	if err != nil {
		a.logger.ErrorContext(ctx, "failed to load records", "path", path, "error", err)
		return nil, err
	}
	return a.analyze(ctx, path, store, diags, start)
}

// RunReader is like Run but reads records from r. name identifies the
// source in the Report.
func (a *Auditor) RunReader(ctx context.Context, name string, r io.Reader) (*Report, error) {
	start := time.Now()
	diags := &diag.Set{}
	store, err := a.loader.Load(ctx, r, diags)
	if err != nil {
		a.logger.ErrorContext(ctx, "failed to load records", "source", name, "error", err)
		return nil, err
	}
	return a.analyze(ctx, name, store, diags, start)
}

// RunStore analyzes an already built store. Diagnostics from building the
// store may be passed in diags, which may be nil.
func (a *Auditor) RunStore(ctx context.Context, name string, store *hierarchy.Store, diags *diag.Set) (*Report, error) {
	if diags == nil {
		diags = &diag.Set{}
	}
	return a.analyze(ctx, name, store, diags, time.Now())
}

func (a *Auditor) analyze(ctx context.Context, name string, store *hierarchy.Store, diags *diag.Set, start time.Time) (*Report, error) {
	var memory *sink.Memory
	out := a.out
	if out == nil {
		memory = sink.NewMemory()
		out = memory
	}

	written := newTally(out)
	detected := newTally(sink.NewFiltered(written, a.filter, a.expr))

	if err := a.analyzer.Run(ctx, store, diags, detected); err != nil {
		return nil, err
	}

	roots := store.Roots()
	report := &Report{
		Source:      name,
		Records:     store.Len(),
		Roots:       make([]int, 0, len(roots)),
		Detected:    detected.summary(),
		Written:     written.summary(),
		Diagnostics: diags.All(),
		Health:      health.Evaluate(store, diags),
		Duration:    time.Since(start),
	}
	for _, r := range roots {
		report.Roots = append(report.Roots, r.ID)
	}
	if memory != nil {
		report.Findings = memory.Findings()
	}

	a.logger.InfoContext(ctx, "audit complete",
		"source", name,
		"records", report.Records,
		"findings", report.Detected.Total,
		"written", report.Written.Total,
		"diagnostics", len(report.Diagnostics),
		"health", report.Health.Status,
		"duration", report.Duration)
	return report, nil
}

// Summary counts findings by kind and severity.
type Summary struct {
	Total      int                      `json:"total"`
	ByKind     map[finding.Kind]int     `json:"by_kind,omitempty"`
	BySeverity map[finding.Severity]int `json:"by_severity,omitempty"`
}

// Report is the outcome of one audit run.
type Report struct {
	// Source names the record source.
	Source string `json:"source"`

	// Records is the number of records loaded.
	Records int `json:"records"`

	// Roots lists the rootless record ids in input order.
	Roots []int `json:"roots"`

	// Detected counts every finding the analysis produced.
	Detected Summary `json:"detected"`

	// Written counts the findings that passed output filtering.
	Written Summary `json:"written"`

	// Findings holds the written findings when no sink was configured.
	Findings []finding.Finding `json:"findings,omitempty"`

	// Diagnostics lists recoverable problems in the order found.
	Diagnostics []diag.Diagnostic `json:"diagnostics,omitempty"`

	// Health summarizes how far the results can be relied on.
	Health health.Status `json:"health"`

	// Duration is the wall time of the run.
	Duration time.Duration `json:"duration"`
}

// WriteSummary writes a short human-readable summary of the run.
func (r *Report) WriteSummary(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s: %d records, %d findings (%d written), %d diagnostics, health %s\n",
		r.Source, r.Records, r.Detected.Total, r.Written.Total, len(r.Diagnostics), r.Health.Status)
	if err != nil {
		return err
	}
	for _, kind := range finding.AllKinds() {
		if n := r.Detected.ByKind[kind]; n > 0 {
			if _, err := fmt.Fprintf(w, "  %s: %d\n", kind.DisplayName(), n); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteDiagnostics writes one line per diagnostic.
func (r *Report) WriteDiagnostics(w io.Writer) error {
	for _, d := range r.Diagnostics {
		if _, err := fmt.Fprintln(w, d.String()); err != nil {
			return err
		}
	}
	return nil
}

// tally counts findings on their way to the next sink.
type tally struct {
	next sink.Sink

	mu         sync.Mutex
	total      int
	byKind     map[finding.Kind]int
	bySeverity map[finding.Severity]int
}

func newTally(next sink.Sink) *tally {
	return &tally{
		next:       next,
		byKind:     make(map[finding.Kind]int),
		bySeverity: make(map[finding.Severity]int),
	}
}

func (t *tally) Emit(ctx context.Context, f finding.Finding) error {
	t.mu.Lock()
	t.total++
	t.byKind[f.Kind]++
	t.bySeverity[f.Severity]++
	t.mu.Unlock()
	return t.next.Emit(ctx, f)
}

// Close is a no-op. The caller owns the configured sink.
func (t *tally) Close() error {
	return nil
}

func (t *tally) summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := Summary{
		Total:      t.total,
		ByKind:     make(map[finding.Kind]int, len(t.byKind)),
		BySeverity: make(map[finding.Severity]int, len(t.bySeverity)),
	}
	for k, n := range t.byKind {
		s.ByKind[k] = n
	}
	for k, n := range t.bySeverity {
		s.BySeverity[k] = n
	}
	return s
}
