package orgaudit

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zero-day-ai/orgaudit/config"
	"github.com/zero-day-ai/orgaudit/diag"
	"github.com/zero-day-ai/orgaudit/finding"
	"github.com/zero-day-ai/orgaudit/health"
	"github.com/zero-day-ai/orgaudit/hierarchy"
	"github.com/zero-day-ai/orgaudit/sink"
)

const header = "Id,firstName,lastName,salary,managerId\n"

func newAuditor(t *testing.T, opts ...Option) *Auditor {
	t.Helper()
	a, err := New(opts...)
	require.NoError(t, err)
	return a
}

// chainCSV builds a single reporting line of n records where every
// supervisor earns 1.3 times their only report.
func chainCSV(n int) string {
	var b strings.Builder
	b.WriteString(header)
	comp := 100000.0
	for i := 1; i <= n; i++ {
		superior := ""
		if i > 1 {
			superior = fmt.Sprint(i - 1)
		}
		fmt.Fprintf(&b, "%d,P,%d,%.2f,%s\n", i, i, comp, superior)
		comp /= 1.3
	}
	return b.String()
}

func TestRun_Scenario(t *testing.T) {
	report, err := newAuditor(t).Run(context.Background(), filepath.Join("testdata", "employees.csv"))
	require.NoError(t, err)

	assert.Equal(t, 5, report.Records)
	assert.Equal(t, []int{1}, report.Roots)
	assert.Empty(t, report.Diagnostics)
	assert.True(t, report.Health.IsHealthy())

	require.Len(t, report.Findings, 1)
	f := report.Findings[0]
	assert.Equal(t, finding.KindCompensationTooLow, f.Kind)
	assert.Equal(t, 1, f.SubjectID)
	assert.Equal(t, "John Doe", f.SubjectName)
	assert.InDelta(t, 3000.0, f.Magnitude, 1e-9)
	assert.Equal(t, finding.SeverityLow, f.Severity)

	assert.Equal(t, 1, report.Detected.Total)
	assert.Equal(t, 1, report.Detected.ByKind[finding.KindCompensationTooLow])
	assert.Equal(t, report.Detected, report.Written)
}

func TestRun_SourceUnreadable(t *testing.T) {
	report, err := newAuditor(t).Run(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, ErrSourceUnreadable)
	assert.Nil(t, report)
}

func TestRunReader_MalformedRowSkipped(t *testing.T) {
	input := header +
		"1,John,Doe,60000,\n" +
		"2,Jane\n" +
		"3,Bob,Johnson,50000,1\n"

	report, err := newAuditor(t).RunReader(context.Background(), "inline", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "inline", report.Source)
	assert.Equal(t, 2, report.Records)
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, diag.KindMalformedRecord, report.Diagnostics[0].Kind)
	assert.Equal(t, 3, report.Diagnostics[0].Line)
	assert.Equal(t, health.StatusDegraded, report.Health.Status)
}

func TestRunReader_LongChain(t *testing.T) {
	for _, concurrent := range []bool{false, true} {
		t.Run(fmt.Sprintf("concurrent=%v", concurrent), func(t *testing.T) {
			cfg := config.Default()
			cfg.Analysis.Concurrent = concurrent

			report, err := newAuditor(t, WithConfig(cfg)).RunReader(context.Background(), "chain", strings.NewReader(chainCSV(7)))
			require.NoError(t, err)

			require.Len(t, report.Findings, 2)
			assert.Equal(t, 6, report.Findings[0].SubjectID)
			assert.Equal(t, 5, report.Findings[0].Depth)
			assert.Equal(t, 7, report.Findings[1].SubjectID)
			assert.Equal(t, 6, report.Findings[1].Depth)
			assert.Equal(t, 2, report.Detected.ByKind[finding.KindChainTooLong])
		})
	}
}

func TestRunReader_CyclicChainIsDiagnostic(t *testing.T) {
	input := header +
		"1,Ann,Root,100,\n" +
		"2,Ben,Loop,50,3\n" +
		"3,Cat,Loop,50,2\n"

	report, err := newAuditor(t).RunReader(context.Background(), "cycle", strings.NewReader(input))
	require.NoError(t, err)

	var cyclic int
	for _, d := range report.Diagnostics {
		if d.Kind == diag.KindCyclicChain {
			cyclic++
		}
	}
	assert.Equal(t, 2, cyclic)
	assert.Zero(t, report.Detected.ByKind[finding.KindChainTooLong])
	assert.True(t, report.Health.IsDegraded())
}

func TestRun_WithSink(t *testing.T) {
	var buf bytes.Buffer
	auditor := newAuditor(t, WithSink(sink.NewText(&buf)))

	report, err := auditor.Run(context.Background(), filepath.Join("testdata", "employees.csv"))
	require.NoError(t, err)

	assert.Nil(t, report.Findings, "findings go to the sink only")
	assert.Equal(t, "John Doe earns too little: 3000.00 (expected 63000.00..78750.00)\n", buf.String())
}

func TestRun_OutputFilter(t *testing.T) {
	cfg := config.Default()
	cfg.Output.MinSeverity = "high"

	report, err := newAuditor(t, WithConfig(cfg)).Run(context.Background(), filepath.Join("testdata", "employees.csv"))
	require.NoError(t, err)

	assert.Equal(t, 1, report.Detected.Total)
	assert.Equal(t, 0, report.Written.Total)
	assert.Empty(t, report.Findings)
}

func TestRun_WhereExpression(t *testing.T) {
	cfg := config.Default()
	cfg.Analysis.MaxChainDepth = 1
	cfg.Output.Where = `kind == "reporting_chain_too_long" && subject_name == "Tom Jackson"`

	report, err := newAuditor(t, WithConfig(cfg)).Run(context.Background(), filepath.Join("testdata", "employees.csv"))
	require.NoError(t, err)

	assert.Equal(t, 3, report.Detected.Total, "one compensation and two chain findings")
	require.Len(t, report.Findings, 1)
	assert.Equal(t, 5, report.Findings[0].SubjectID)
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "ratios", mutate: func(c *config.Config) { c.Analysis.MaxRatio = 1.0 }},
		{name: "expression", mutate: func(c *config.Config) { c.Output.Where = "depth >" }},
		{name: "non-bool expression", mutate: func(c *config.Config) { c.Output.Where = "depth + 1" }},
		{name: "format", mutate: func(c *config.Config) { c.Output.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			_, err := New(WithConfig(cfg))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

type failingSink struct{}

func (failingSink) Emit(context.Context, finding.Finding) error { return assert.AnError }
func (failingSink) Close() error                                { return nil }

func TestRun_SinkFailure(t *testing.T) {
	_, err := newAuditor(t, WithSink(failingSink{})).Run(context.Background(), filepath.Join("testdata", "employees.csv"))
	assert.ErrorIs(t, err, ErrSinkFailed)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestReport_Write(t *testing.T) {
	input := header +
		"1,John,Doe,60000,\n" +
		"2,Jane,Smith,55000,1\n" +
		"x,Bad,Row,1,1\n"

	report, err := newAuditor(t).RunReader(context.Background(), "inline", strings.NewReader(input))
	require.NoError(t, err)

	var summary bytes.Buffer
	require.NoError(t, report.WriteSummary(&summary))
	assert.Equal(t,
		"inline: 2 records, 1 findings (1 written), 1 diagnostics, health degraded\n"+
			"  Compensation Too Low: 1\n",
		summary.String())

	var diags bytes.Buffer
	require.NoError(t, report.WriteDiagnostics(&diags))
	assert.Equal(t, "malformed_record: line 4: invalid id \"x\"\n", diags.String())
}

func TestRunStore(t *testing.T) {
	b := hierarchy.NewBuilder()
	for _, r := range []hierarchy.Record{
		hierarchy.NewRecord(1, "Ann", 100, hierarchy.NoSuperior()),
		hierarchy.NewRecord(2, "Ben", 100, hierarchy.ReportsTo(1)),
		hierarchy.NewRecord(3, "Cat", 50, hierarchy.ReportsTo(9)),
	} {
		_, err := b.Add(r)
		require.NoError(t, err)
	}

	report, err := newAuditor(t).RunStore(context.Background(), "memory", b.Build(), nil)
	require.NoError(t, err)

	require.Len(t, report.Findings, 1)
	assert.Equal(t, finding.KindCompensationTooLow, report.Findings[0].Kind)
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, diag.KindDanglingSuperior, report.Diagnostics[0].Kind)
}
