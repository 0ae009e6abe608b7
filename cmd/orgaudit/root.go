package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zero-day-ai/orgaudit"
	"github.com/zero-day-ai/orgaudit/auditerr"
	"github.com/zero-day-ai/orgaudit/config"
	"github.com/zero-day-ai/orgaudit/sink"
)

// flags holds the command line values. Only flags the user set override the
// configuration file.
type flags struct {
	configPath  string
	format      string
	output      string
	minRatio    float64
	maxRatio    float64
	maxDepth    int
	where       string
	minSeverity string
	kinds       []string
	concurrent  bool
	diagnostics bool
	summary     bool
	noHeader    bool
	logLevel    string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "orgaudit [file]",
		Short: "Audit a workforce hierarchy for compensation and reporting-line anomalies",
		Long: `Loads a comma-delimited record set (Id, firstName, lastName, salary,
managerId) and reports:
  - supervisors paid outside min-ratio..max-ratio times the average of
    their direct reports
  - records more than max-depth hops away from the root

Malformed rows, dangling manager references and cyclic reporting lines are
skipped and counted as diagnostics.

Examples:
  orgaudit                              # reads employees.csv
  orgaudit staff.csv --format csv -o findings.csv
  orgaudit --max-depth 6 --min-severity medium
  orgaudit --where 'kind == "compensation_too_high" && magnitude > 10000'`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, f, stdout, stderr)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.configPath, "config", "c", "", "path to an orgaudit YAML configuration file")
	fs.StringVarP(&f.format, "format", "f", string(sink.FormatText), "output format: text, jsonl or csv")
	fs.StringVarP(&f.output, "output", "o", "", "write findings to this file instead of stdout")
	fs.Float64Var(&f.minRatio, "min-ratio", config.Default().Analysis.MinRatio, "lower bound multiplier of the expected compensation band")
	fs.Float64Var(&f.maxRatio, "max-ratio", config.Default().Analysis.MaxRatio, "upper bound multiplier of the expected compensation band")
	fs.IntVar(&f.maxDepth, "max-depth", config.Default().Analysis.MaxChainDepth, "longest reporting line that is not reported")
	fs.StringVar(&f.where, "where", "", "CEL expression findings must satisfy to be written")
	fs.StringVar(&f.minSeverity, "min-severity", "", "drop findings below this severity: low, medium or high")
	fs.StringSliceVar(&f.kinds, "kind", nil, "only write findings of these kinds (repeatable)")
	fs.BoolVar(&f.concurrent, "concurrent", false, "run both checks in parallel")
	fs.BoolVar(&f.diagnostics, "diagnostics", false, "print diagnostics to stderr")
	fs.BoolVar(&f.summary, "summary", false, "print a run summary to stderr")
	fs.BoolVar(&f.noHeader, "no-header", false, "the input has no header row")
	fs.StringVar(&f.logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	return cmd
}

// loadConfig reads the configuration file, if any, and applies the flags
// that were set explicitly.
func loadConfig(cmd *cobra.Command, args []string, f *flags) (*config.Config, error) {
	cfg := config.Default()
	cfg.Log.Level = "warn"
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if len(args) == 1 {
		cfg.Source.Path = args[0]
	}
	if changed("no-header") {
		cfg.Source.NoHeader = f.noHeader
	}
	if changed("format") {
		cfg.Output.Format = f.format
	}
	if changed("output") {
		cfg.Output.Path = f.output
	}
	if changed("min-ratio") {
		cfg.Analysis.MinRatio = f.minRatio
	}
	if changed("max-ratio") {
		cfg.Analysis.MaxRatio = f.maxRatio
	}
	if changed("max-depth") {
		cfg.Analysis.MaxChainDepth = f.maxDepth
	}
	if changed("concurrent") {
		cfg.Analysis.Concurrent = f.concurrent
	}
	if changed("where") {
		cfg.Output.Where = f.where
	}
	if changed("min-severity") {
		cfg.Output.MinSeverity = f.minSeverity
	}
	if changed("kind") {
		cfg.Output.Kinds = f.kinds
	}
	if changed("diagnostics") {
		cfg.Output.Diagnostics = f.diagnostics
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cmd *cobra.Command, args []string, f *flags, stdout, stderr io.Writer) (err error) {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd, args, f)
	if err != nil {
		return err
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return auditerr.NewConfigurationError("cmd.run", err)
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	format, err := sink.ParseFormat(cfg.Output.Format)
	if err != nil {
		return auditerr.NewConfigurationError("cmd.run", err)
	}

	w := stdout
	if cfg.Output.Path != "" {
		file, ferr := os.Create(cfg.Output.Path)
		if ferr != nil {
			return auditerr.NewOutputError("cmd.run", ferr).
				WithContext(map[string]any{"path": cfg.Output.Path})
		}
		defer func() {
			if cerr := file.Close(); cerr != nil && err == nil {
				err = auditerr.NewOutputError("cmd.run", cerr)
			}
		}()
		w = file
	}

	out, err := sink.New(format, w)
	if err != nil {
		return auditerr.NewConfigurationError("cmd.run", err)
	}

	auditor, err := orgaudit.New(
		orgaudit.WithConfig(cfg),
		orgaudit.WithLogger(logger),
		orgaudit.WithSink(out),
	)
	if err != nil {
		return err
	}

	report, err := auditor.Run(ctx, cfg.Source.Path)
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return auditerr.NewOutputError("cmd.run", err)
	}

	if cfg.Output.Diagnostics {
		if err := report.WriteDiagnostics(stderr); err != nil {
			return fmt.Errorf("write diagnostics: %w", err)
		}
	}
	if f.summary {
		if err := report.WriteSummary(stderr); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	return nil
}
