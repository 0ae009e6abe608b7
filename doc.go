// Package orgaudit audits a workforce hierarchy for compensation and
// reporting-line anomalies.
//
// The hierarchy is loaded from a flat comma-delimited record set (id, first
// name, last name, compensation and an optional superior id). Two checks run
// over the loaded hierarchy:
//
//   - Compensation band: every supervisor should earn between MinRatio and
//     MaxRatio times the average compensation of their direct reports
//   - Reporting chain: no record should be more than MaxChainDepth hops away
//     from a root
//
// Rows that cannot be parsed, superior references that point nowhere and
// cyclic chains do not stop the run. They are collected as diagnostics and
// returned in the Report.
//
// # Getting Started
//
//	auditor, err := orgaudit.New(
//	    orgaudit.WithLogger(logger),
//	    orgaudit.WithSink(sink.NewText(os.Stdout)),
//	)
//	if err != nil {
//	    return err
//	}
//
//	report, err := auditor.Run(ctx, "employees.csv")
//	if errors.Is(err, orgaudit.ErrSourceUnreadable) {
//	    // nothing was analyzed
//	}
//
// # Packages
//
//   - hierarchy: records and the indexed Store
//   - source: CSV ingestion into a Store
//   - analyzer: the compensation and reporting-chain checks
//   - finding: finding types, severities and filters
//   - sink: text, JSONL and CSV output
//   - diag: recoverable input problems
//   - health: run health summary
//   - config: YAML run configuration
package orgaudit
