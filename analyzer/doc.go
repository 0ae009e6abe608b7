// Package analyzer runs the two hierarchy checks over a frozen
// hierarchy.Store:
//
//   - the compensation band check (CheckCompensation) compares every
//     supervisor's compensation with the average of their direct reports;
//   - the reporting-chain check (CheckReportingChains) walks every non-root
//     record up to a root and reports chains deeper than the limit.
//
// Both checks only read the Store. Run streams findings to a Sink as they
// are produced; Analyze collects them. With Config.Concurrent the checks run
// in parallel and their findings are merged in the same order as a
// sequential run.
//
// Chain walks are iterative and memoized. A reference to a missing record
// ends the walk as if a root had been reached and is reported as a
// diag.KindDanglingSuperior diagnostic. A chain that revisits a record never
// reaches a root; every record on or leading into such a cycle is reported
// as diag.KindCyclicChain instead of producing a depth finding.
package analyzer
