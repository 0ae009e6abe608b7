// Package finding provides the types reported by hierarchy analysis.
//
// A Finding is discriminated by its Kind:
//   - KindCompensationTooLow and KindCompensationTooHigh report a supervisor
//     whose compensation falls outside the band derived from the average of
//     their direct reports. Magnitude is the distance to the violated bound.
//   - KindChainTooLong reports a record whose reporting chain is deeper than
//     the configured limit. Depth is the number of superior hops to a root.
//
// # Severity
//
// Severity is derived from the payload when a finding is created, so
// findings can be ranked and filtered without knowing their kind.
//
// # Filtering
//
// Filter matches findings by kind, minimum severity and subject. Expression
// compiles a CEL predicate over a finding's fields:
//
//	expr, err := finding.CompileExpression(`kind == "compensation_too_low" && magnitude > 1000.0`)
//	if err != nil {
//		return err
//	}
//	ok, err := expr.Matches(f)
package finding
