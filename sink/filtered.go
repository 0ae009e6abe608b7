package sink

import (
	"context"

	"github.com/zero-day-ai/orgaudit/finding"
)

// Filtered forwards only the findings that match both a finding.Filter and,
// if set, a compiled expression.
type Filtered struct {
	next   Sink
	filter finding.Filter
	expr   *finding.Expression
}

// NewFiltered wraps next. expr may be nil.
func NewFiltered(next Sink, filter finding.Filter, expr *finding.Expression) *Filtered {
	return &Filtered{next: next, filter: filter, expr: expr}
}

// Emit forwards f if it matches. An expression evaluation error is returned
// and f is dropped.
func (s *Filtered) Emit(ctx context.Context, f finding.Finding) error {
	if !s.filter.Matches(f) {
		return nil
	}
	if s.expr != nil {
		ok, err := s.expr.Matches(f)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	return s.next.Emit(ctx, f)
}

// Close closes the wrapped sink.
func (s *Filtered) Close() error {
	return s.next.Close()
}
