// Package diag records recoverable input problems found while loading or
// analyzing a hierarchy. Each problem is a Diagnostic with a Kind, so callers
// can count and assert on them instead of scraping log output.
package diag

import (
	"fmt"
	"log/slog"
	"sync"
)

// Kind classifies a diagnostic.
type Kind string

const (
	// KindMalformedRecord indicates a source row was rejected and skipped.
	KindMalformedRecord Kind = "malformed_record"

	// KindDanglingSuperior indicates a superior reference that does not
	// resolve to any record. The chain walk treats it as reaching a root.
	KindDanglingSuperior Kind = "dangling_superior"

	// KindCyclicChain indicates a reporting chain that never reaches a root.
	KindCyclicChain Kind = "cyclic_chain"

	// KindAdditionalRoot indicates a rootless record seen after the
	// designated root. The record is kept as another root of the forest.
	KindAdditionalRoot Kind = "additional_root"
)

// IsValid returns true if the kind is known.
func (k Kind) IsValid() bool {
	switch k {
	case KindMalformedRecord, KindDanglingSuperior, KindCyclicChain, KindAdditionalRoot:
		return true
	default:
		return false
	}
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// Level returns the log level a diagnostic of this kind is reported at.
func (k Kind) Level() slog.Level {
	if k == KindAdditionalRoot {
		return slog.LevelInfo
	}
	return slog.LevelWarn
}

// AllKinds returns all known kinds.
func AllKinds() []Kind {
	return []Kind{
		KindMalformedRecord,
		KindDanglingSuperior,
		KindCyclicChain,
		KindAdditionalRoot,
	}
}

// Diagnostic is one recoverable problem.
type Diagnostic struct {
	// Kind classifies the problem.
	Kind Kind `json:"kind"`

	// Line is the 1-based source line, or 0 when not tied to a line.
	Line int `json:"line,omitempty"`

	// RecordID is the record the problem concerns, if known.
	RecordID *int `json:"record_id,omitempty"`

	// Reason is a human-readable description.
	Reason string `json:"reason"`
}

// New creates a Diagnostic that is not tied to a record.
func New(kind Kind, line int, reason string) Diagnostic {
	return Diagnostic{Kind: kind, Line: line, Reason: reason}
}

// ForRecord creates a Diagnostic about the record with the given id.
func ForRecord(kind Kind, id int, reason string) Diagnostic {
	return Diagnostic{Kind: kind, RecordID: &id, Reason: reason}
}

// String formats the diagnostic for humans.
func (d Diagnostic) String() string {
	switch {
	case d.Line > 0 && d.RecordID != nil:
		return fmt.Sprintf("%s: line %d: record %d: %s", d.Kind, d.Line, *d.RecordID, d.Reason)
	case d.Line > 0:
		return fmt.Sprintf("%s: line %d: %s", d.Kind, d.Line, d.Reason)
	case d.RecordID != nil:
		return fmt.Sprintf("%s: record %d: %s", d.Kind, *d.RecordID, d.Reason)
	default:
		return fmt.Sprintf("%s: %s", d.Kind, d.Reason)
	}
}

// LogAttrs returns slog attributes describing the diagnostic.
func (d Diagnostic) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{slog.String("kind", d.Kind.String())}
	if d.Line > 0 {
		attrs = append(attrs, slog.Int("line", d.Line))
	}
	if d.RecordID != nil {
		attrs = append(attrs, slog.Int("record_id", *d.RecordID))
	}
	return attrs
}

// Set is an ordered collection of diagnostics. The zero value is ready to
// use and Set is safe for concurrent use.
type Set struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Add appends diagnostics in order.
func (s *Set) Add(ds ...Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, ds...)
}

// All returns a copy of every diagnostic in the order added.
func (s *Set) All() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Diagnostic, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of diagnostics.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Count returns the number of diagnostics of the given kind.
func (s *Set) Count(kind Kind) int {
	return len(s.OfKind(kind))
}

// OfKind returns the diagnostics of the given kind in order.
func (s *Set) OfKind(kind Kind) []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Diagnostic
	for _, d := range s.items {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Counts returns the number of diagnostics per kind. Kinds with no
// diagnostics are omitted.
func (s *Set) Counts() map[Kind]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[Kind]int)
	for _, d := range s.items {
		out[d.Kind]++
	}
	return out
}
