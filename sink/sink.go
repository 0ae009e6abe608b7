// Package sink provides destinations for findings produced by the analyzer.
//
// Every sink implements Sink. Writers that buffer output (CSV) flush on
// Close, so callers should always close a sink when the run ends. All sinks
// are safe for concurrent use.
package sink

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/zero-day-ai/orgaudit/finding"
)

// Sink consumes findings.
type Sink interface {
	// Emit writes one finding.
	Emit(ctx context.Context, f finding.Finding) error

	// Close flushes buffered output. It does not close the underlying writer.
	Close() error
}

// Format names an output format.
type Format string

const (
	// FormatText writes one human-readable line per finding.
	FormatText Format = "text"

	// FormatJSONL writes one JSON object per line.
	FormatJSONL Format = "jsonl"

	// FormatCSV writes a header row followed by one row per finding.
	FormatCSV Format = "csv"
)

// IsValid returns true if the format is valid.
func (f Format) IsValid() bool {
	switch f {
	case FormatText, FormatJSONL, FormatCSV:
		return true
	default:
		return false
	}
}

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// ParseFormat parses a string into a Format value.
func ParseFormat(s string) (Format, error) {
	format := Format(s)
	if !format.IsValid() {
		return "", fmt.Errorf("invalid output format: %s", s)
	}
	return format, nil
}

// AllFormats returns all valid formats.
func AllFormats() []Format {
	return []Format{FormatText, FormatJSONL, FormatCSV}
}

// New returns a sink writing format to w.
func New(format Format, w io.Writer) (Sink, error) {
	switch format {
	case FormatText:
		return NewText(w), nil
	case FormatJSONL:
		return NewJSONL(w), nil
	case FormatCSV:
		return NewCSV(w), nil
	default:
		return nil, fmt.Errorf("invalid output format: %s", format)
	}
}

// Text writes one line per finding using finding.Describe.
type Text struct {
	mu sync.Mutex
	w  io.Writer
}

// NewText creates a Text sink.
func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

// Emit writes f as a single line.
func (t *Text) Emit(_ context.Context, f finding.Finding) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := fmt.Fprintln(t.w, f.Describe()); err != nil {
		return fmt.Errorf("failed to write finding: %w", err)
	}
	return nil
}

// Close is a no-op.
func (t *Text) Close() error {
	return nil
}

// JSONL writes one JSON object per finding.
type JSONL struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONL creates a JSONL sink.
func NewJSONL(w io.Writer) *JSONL {
	return &JSONL{enc: json.NewEncoder(w)}
}

// Emit writes f as one JSON line.
func (j *JSONL) Emit(_ context.Context, f finding.Finding) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.enc.Encode(f); err != nil {
		return fmt.Errorf("failed to write finding: %w", err)
	}
	return nil
}

// Close is a no-op.
func (j *JSONL) Close() error {
	return nil
}

// CSV writes findings as rows of finding.CSVHeader columns. The header is
// written before the first row, or on Close if nothing was emitted.
type CSV struct {
	mu     sync.Mutex
	w      *csv.Writer
	header bool
}

// NewCSV creates a CSV sink.
func NewCSV(w io.Writer) *CSV {
	return &CSV{w: csv.NewWriter(w)}
}

func (c *CSV) writeHeader() error {
	if c.header {
		return nil
	}
	c.header = true
	return c.w.Write(finding.CSVHeader())
}

// Emit writes f as one row.
func (c *CSV) Emit(_ context.Context, f finding.Finding) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.writeHeader(); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := c.w.Write(f.CSVRecord()); err != nil {
		return fmt.Errorf("failed to write finding: %w", err)
	}
	return nil
}

// Close writes the header if needed and flushes.
func (c *CSV) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.writeHeader(); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return fmt.Errorf("failed to flush findings: %w", err)
	}
	return nil
}
