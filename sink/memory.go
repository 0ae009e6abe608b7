package sink

import (
	"context"
	"sync"

	"github.com/zero-day-ai/orgaudit/finding"
)

// Memory collects findings in emission order.
type Memory struct {
	mu       sync.Mutex
	findings []finding.Finding
}

// NewMemory creates an empty Memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Emit appends f.
func (m *Memory) Emit(_ context.Context, f finding.Finding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findings = append(m.findings, f)
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

// Findings returns a copy of the collected findings.
func (m *Memory) Findings() []finding.Finding {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]finding.Finding, len(m.findings))
	copy(out, m.findings)
	return out
}

// Len returns the number of collected findings.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.findings)
}
