package finding

import "fmt"

// Severity represents how far a finding deviates from the expected value.
type Severity string

const (
	// SeverityHigh indicates a large deviation.
	// Examples: compensation 25% or more outside the band, chain 3+ hops over the limit
	SeverityHigh Severity = "high"

	// SeverityMedium indicates a moderate deviation.
	SeverityMedium Severity = "medium"

	// SeverityLow indicates a minor deviation.
	SeverityLow Severity = "low"
)

// severityWeights maps severity levels to numeric weights for ranking.
var severityWeights = map[Severity]float64{
	SeverityHigh:   7.5,
	SeverityMedium: 5.0,
	SeverityLow:    2.5,
}

// Relative deviation thresholds for compensation findings.
const (
	compensationHighRatio   = 0.25
	compensationMediumRatio = 0.10
)

// IsValid returns true if the severity level is valid.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow:
		return true
	default:
		return false
	}
}

// Weight returns the numeric weight associated with the severity level.
// Returns 0.0 for invalid severity levels.
func (s Severity) Weight() float64 {
	if weight, ok := severityWeights[s]; ok {
		return weight
	}
	return 0.0
}

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// ParseSeverity parses a string into a Severity value.
func ParseSeverity(s string) (Severity, error) {
	severity := Severity(s)
	if !severity.IsValid() {
		return "", fmt.Errorf("invalid severity: %s", s)
	}
	return severity, nil
}

// CompareSeverity compares two severity levels.
// Returns:
//   - negative if s1 < s2
//   - zero if s1 == s2
//   - positive if s1 > s2
func CompareSeverity(s1, s2 Severity) int {
	w1 := s1.Weight()
	w2 := s2.Weight()
	if w1 < w2 {
		return -1
	}
	if w1 > w2 {
		return 1
	}
	return 0
}

// AllSeverities returns all valid severity levels from high to low.
func AllSeverities() []Severity {
	return []Severity{
		SeverityHigh,
		SeverityMedium,
		SeverityLow,
	}
}

// compensationSeverity ranks a band violation by its size relative to the
// violated bound. A zero bound only occurs for an all-zero team.
func compensationSeverity(magnitude, bound float64) Severity {
	if bound <= 0 {
		return SeverityHigh
	}
	ratio := magnitude / bound
	switch {
	case ratio >= compensationHighRatio:
		return SeverityHigh
	case ratio >= compensationMediumRatio:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// chainSeverity ranks a chain by how many hops it exceeds the limit.
func chainSeverity(depth, limit int) Severity {
	switch over := depth - limit; {
	case over >= 3:
		return SeverityHigh
	case over == 2:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
