package finding

import "fmt"

// Filter represents criteria for filtering findings.
type Filter struct {
	// Kinds filters by one or more kinds.
	Kinds []Kind `json:"kinds,omitempty" yaml:"kinds,omitempty"`

	// MinSeverity filters findings with severity >= this level.
	MinSeverity Severity `json:"min_severity,omitempty" yaml:"min_severity,omitempty"`

	// SubjectIDs filters by subject record ids.
	SubjectIDs []int `json:"subject_ids,omitempty" yaml:"subject_ids,omitempty"`
}

// IsEmpty returns true if the filter matches every finding.
func (f *Filter) IsEmpty() bool {
	return len(f.Kinds) == 0 && f.MinSeverity == "" && len(f.SubjectIDs) == 0
}

// Matches returns true if the given finding matches all filter criteria.
func (f *Filter) Matches(finding Finding) bool {
	if len(f.Kinds) > 0 {
		matched := false
		for _, kind := range f.Kinds {
			if finding.Kind == kind {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if f.MinSeverity != "" && CompareSeverity(finding.Severity, f.MinSeverity) < 0 {
		return false
	}

	if len(f.SubjectIDs) > 0 {
		matched := false
		for _, id := range f.SubjectIDs {
			if finding.SubjectID == id {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

// Validate checks if the filter configuration is valid.
func (f *Filter) Validate() error {
	for _, kind := range f.Kinds {
		if !kind.IsValid() {
			return fmt.Errorf("invalid kind in filter: %s", kind)
		}
	}
	if f.MinSeverity != "" && !f.MinSeverity.IsValid() {
		return fmt.Errorf("invalid min_severity in filter: %s", f.MinSeverity)
	}
	return nil
}

// Apply returns the findings that match the filter, preserving order.
func (f *Filter) Apply(findings []Finding) []Finding {
	out := make([]Finding, 0, len(findings))
	for _, finding := range findings {
		if f.Matches(finding) {
			out = append(out, finding)
		}
	}
	return out
}
