package finding

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Finding is one anomaly reported by hierarchy analysis.
type Finding struct {
	// ID is a unique identifier for the finding.
	ID string `json:"id"`

	// Kind discriminates the finding.
	Kind Kind `json:"kind"`

	// SubjectID is the id of the record the finding is about.
	SubjectID int `json:"subject_id"`

	// SubjectName is the display name of the record.
	SubjectName string `json:"subject_name"`

	// Severity ranks the deviation.
	Severity Severity `json:"severity"`

	// Actual is the subject's compensation. Compensation kinds only.
	Actual float64 `json:"actual,omitempty"`

	// Expected is the compensation band. Compensation kinds only.
	Expected *Band `json:"expected,omitempty"`

	// Magnitude is the distance from the violated bound. Compensation kinds only.
	Magnitude float64 `json:"magnitude,omitempty"`

	// Depth is the number of superior hops to a root. Chain kind only.
	Depth int `json:"depth,omitempty"`

	// Limit is the maximum depth that was exceeded. Chain kind only.
	Limit int `json:"limit,omitempty"`

	// CreatedAt is the timestamp when the finding was created.
	CreatedAt time.Time `json:"created_at"`
}

// Band is an inclusive compensation range.
type Band struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains returns true if v lies within the band.
func (b Band) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// NewCompensationAnomaly creates a compensation finding for a subject paid
// outside band. It returns nil if actual lies within the band.
func NewCompensationAnomaly(subjectID int, subjectName string, actual float64, band Band) *Finding {
	var (
		kind      Kind
		magnitude float64
		bound     float64
	)
	switch {
	case actual < band.Min:
		kind, magnitude, bound = KindCompensationTooLow, band.Min-actual, band.Min
	case actual > band.Max:
		kind, magnitude, bound = KindCompensationTooHigh, actual-band.Max, band.Max
	default:
		return nil
	}

	f := newFinding(kind, subjectID, subjectName)
	f.Actual = actual
	f.Expected = &Band{Min: band.Min, Max: band.Max}
	f.Magnitude = magnitude
	f.Severity = compensationSeverity(magnitude, bound)
	return f
}

// NewChainTooLong creates a chain finding. It returns nil unless depth
// exceeds limit.
func NewChainTooLong(subjectID int, subjectName string, depth, limit int) *Finding {
	if depth <= limit {
		return nil
	}
	f := newFinding(KindChainTooLong, subjectID, subjectName)
	f.Depth = depth
	f.Limit = limit
	f.Severity = chainSeverity(depth, limit)
	return f
}

func newFinding(kind Kind, subjectID int, subjectName string) *Finding {
	return &Finding{
		ID:          uuid.New().String(),
		Kind:        kind,
		SubjectID:   subjectID,
		SubjectName: subjectName,
		CreatedAt:   time.Now(),
	}
}

// Validate checks if the finding has all required fields and a payload
// consistent with its kind.
func (f *Finding) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("finding ID is required")
	}
	if !f.Kind.IsValid() {
		return fmt.Errorf("invalid kind: %s", f.Kind)
	}
	if f.SubjectName == "" {
		return fmt.Errorf("subject name is required")
	}
	if !f.Severity.IsValid() {
		return fmt.Errorf("invalid severity: %s", f.Severity)
	}
	if f.CreatedAt.IsZero() {
		return fmt.Errorf("created_at timestamp is required")
	}

	if f.Kind.IsCompensation() {
		if f.Expected == nil {
			return fmt.Errorf("%s finding requires an expected band", f.Kind)
		}
		if f.Magnitude <= 0 {
			return fmt.Errorf("magnitude must be positive, got %f", f.Magnitude)
		}
		if f.Expected.Contains(f.Actual) {
			return fmt.Errorf("actual %f lies within the expected band", f.Actual)
		}
		return nil
	}

	if f.Depth <= f.Limit {
		return fmt.Errorf("depth %d does not exceed limit %d", f.Depth, f.Limit)
	}
	return nil
}

// Value returns the finding's numeric payload: the magnitude for
// compensation kinds and the depth for the chain kind.
func (f *Finding) Value() float64 {
	if f.Kind.IsCompensation() {
		return f.Magnitude
	}
	return float64(f.Depth)
}

// Describe renders the finding as one human-readable line.
func (f *Finding) Describe() string {
	switch f.Kind {
	case KindCompensationTooLow:
		return fmt.Sprintf("%s earns too little: %.2f (expected %.2f..%.2f)",
			f.SubjectName, f.Magnitude, f.Expected.Min, f.Expected.Max)
	case KindCompensationTooHigh:
		return fmt.Sprintf("%s earns too much: %.2f (expected %.2f..%.2f)",
			f.SubjectName, f.Magnitude, f.Expected.Min, f.Expected.Max)
	case KindChainTooLong:
		return fmt.Sprintf("%s has a reporting line too long: %d (limit %d)",
			f.SubjectName, f.Depth, f.Limit)
	default:
		return fmt.Sprintf("%s: %s", f.SubjectName, f.Kind)
	}
}

// CSVHeader returns the column names written by CSVRecord.
func CSVHeader() []string {
	return []string{"id", "kind", "subject_id", "subject_name", "severity", "value", "actual", "expected_min", "expected_max", "limit"}
}

// CSVRecord returns the finding as a row matching CSVHeader. Columns that do
// not apply to the kind are empty.
func (f *Finding) CSVRecord() []string {
	row := []string{
		f.ID,
		f.Kind.String(),
		strconv.Itoa(f.SubjectID),
		f.SubjectName,
		f.Severity.String(),
		strconv.FormatFloat(f.Value(), 'f', -1, 64),
		"", "", "", "",
	}
	if f.Kind.IsCompensation() && f.Expected != nil {
		row[6] = strconv.FormatFloat(f.Actual, 'f', -1, 64)
		row[7] = strconv.FormatFloat(f.Expected.Min, 'f', -1, 64)
		row[8] = strconv.FormatFloat(f.Expected.Max, 'f', -1, 64)
	}
	if f.Kind == KindChainTooLong {
		row[9] = strconv.Itoa(f.Limit)
	}
	return row
}
