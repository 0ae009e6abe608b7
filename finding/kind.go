package finding

import "fmt"

// Kind identifies what a finding reports.
type Kind string

const (
	// KindCompensationTooLow indicates a supervisor paid below the expected band.
	KindCompensationTooLow Kind = "compensation_too_low"

	// KindCompensationTooHigh indicates a supervisor paid above the expected band.
	KindCompensationTooHigh Kind = "compensation_too_high"

	// KindChainTooLong indicates a reporting chain deeper than the limit.
	KindChainTooLong Kind = "reporting_chain_too_long"
)

// IsValid returns true if the kind is valid.
func (k Kind) IsValid() bool {
	switch k {
	case KindCompensationTooLow, KindCompensationTooHigh, KindChainTooLong:
		return true
	default:
		return false
	}
}

// IsCompensation returns true for the compensation band kinds.
func (k Kind) IsCompensation() bool {
	return k == KindCompensationTooLow || k == KindCompensationTooHigh
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// DisplayName returns a human-readable display name for the kind.
func (k Kind) DisplayName() string {
	switch k {
	case KindCompensationTooLow:
		return "Compensation Too Low"
	case KindCompensationTooHigh:
		return "Compensation Too High"
	case KindChainTooLong:
		return "Reporting Chain Too Long"
	default:
		return string(k)
	}
}

// ParseKind parses a string into a Kind value.
func ParseKind(s string) (Kind, error) {
	kind := Kind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid finding kind: %s", s)
	}
	return kind, nil
}

// AllKinds returns all valid kinds.
func AllKinds() []Kind {
	return []Kind{
		KindCompensationTooLow,
		KindCompensationTooHigh,
		KindChainTooLong,
	}
}
