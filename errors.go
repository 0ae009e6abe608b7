package orgaudit

import "github.com/zero-day-ai/orgaudit/auditerr"

// Sentinel errors returned by the Auditor. They are the same values as the
// auditerr sentinels, so errors.Is works with either.
var (
	// ErrSourceUnreadable indicates the record source could not be opened or
	// read. No analysis was attempted.
	ErrSourceUnreadable = auditerr.ErrSourceUnreadable

	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = auditerr.ErrInvalidConfig

	// ErrSinkFailed indicates a finding could not be written.
	ErrSinkFailed = auditerr.ErrSinkFailed
)

// Error is the structured error type returned by orgaudit operations.
type Error = auditerr.Error
