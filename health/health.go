package health

import (
	"fmt"
	"log/slog"

	"github.com/zero-day-ai/orgaudit/diag"
	"github.com/zero-day-ai/orgaudit/hierarchy"
)

// Health status constants represent the state of an audit run.
const (
	// StatusHealthy indicates the input loaded cleanly.
	StatusHealthy = "healthy"

	// StatusDegraded indicates the run completed but some input was skipped
	// or could not be interpreted.
	StatusDegraded = "degraded"

	// StatusUnhealthy indicates the results cannot be relied on.
	StatusUnhealthy = "unhealthy"
)

// Status represents the health of one check or of a whole run.
type Status struct {
	// Status is the current health state (healthy, degraded, or unhealthy).
	Status string `json:"status"`

	// Message provides a human-readable description of the status.
	Message string `json:"message,omitempty"`

	// Details contains additional context such as diagnostic counts.
	Details map[string]any `json:"details,omitempty"`
}

// IsHealthy returns true if the status is StatusHealthy.
func (s Status) IsHealthy() bool {
	return s.Status == StatusHealthy
}

// IsDegraded returns true if the status is StatusDegraded.
func (s Status) IsDegraded() bool {
	return s.Status == StatusDegraded
}

// IsUnhealthy returns true if the status is StatusUnhealthy.
func (s Status) IsUnhealthy() bool {
	return s.Status == StatusUnhealthy
}

// NewHealthyStatus creates a healthy status with an optional message.
func NewHealthyStatus(message string) Status {
	return Status{Status: StatusHealthy, Message: message}
}

// NewDegradedStatus creates a degraded status with a message and optional details.
func NewDegradedStatus(message string, details map[string]any) Status {
	return Status{Status: StatusDegraded, Message: message, Details: details}
}

// NewUnhealthyStatus creates an unhealthy status with a message and optional details.
func NewUnhealthyStatus(message string, details map[string]any) Status {
	return Status{Status: StatusUnhealthy, Message: message, Details: details}
}

// RecordsCheck reports unhealthy when no record was loaded.
func RecordsCheck(store *hierarchy.Store) Status {
	if store == nil || store.Len() == 0 {
		return NewUnhealthyStatus("no records loaded", nil)
	}
	return NewHealthyStatus(fmt.Sprintf("%d records loaded", store.Len()))
}

// RootCheck reports unhealthy when the hierarchy has no root and degraded
// when it has more than one.
func RootCheck(store *hierarchy.Store) Status {
	if store == nil || store.Len() == 0 {
		return NewUnhealthyStatus("no root record", nil)
	}
	roots := store.Roots()
	switch {
	case len(roots) == 0:
		return NewUnhealthyStatus("no root record", map[string]any{"records": store.Len()})
	case len(roots) > 1:
		ids := make([]int, 0, len(roots))
		for _, r := range roots {
			ids = append(ids, r.ID)
		}
		return NewDegradedStatus(
			fmt.Sprintf("%d root records", len(roots)),
			map[string]any{"root_ids": ids},
		)
	}
	return NewHealthyStatus(fmt.Sprintf("root record %d", roots[0].ID))
}

// DiagnosticsCheck reports degraded when any warn-level diagnostic was
// recorded. Informational diagnostics do not affect the status.
func DiagnosticsCheck(diags *diag.Set) Status {
	if diags == nil {
		return NewHealthyStatus("no diagnostics")
	}
	counts := diags.Counts()
	warnings := 0
	details := make(map[string]any, len(counts))
	for kind, n := range counts {
		details[kind.String()] = n
		if kind.Level() >= slog.LevelWarn {
			warnings += n
		}
	}
	if warnings > 0 {
		return NewDegradedStatus(fmt.Sprintf("%d diagnostic(s) recorded", warnings), details)
	}
	return NewHealthyStatus("no diagnostics")
}

// Evaluate runs every check against a completed run.
func Evaluate(store *hierarchy.Store, diags *diag.Set) Status {
	return Combine(
		RecordsCheck(store),
		RootCheck(store),
		DiagnosticsCheck(diags),
	)
}

// Combine aggregates multiple statuses into one. Unhealthy takes priority
// over degraded, which takes priority over healthy.
func Combine(checks ...Status) Status {
	if len(checks) == 0 {
		return NewHealthyStatus("no checks provided")
	}

	var unhealthy, degraded []string
	var healthyCount int

	for _, check := range checks {
		msg := check.Message
		if msg == "" {
			msg = "unnamed check"
		}
		switch check.Status {
		case StatusUnhealthy:
			unhealthy = append(unhealthy, msg)
		case StatusDegraded:
			degraded = append(degraded, msg)
		case StatusHealthy:
			healthyCount++
		}
	}

	if len(unhealthy) > 0 {
		return NewUnhealthyStatus(
			fmt.Sprintf("%d check(s) failed", len(unhealthy)),
			map[string]any{
				"total":         len(checks),
				"unhealthy":     len(unhealthy),
				"degraded":      len(degraded),
				"healthy":       healthyCount,
				"failed_checks": unhealthy,
			},
		)
	}

	if len(degraded) > 0 {
		return NewDegradedStatus(
			fmt.Sprintf("%d check(s) degraded", len(degraded)),
			map[string]any{
				"total":           len(checks),
				"degraded":        len(degraded),
				"healthy":         healthyCount,
				"degraded_checks": degraded,
			},
		)
	}

	return NewHealthyStatus(fmt.Sprintf("all %d check(s) passed", len(checks)))
}
