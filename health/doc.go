// Package health summarizes how trustworthy an audit run is.
//
// Each check inspects one aspect of the loaded hierarchy or the diagnostics
// collected while loading and analyzing it, and returns a Status. Combine
// aggregates several checks into one overall Status.
//
// # Status Priority
//
// When combining checks with Combine(), the result follows this priority:
//
//   - Unhealthy: If any check is unhealthy, the combined result is unhealthy
//   - Degraded: If any check is degraded (and none unhealthy), the result is degraded
//   - Healthy: If all checks are healthy, the result is healthy
//
// # Usage Example
//
//	overall := health.Evaluate(store, diags)
//	if overall.IsUnhealthy() {
//	    log.Printf("audit unreliable: %s", overall.Message)
//	}
package health
