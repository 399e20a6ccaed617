package tollgate

import "context"

// Cache provides caching for authorization check results. The engine
// consults it on the Check hot path and flushes it whenever a new ruleset
// is loaded.
type Cache interface {
	// Get returns a cached check result, if available.
	Get(ctx context.Context, tenantID string, req *CheckRequest) (*CheckResult, bool)

	// Set stores a check result in the cache.
	Set(ctx context.Context, tenantID string, req *CheckRequest, result *CheckResult)

	// InvalidateTenant removes all cached results for a tenant.
	InvalidateTenant(ctx context.Context, tenantID string)

	// InvalidateRole removes all cached results for a specific role.
	InvalidateRole(ctx context.Context, tenantID string, role Role)
}
