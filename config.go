package tollgate

import "time"

// RoutePolicy decides what CanAccessRoute does with a route that has no
// binding in the ruleset.
type RoutePolicy string

const (
	// RouteFailOpen grants access to unlisted routes. This mirrors the
	// behavior of dashboard deployments that only bind their sensitive
	// routes, and is the default.
	RouteFailOpen RoutePolicy = "fail-open"

	// RouteFailClosed denies access to unlisted routes.
	RouteFailClosed RoutePolicy = "fail-closed"
)

// Config holds configuration for the tollgate engine.
type Config struct {
	// RoutePolicy controls unlisted-route behavior.
	// Defaults to RouteFailOpen.
	RoutePolicy RoutePolicy `json:"route_policy,omitempty"`

	// CacheTTL is the time-to-live for cached check results.
	// Zero means no caching.
	CacheTTL time.Duration `json:"cache_ttl,omitempty"`

	// AuditChecks records every Check decision in the checklog store.
	// Requires a store. Defaults to false.
	AuditChecks bool `json:"audit_checks,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		RoutePolicy: RouteFailOpen,
	}
}

func (c Config) failOpen() bool { return c.RoutePolicy != RouteFailClosed }
