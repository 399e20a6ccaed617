package extension

import (
	"time"

	"github.com/xraph/tollgate"
)

// Config holds the Tollgate extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.tollgate" or "tollgate" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// BasePath is the URL prefix for tollgate routes (default: "/tollgate").
	BasePath string `json:"base_path" mapstructure:"base_path" yaml:"base_path"`

	// RoutePolicy controls what route checks do with routes that have no
	// binding: "fail-open" (default) or "fail-closed".
	RoutePolicy string `json:"route_policy" mapstructure:"route_policy" yaml:"route_policy"`

	// CacheTTL is the time-to-live for cached check results.
	// Zero disables caching.
	CacheTTL time.Duration `json:"cache_ttl" mapstructure:"cache_ttl" yaml:"cache_ttl"`

	// AuditChecks records every check decision in the checklog store.
	AuditChecks bool `json:"audit_checks" mapstructure:"audit_checks" yaml:"audit_checks"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		RoutePolicy: string(tollgate.RouteFailOpen),
	}
}

// engineConfig translates the extension configuration into the engine's.
func (c Config) engineConfig() tollgate.Config {
	return tollgate.Config{
		RoutePolicy: tollgate.RoutePolicy(c.RoutePolicy),
		CacheTTL:    c.CacheTTL,
		AuditChecks: c.AuditChecks,
	}
}
