package extension

import (
	"log/slog"

	"github.com/xraph/tollgate"
	"github.com/xraph/tollgate/hook"
	"github.com/xraph/tollgate/store"
)

// ExtOption configures the Tollgate Forge extension.
type ExtOption func(*Extension)

// WithStore sets the persistence backend.
func WithStore(s store.Store) ExtOption {
	return func(e *Extension) {
		e.tollgateOpts = append(e.tollgateOpts, tollgate.WithStore(s))
	}
}

// WithRuleset sets a static ruleset instead of loading one from a store.
func WithRuleset(rs *tollgate.Ruleset) ExtOption {
	return func(e *Extension) {
		e.tollgateOpts = append(e.tollgateOpts, tollgate.WithRuleset(rs))
	}
}

// WithConfig sets the extension configuration.
func WithConfig(cfg Config) ExtOption {
	return func(e *Extension) {
		e.config = cfg
	}
}

// WithEngineOptions adds engine-level options.
func WithEngineOptions(opts ...tollgate.Option) ExtOption {
	return func(e *Extension) {
		e.tollgateOpts = append(e.tollgateOpts, opts...)
	}
}

// WithHook registers a lifecycle hook.
func WithHook(h hook.Hook) ExtOption {
	return func(e *Extension) {
		e.hooks = append(e.hooks, h)
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ExtOption {
	return func(e *Extension) {
		e.logger = l
	}
}

// WithDisableRoutes disables the registration of HTTP routes.
func WithDisableRoutes() ExtOption {
	return func(e *Extension) {
		e.config.DisableRoutes = true
	}
}

// WithDisableMigrate disables auto-migration on start.
func WithDisableMigrate() ExtOption {
	return func(e *Extension) {
		e.config.DisableMigrate = true
	}
}
