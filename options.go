package tollgate

import (
	"log/slog"

	"github.com/xraph/tollgate/hook"
	"github.com/xraph/tollgate/store"
)

// Option is a functional option for the Engine.
type Option func(*Engine)

// WithRuleset sets the static authorization configuration. The ruleset is
// cloned at construction so the caller cannot mutate it afterwards.
func WithRuleset(rs *Ruleset) Option { return func(e *Engine) { e.initial = rs } }

// WithStore sets the composite rules/checklog store. When no ruleset is
// given, Start loads one from the store.
func WithStore(s store.Store) Option { return func(e *Engine) { e.store = s } }

// WithCache sets the check result cache.
func WithCache(c Cache) Option { return func(e *Engine) { e.cache = c } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithConfig sets the engine configuration.
func WithConfig(c Config) Option { return func(e *Engine) { e.config = c } }

// WithHook registers a lifecycle hook with the engine.
func WithHook(h hook.Hook) Option {
	return func(e *Engine) {
		if e.hooks == nil {
			e.hooks = hook.NewRegistry(e.logger)
		}
		e.hooks.Register(h)
	}
}
