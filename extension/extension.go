// Package extension provides a Forge extension entry point for Tollgate.
package extension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/tollgate"
	"github.com/xraph/tollgate/api"
	"github.com/xraph/tollgate/hook"
	"github.com/xraph/tollgate/store"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "tollgate"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Role-based authorization engine for payment and deal management platforms"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Tollgate as a Forge extension.
type Extension struct {
	config       Config
	eng          *tollgate.Engine
	apiHandler   *api.API
	logger       *slog.Logger
	tollgateOpts []tollgate.Option
	hooks        []hook.Hook
}

// New creates a Tollgate Forge extension with the given options.
func New(opts ...ExtOption) *Extension {
	e := &Extension{config: DefaultConfig()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns the extension name.
func (e *Extension) Name() string { return ExtensionName }

// Description returns the extension description.
func (e *Extension) Description() string { return ExtensionDescription }

// Version returns the extension version.
func (e *Extension) Version() string { return ExtensionVersion }

// Dependencies returns the list of extension names this extension depends on.
func (e *Extension) Dependencies() []string { return []string{} }

// Engine returns the underlying Tollgate engine.
func (e *Extension) Engine() *tollgate.Engine { return e.eng }

// API returns the API handler.
func (e *Extension) API() *api.API { return e.apiHandler }

// Register implements [forge.Extension]. It initializes the engine,
// registers it in the DI container, and optionally registers HTTP routes.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.init(fapp); err != nil {
		return err
	}

	// Register the engine in the DI container.
	if err := vessel.Provide(fapp.Container(), func() (*tollgate.Engine, error) {
		return e.eng, nil
	}); err != nil {
		return fmt.Errorf("tollgate: register engine in container: %w", err)
	}

	return nil
}

func (e *Extension) init(fapp forge.App) error {
	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}

	switch tollgate.RoutePolicy(e.config.RoutePolicy) {
	case tollgate.RouteFailOpen, tollgate.RouteFailClosed, "":
	default:
		return fmt.Errorf("tollgate: unknown route policy %q", e.config.RoutePolicy)
	}

	// Build engine options.
	opts := make([]tollgate.Option, 0, len(e.tollgateOpts)+len(e.hooks)+2)
	opts = append(opts, tollgate.WithLogger(logger))
	opts = append(opts, tollgate.WithConfig(e.config.engineConfig()))

	// Try to resolve store from DI container, fall back to option-provided store.
	if s, err := forge.Inject[store.Store](fapp.Container()); err == nil {
		opts = append(opts, tollgate.WithStore(s))
	}

	// Append user-provided options (may override store and config).
	opts = append(opts, e.tollgateOpts...)

	// Register lifecycle hooks.
	for _, h := range e.hooks {
		opts = append(opts, tollgate.WithHook(h))
	}

	eng, err := tollgate.NewEngine(opts...)
	if err != nil {
		return fmt.Errorf("tollgate: create engine: %w", err)
	}
	e.eng = eng

	// Create API handler.
	e.apiHandler = api.New(eng, fapp.Router())

	// Register HTTP routes unless disabled.
	if !e.config.DisableRoutes {
		if err := e.apiHandler.RegisterRoutes(fapp.Router()); err != nil {
			return fmt.Errorf("tollgate: register routes: %w", err)
		}
	}

	return nil
}

// Start begins the tollgate engine and runs migrations if enabled.
func (e *Extension) Start(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("tollgate: extension not initialized")
	}

	// Run migrations unless disabled.
	if !e.config.DisableMigrate {
		s := e.eng.Store()
		if s != nil {
			if err := s.Migrate(ctx); err != nil {
				return fmt.Errorf("tollgate: migration failed: %w", err)
			}
		}
	}

	if err := e.eng.Start(ctx); err != nil {
		return err
	}

	if rs := e.eng.Ruleset(); rs != nil && e.logger != nil {
		e.logger.Info("tollgate started",
			"route_policy", e.config.RoutePolicy,
			"roles", len(rs.Permissions),
			"route_bindings", len(rs.Routes),
		)
	}
	return nil
}

// Stop gracefully shuts down the tollgate engine.
func (e *Extension) Stop(ctx context.Context) error {
	if e.eng == nil {
		return nil
	}
	return e.eng.Stop(ctx)
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.eng == nil {
		return errors.New("tollgate: extension not initialized")
	}
	s := e.eng.Store()
	if s == nil {
		// Static ruleset mode has no backing service to probe.
		return nil
	}
	return s.Ping(ctx)
}

// Handler returns the HTTP handler for all API routes.
func (e *Extension) Handler() http.Handler {
	if e.apiHandler == nil {
		return http.NotFoundHandler()
	}
	return e.apiHandler.Handler()
}

// RegisterRoutes registers all tollgate API routes into a Forge router.
func (e *Extension) RegisterRoutes(router forge.Router) error {
	if e.apiHandler != nil {
		return e.apiHandler.RegisterRoutes(router)
	}
	return nil
}
