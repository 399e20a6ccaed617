// Package hook defines the lifecycle hook system for Tollgate.
// Hooks are notified of engine events (check evaluated, grant created,
// ruleset loaded, etc.) and can react with logging, metrics, or tracing.
//
// Each lifecycle event is a separate interface so hooks opt in only
// to the events they care about.
package hook

import (
	"context"

	"github.com/xraph/tollgate/id"
	"github.com/xraph/tollgate/rules"
)

// Hook is the base interface all hooks must implement.
type Hook interface {
	// Name returns a unique human-readable name for the hook.
	Name() string
}

// ──────────────────────────────────────────────────
// Check lifecycle
// ──────────────────────────────────────────────────

// BeforeCheck is called before an authorization check is evaluated.
// The req parameter is *tollgate.CheckRequest (passed as any to avoid an
// import cycle).
type BeforeCheck interface {
	OnBeforeCheck(ctx context.Context, req any) error
}

// AfterCheck is called after an authorization check completes.
// The req parameter is *tollgate.CheckRequest; result is *tollgate.CheckResult.
type AfterCheck interface {
	OnAfterCheck(ctx context.Context, req, result any) error
}

// ──────────────────────────────────────────────────
// Rule lifecycle
// ──────────────────────────────────────────────────

// GrantCreated is called after a permission grant is created.
type GrantCreated interface {
	OnGrantCreated(ctx context.Context, g *rules.Grant) error
}

// GrantDeleted is called after a permission grant is deleted.
type GrantDeleted interface {
	OnGrantDeleted(ctx context.Context, grantID id.GrantID) error
}

// RouteBound is called after a route binding is created or updated.
type RouteBound interface {
	OnRouteBound(ctx context.Context, b *rules.RouteBinding) error
}

// RouteUnbound is called after a route binding is deleted.
type RouteUnbound interface {
	OnRouteUnbound(ctx context.Context, bindingID id.RouteBindingID) error
}

// EdgeCreated is called after a hierarchy edge is created.
type EdgeCreated interface {
	OnEdgeCreated(ctx context.Context, e *rules.HierarchyEdge) error
}

// EdgeDeleted is called after a hierarchy edge is deleted.
type EdgeDeleted interface {
	OnEdgeDeleted(ctx context.Context, edgeID id.HierarchyEdgeID) error
}

// ──────────────────────────────────────────────────
// Engine lifecycle
// ──────────────────────────────────────────────────

// RulesetLoaded is called after the engine materializes a ruleset from its
// store. The snapshot carries the raw rule content that was loaded.
type RulesetLoaded interface {
	OnRulesetLoaded(ctx context.Context, snap *rules.Snapshot) error
}

// Shutdown is called when the engine stops.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
