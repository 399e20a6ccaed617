package hook

import (
	"context"
	"log/slog"

	"github.com/xraph/tollgate/id"
	"github.com/xraph/tollgate/rules"
)

// Named entry types pair a hook with its name for logging.

type beforeCheckEntry struct {
	name string
	hook BeforeCheck
}
type afterCheckEntry struct {
	name string
	hook AfterCheck
}
type grantCreatedEntry struct {
	name string
	hook GrantCreated
}
type grantDeletedEntry struct {
	name string
	hook GrantDeleted
}
type routeBoundEntry struct {
	name string
	hook RouteBound
}
type routeUnboundEntry struct {
	name string
	hook RouteUnbound
}
type edgeCreatedEntry struct {
	name string
	hook EdgeCreated
}
type edgeDeletedEntry struct {
	name string
	hook EdgeDeleted
}
type rulesetLoadedEntry struct {
	name string
	hook RulesetLoaded
}
type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered hooks and dispatches lifecycle events.
// It type-caches hooks at registration time so emit calls iterate
// only over hooks implementing the relevant event.
type Registry struct {
	hooks  []Hook
	logger *slog.Logger

	beforeCheck   []beforeCheckEntry
	afterCheck    []afterCheckEntry
	grantCreated  []grantCreatedEntry
	grantDeleted  []grantDeletedEntry
	routeBound    []routeBoundEntry
	routeUnbound  []routeUnboundEntry
	edgeCreated   []edgeCreatedEntry
	edgeDeleted   []edgeDeletedEntry
	rulesetLoaded []rulesetLoadedEntry
	shutdown      []shutdownEntry
}

// NewRegistry creates a hook registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register adds a hook and type-asserts it into all applicable event
// caches. Hooks are notified in registration order.
func (r *Registry) Register(h Hook) {
	r.hooks = append(r.hooks, h)
	name := h.Name()

	if e, ok := h.(BeforeCheck); ok {
		r.beforeCheck = append(r.beforeCheck, beforeCheckEntry{name, e})
	}
	if e, ok := h.(AfterCheck); ok {
		r.afterCheck = append(r.afterCheck, afterCheckEntry{name, e})
	}
	if e, ok := h.(GrantCreated); ok {
		r.grantCreated = append(r.grantCreated, grantCreatedEntry{name, e})
	}
	if e, ok := h.(GrantDeleted); ok {
		r.grantDeleted = append(r.grantDeleted, grantDeletedEntry{name, e})
	}
	if e, ok := h.(RouteBound); ok {
		r.routeBound = append(r.routeBound, routeBoundEntry{name, e})
	}
	if e, ok := h.(RouteUnbound); ok {
		r.routeUnbound = append(r.routeUnbound, routeUnboundEntry{name, e})
	}
	if e, ok := h.(EdgeCreated); ok {
		r.edgeCreated = append(r.edgeCreated, edgeCreatedEntry{name, e})
	}
	if e, ok := h.(EdgeDeleted); ok {
		r.edgeDeleted = append(r.edgeDeleted, edgeDeletedEntry{name, e})
	}
	if e, ok := h.(RulesetLoaded); ok {
		r.rulesetLoaded = append(r.rulesetLoaded, rulesetLoadedEntry{name, e})
	}
	if e, ok := h.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, e})
	}
}

// Hooks returns all registered hooks.
func (r *Registry) Hooks() []Hook { return r.hooks }

// EmitBeforeCheck notifies all hooks that implement BeforeCheck.
func (r *Registry) EmitBeforeCheck(ctx context.Context, req any) {
	for _, e := range r.beforeCheck {
		if err := e.hook.OnBeforeCheck(ctx, req); err != nil {
			r.logHookError("OnBeforeCheck", e.name, err)
		}
	}
}

// EmitAfterCheck notifies all hooks that implement AfterCheck.
func (r *Registry) EmitAfterCheck(ctx context.Context, req, result any) {
	for _, e := range r.afterCheck {
		if err := e.hook.OnAfterCheck(ctx, req, result); err != nil {
			r.logHookError("OnAfterCheck", e.name, err)
		}
	}
}

// EmitGrantCreated notifies all hooks that implement GrantCreated.
func (r *Registry) EmitGrantCreated(ctx context.Context, g *rules.Grant) {
	for _, e := range r.grantCreated {
		if err := e.hook.OnGrantCreated(ctx, g); err != nil {
			r.logHookError("OnGrantCreated", e.name, err)
		}
	}
}

// EmitGrantDeleted notifies all hooks that implement GrantDeleted.
func (r *Registry) EmitGrantDeleted(ctx context.Context, grantID id.GrantID) {
	for _, e := range r.grantDeleted {
		if err := e.hook.OnGrantDeleted(ctx, grantID); err != nil {
			r.logHookError("OnGrantDeleted", e.name, err)
		}
	}
}

// EmitRouteBound notifies all hooks that implement RouteBound.
func (r *Registry) EmitRouteBound(ctx context.Context, b *rules.RouteBinding) {
	for _, e := range r.routeBound {
		if err := e.hook.OnRouteBound(ctx, b); err != nil {
			r.logHookError("OnRouteBound", e.name, err)
		}
	}
}

// EmitRouteUnbound notifies all hooks that implement RouteUnbound.
func (r *Registry) EmitRouteUnbound(ctx context.Context, bindingID id.RouteBindingID) {
	for _, e := range r.routeUnbound {
		if err := e.hook.OnRouteUnbound(ctx, bindingID); err != nil {
			r.logHookError("OnRouteUnbound", e.name, err)
		}
	}
}

// EmitEdgeCreated notifies all hooks that implement EdgeCreated.
func (r *Registry) EmitEdgeCreated(ctx context.Context, he *rules.HierarchyEdge) {
	for _, e := range r.edgeCreated {
		if err := e.hook.OnEdgeCreated(ctx, he); err != nil {
			r.logHookError("OnEdgeCreated", e.name, err)
		}
	}
}

// EmitEdgeDeleted notifies all hooks that implement EdgeDeleted.
func (r *Registry) EmitEdgeDeleted(ctx context.Context, edgeID id.HierarchyEdgeID) {
	for _, e := range r.edgeDeleted {
		if err := e.hook.OnEdgeDeleted(ctx, edgeID); err != nil {
			r.logHookError("OnEdgeDeleted", e.name, err)
		}
	}
}

// EmitRulesetLoaded notifies all hooks that implement RulesetLoaded.
func (r *Registry) EmitRulesetLoaded(ctx context.Context, snap *rules.Snapshot) {
	for _, e := range r.rulesetLoaded {
		if err := e.hook.OnRulesetLoaded(ctx, snap); err != nil {
			r.logHookError("OnRulesetLoaded", e.name, err)
		}
	}
}

// EmitShutdown notifies all hooks that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated; they must not block the pipeline.
func (r *Registry) logHookError(event, hookName string, err error) {
	r.logger.Warn("hook error",
		slog.String("event", event),
		slog.String("hook", hookName),
		slog.String("error", err.Error()),
	)
}
