package tollgate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/xraph/tollgate/checklog"
	"github.com/xraph/tollgate/hook"
	"github.com/xraph/tollgate/id"
	"github.com/xraph/tollgate/store"
)

// Engine is the central authorization engine. It answers permission, route,
// hierarchy, and resource-scope questions against a static ruleset, and
// optionally audits decisions and fires lifecycle hooks.
//
// All query operations are pure: they never return errors, never panic on
// malformed input (degrading to deny), and are safe for unsynchronized
// concurrent use.
type Engine struct {
	store   store.Store
	ruleset atomic.Pointer[Ruleset]
	initial *Ruleset
	cache   Cache
	hooks   *hook.Registry
	logger  *slog.Logger
	config  Config
}

// NewEngine creates a new Tollgate engine with the given options.
// Either a ruleset or a store must be provided; with both, the explicit
// ruleset wins and the store is only used for audit logging.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger: slog.Default(),
		config: DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.initial == nil && e.store == nil {
		return nil, ErrNoRuleset
	}
	if e.initial != nil {
		if err := e.initial.Validate(); err != nil {
			return nil, fmt.Errorf("tollgate: invalid ruleset: %w", err)
		}
		e.ruleset.Store(e.initial.Clone())
		e.initial = nil
	}
	return e, nil
}

// Store returns the underlying composite store (may be nil).
func (e *Engine) Store() store.Store { return e.store }

// Hooks returns the hook registry (may be nil).
func (e *Engine) Hooks() *hook.Registry { return e.hooks }

// Ruleset returns the active ruleset (nil before Start when loading from a
// store). The returned value must be treated as read-only.
func (e *Engine) Ruleset() *Ruleset { return e.ruleset.Load() }

// Start performs startup initialization. When the engine was built without
// an explicit ruleset it loads one from the store, using the tenant carried
// by ctx (WithTenant or forge.Scope).
func (e *Engine) Start(ctx context.Context) error {
	if e.ruleset.Load() != nil {
		return nil
	}
	return e.Reload(ctx)
}

// Stop performs graceful shutdown.
func (e *Engine) Stop(ctx context.Context) error {
	if e.hooks != nil {
		e.hooks.EmitShutdown(ctx)
	}
	return nil
}

// Reload re-materializes the ruleset from the store and flushes the cache.
// This is an explicit administrative operation; between reloads the active
// ruleset never changes.
func (e *Engine) Reload(ctx context.Context) error {
	if e.store == nil {
		return ErrNoRuleset
	}
	tenantID := TenantFromContext(ctx)
	snap, err := e.store.LoadSnapshot(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("tollgate: load snapshot: %w", err)
	}
	rs, err := RulesetFromSnapshot(snap)
	if err != nil {
		return fmt.Errorf("tollgate: materialize ruleset: %w", err)
	}
	e.ruleset.Store(rs)
	if e.cache != nil {
		e.cache.InvalidateTenant(ctx, tenantID)
	}
	if e.hooks != nil {
		e.hooks.EmitRulesetLoaded(ctx, snap)
	}
	e.logger.Info("ruleset loaded",
		slog.String("tenant", tenantID),
		slog.Int("grants", len(snap.Grants)),
		slog.Int("routes", len(snap.Routes)),
		slog.Int("edges", len(snap.Edges)),
	)
	return nil
}

// ──────────────────────────────────────────────────
// Permission queries
// ──────────────────────────────────────────────────

// HasPermission reports whether the role holds the permission. Unknown
// roles and empty permissions are false, never an error.
func (e *Engine) HasPermission(role Role, perm Permission) bool {
	rs := e.ruleset.Load()
	if rs == nil || !role.Valid() || perm == "" {
		return false
	}
	for _, granted := range rs.Permissions[role] {
		if matchPermission(granted, perm) {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether the role holds at least one of the
// given permissions. An empty list is false.
func (e *Engine) HasAnyPermission(role Role, perms ...Permission) bool {
	for _, p := range perms {
		if e.HasPermission(role, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the role holds every given permission.
// An empty list is vacuously true.
func (e *Engine) HasAllPermissions(role Role, perms ...Permission) bool {
	for _, p := range perms {
		if !e.HasPermission(role, p) {
			return false
		}
	}
	return true
}

// ──────────────────────────────────────────────────
// Route queries
// ──────────────────────────────────────────────────

// CanAccessRoute reports whether the role may access the route. A route
// with no binding follows the configured RoutePolicy (fail-open by
// default); a route bound to an empty permission set is always open.
func (e *Engine) CanAccessRoute(role Role, route string) bool {
	rs := e.ruleset.Load()
	if rs == nil {
		return false
	}
	perms, bound := rs.Routes[route]
	if !bound {
		return e.config.failOpen()
	}
	if len(perms) == 0 {
		return true
	}
	return e.HasAnyPermission(role, perms...)
}

// AccessibleRoutes returns all declared routes the role may access, in
// lexical order. Repeated calls with an unchanged ruleset return the same
// result.
func (e *Engine) AccessibleRoutes(role Role) []string {
	rs := e.ruleset.Load()
	if rs == nil {
		return nil
	}
	routes := make([]string, 0, len(rs.Routes))
	for route := range rs.Routes {
		if e.CanAccessRoute(role, route) {
			routes = append(routes, route)
		}
	}
	sort.Strings(routes)
	return routes
}

// ──────────────────────────────────────────────────
// Hierarchy queries
// ──────────────────────────────────────────────────

// CanManageRole reports whether managerRole may administratively manage
// targetRole. No role manages itself; unknown roles are false.
func (e *Engine) CanManageRole(managerRole, targetRole Role) bool {
	rs := e.ruleset.Load()
	if rs == nil || !managerRole.Valid() || !targetRole.Valid() {
		return false
	}
	for _, t := range rs.Hierarchy[managerRole] {
		if t == targetRole {
			return true
		}
	}
	return false
}

// ManageableRoles returns the roles the given role may manage, or nil.
func (e *Engine) ManageableRoles(role Role) []Role {
	rs := e.ruleset.Load()
	if rs == nil {
		return nil
	}
	targets := rs.Hierarchy[role]
	if len(targets) == 0 {
		return nil
	}
	return append([]Role(nil), targets...)
}

// ──────────────────────────────────────────────────
// Resource scope queries
// ──────────────────────────────────────────────────

// CanAccessResource reports whether the role's permission extends to a
// specific resource. The permission gate runs first; only then is the
// role-specific scope comparison applied.
func (e *Engine) CanAccessResource(role Role, perm Permission, actor, resource Scope) bool {
	if !e.HasPermission(role, perm) {
		return false
	}
	return scopeAllows(role, perm, actor, resource)
}

// FilterByScope returns the items whose own scope the role may access
// under the given permission. Order is preserved.
func FilterByScope[T Scoped](e *Engine, items []T, role Role, actor Scope, perm Permission) []T {
	if !e.HasPermission(role, perm) {
		return nil
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if scopeAllows(role, perm, actor, item.AccessScope()) {
			out = append(out, item)
		}
	}
	return out
}

// ──────────────────────────────────────────────────
// Full checks
// ──────────────────────────────────────────────────

// Check performs a full authorization check with decision codes, caching,
// auditing, and hook dispatch. This is the hot path for the API layer.
func (e *Engine) Check(ctx context.Context, req *CheckRequest) (*CheckResult, error) {
	start := time.Now()
	tenantID := TenantFromContext(ctx)

	if e.cache != nil {
		if cached, ok := e.cache.Get(ctx, tenantID, req); ok {
			cached.EvalTimeNs = time.Since(start).Nanoseconds()
			return cached, nil
		}
	}

	if e.hooks != nil {
		e.hooks.EmitBeforeCheck(ctx, req)
	}

	result := e.evaluate(req)
	result.EvalTimeNs = time.Since(start).Nanoseconds()

	if e.cache != nil {
		e.cache.Set(ctx, tenantID, req, result)
	}
	if e.hooks != nil {
		e.hooks.EmitAfterCheck(ctx, req, result)
	}
	if e.config.AuditChecks && e.store != nil {
		e.audit(ctx, tenantID, req, result)
	}

	return result, nil
}

// Enforce returns an error if the authorization check is denied.
func (e *Engine) Enforce(ctx context.Context, req *CheckRequest) error {
	result, err := e.Check(ctx, req)
	if err != nil {
		return fmt.Errorf("tollgate check: %w", err)
	}
	if !result.Allowed {
		return fmt.Errorf("%w: %s: %s", ErrAccessDenied, result.Decision, result.Reason)
	}
	return nil
}

// evaluate computes the decision without caching or side effects.
func (e *Engine) evaluate(req *CheckRequest) *CheckResult {
	rs := e.ruleset.Load()
	if rs == nil {
		return &CheckResult{Decision: DecisionDenyDefault, Reason: "no ruleset loaded"}
	}

	if req.Route != "" {
		return e.evaluateRoute(rs, req)
	}

	if !req.Role.Valid() {
		return &CheckResult{Decision: DecisionDenyUnknownRole, Reason: fmt.Sprintf("role %q is not recognized", req.Role)}
	}
	if !e.HasPermission(req.Role, req.Permission) {
		return &CheckResult{Decision: DecisionDenyNoPermission, Reason: fmt.Sprintf("role %q does not hold %q", req.Role, req.Permission)}
	}
	if req.Resource.isZero() {
		return &CheckResult{Allowed: true, Decision: DecisionAllow}
	}
	if !scopeAllows(req.Role, req.Permission, req.ActorScope, req.Resource) {
		return &CheckResult{Decision: DecisionDenyScope, Reason: "actor scope does not extend to resource"}
	}
	return &CheckResult{Allowed: true, Decision: DecisionAllow}
}

func (e *Engine) evaluateRoute(rs *Ruleset, req *CheckRequest) *CheckResult {
	perms, bound := rs.Routes[req.Route]
	if !bound {
		if e.config.failOpen() {
			return &CheckResult{Allowed: true, Decision: DecisionAllowUnlisted, Reason: "route has no binding"}
		}
		return &CheckResult{Decision: DecisionDenyUnlisted, Reason: "route has no binding"}
	}
	if len(perms) == 0 {
		return &CheckResult{Allowed: true, Decision: DecisionAllow, Reason: "route is open"}
	}
	if !req.Role.Valid() {
		return &CheckResult{Decision: DecisionDenyUnknownRole, Reason: fmt.Sprintf("role %q is not recognized", req.Role)}
	}
	if e.HasAnyPermission(req.Role, perms...) {
		return &CheckResult{Allowed: true, Decision: DecisionAllow}
	}
	return &CheckResult{Decision: DecisionDenyRoute, Reason: fmt.Sprintf("role %q holds none of the route permissions", req.Role)}
}

// audit records the decision in the checklog store. Failures are logged,
// never propagated: auditing must not block authorization.
func (e *Engine) audit(ctx context.Context, tenantID string, req *CheckRequest, result *CheckResult) {
	entry := &checklog.Entry{
		ID:         id.NewCheckLogID(),
		TenantID:   tenantID,
		Role:       string(req.Role),
		Permission: string(req.Permission),
		Route:      req.Route,
		ActorID:    req.ActorScope.UserID,
		OwnerID:    req.Resource.OwnerID,
		Decision:   string(result.Decision),
		Reason:     result.Reason,
		EvalTimeNs: result.EvalTimeNs,
		CreatedAt:  time.Now().UTC(),
	}
	if err := e.store.CreateCheckLog(ctx, entry); err != nil {
		e.logger.Warn("check audit failed", slog.String("error", err.Error()))
	}
}
