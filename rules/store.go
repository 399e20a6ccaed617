package rules

import (
	"context"

	"github.com/xraph/tollgate/id"
)

// Store defines persistence operations for authorization rules.
type Store interface {
	// CreateGrant persists a new permission grant.
	CreateGrant(ctx context.Context, g *Grant) error

	// GetGrant retrieves a grant by ID.
	GetGrant(ctx context.Context, grantID id.GrantID) (*Grant, error)

	// DeleteGrant removes a grant by ID.
	DeleteGrant(ctx context.Context, grantID id.GrantID) error

	// ListGrants returns grants matching the filter.
	ListGrants(ctx context.Context, filter *GrantFilter) ([]*Grant, error)

	// CountGrants returns the number of grants matching the filter.
	CountGrants(ctx context.Context, filter *GrantFilter) (int64, error)

	// DeleteGrantsByRole removes all grants for a role.
	DeleteGrantsByRole(ctx context.Context, tenantID, role string) error

	// CreateRouteBinding persists a new route binding.
	CreateRouteBinding(ctx context.Context, b *RouteBinding) error

	// GetRouteBinding retrieves a route binding by ID.
	GetRouteBinding(ctx context.Context, bindingID id.RouteBindingID) (*RouteBinding, error)

	// GetRouteBindingByRoute retrieves a binding by tenant and route.
	GetRouteBindingByRoute(ctx context.Context, tenantID, route string) (*RouteBinding, error)

	// UpdateRouteBinding persists changes to a route binding.
	UpdateRouteBinding(ctx context.Context, b *RouteBinding) error

	// DeleteRouteBinding removes a route binding by ID.
	DeleteRouteBinding(ctx context.Context, bindingID id.RouteBindingID) error

	// ListRouteBindings returns route bindings matching the filter.
	ListRouteBindings(ctx context.Context, filter *RouteFilter) ([]*RouteBinding, error)

	// CountRouteBindings returns the number of bindings matching the filter.
	CountRouteBindings(ctx context.Context, filter *RouteFilter) (int64, error)

	// CreateHierarchyEdge persists a new hierarchy edge.
	CreateHierarchyEdge(ctx context.Context, e *HierarchyEdge) error

	// GetHierarchyEdge retrieves a hierarchy edge by ID.
	GetHierarchyEdge(ctx context.Context, edgeID id.HierarchyEdgeID) (*HierarchyEdge, error)

	// DeleteHierarchyEdge removes a hierarchy edge by ID.
	DeleteHierarchyEdge(ctx context.Context, edgeID id.HierarchyEdgeID) error

	// ListHierarchyEdges returns hierarchy edges matching the filter.
	ListHierarchyEdges(ctx context.Context, filter *EdgeFilter) ([]*HierarchyEdge, error)

	// LoadSnapshot returns the full rule content for a tenant.
	// The engine materializes its static Ruleset from this at startup.
	LoadSnapshot(ctx context.Context, tenantID string) (*Snapshot, error)
}
