package api

import (
	"github.com/xraph/tollgate"
)

// ──────────────────────────────────────────────────
// Check requests
// ──────────────────────────────────────────────────

// CheckRequest is the request body for an authorization check.
type CheckRequest struct {
	Role       string         `json:"role" description:"Actor role (e.g. salesperson)"`
	Permission string         `json:"permission,omitempty" description:"Permission token (verb:resource)"`
	Route      string         `json:"route,omitempty" description:"Route path for a route check"`
	ActorScope tollgate.Scope `json:"actor_scope,omitempty" description:"Actor organization/team/user scope"`
	Resource   tollgate.Scope `json:"resource,omitempty" description:"Resource organization/team/owner scope"`
}

// BatchCheckRequest contains multiple checks.
type BatchCheckRequest struct {
	Checks []CheckRequest `json:"checks" description:"List of authorization checks"`
}

// ──────────────────────────────────────────────────
// Introspection requests
// ──────────────────────────────────────────────────

// RoleIntrospectionRequest is the path parameter naming a role.
type RoleIntrospectionRequest struct {
	Role string `path:"role" description:"Role to introspect"`
}

// ──────────────────────────────────────────────────
// Grant requests
// ──────────────────────────────────────────────────

// CreateGrantRequest is the body for creating a permission grant.
type CreateGrantRequest struct {
	Role       string         `json:"role" description:"Role receiving the grant"`
	Permission string         `json:"permission" description:"Permission token (verb:resource)"`
	GrantedBy  string         `json:"granted_by,omitempty" description:"Actor who issued the grant"`
	Metadata   map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// GetGrantRequest is the path parameter for getting a grant.
type GetGrantRequest struct {
	GrantID string `path:"grantId" description:"Grant ID"`
}

// ListGrantsRequest holds query parameters for listing grants.
type ListGrantsRequest struct {
	Role       string `query:"role" description:"Filter by role"`
	Permission string `query:"permission" description:"Filter by permission"`
	Limit      int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset     int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Route binding requests
// ──────────────────────────────────────────────────

// CreateRouteBindingRequest is the body for binding permissions to a route.
type CreateRouteBindingRequest struct {
	Route       string   `json:"route" description:"Route path (e.g. /deals)"`
	Permissions []string `json:"permissions" description:"Any-of permission tokens; empty marks the route open"`
	Description string   `json:"description,omitempty" description:"Human-readable description"`
}

// UpdateRouteBindingRequest is the body for updating a route binding.
type UpdateRouteBindingRequest struct {
	Permissions []string `json:"permissions,omitempty" description:"Replacement permission list"`
	Description string   `json:"description,omitempty" description:"Human-readable description"`
}

// GetRouteBindingRequest is the path parameter for getting a route binding.
type GetRouteBindingRequest struct {
	BindingID string `path:"bindingId" description:"Route binding ID"`
}

// ListRouteBindingsRequest holds query parameters for listing route bindings.
type ListRouteBindingsRequest struct {
	Search string `query:"search" description:"Search by route path"`
	Limit  int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Hierarchy edge requests
// ──────────────────────────────────────────────────

// CreateHierarchyEdgeRequest is the body for declaring a manager/target pair.
type CreateHierarchyEdgeRequest struct {
	Manager string `json:"manager" description:"Managing role"`
	Target  string `json:"target" description:"Managed role"`
}

// GetHierarchyEdgeRequest is the path parameter for getting an edge.
type GetHierarchyEdgeRequest struct {
	EdgeID string `path:"edgeId" description:"Hierarchy edge ID"`
}

// ListHierarchyEdgesRequest holds query parameters for listing edges.
type ListHierarchyEdgesRequest struct {
	Manager string `query:"manager" description:"Filter by managing role"`
	Target  string `query:"target" description:"Filter by managed role"`
	Limit   int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset  int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Check log requests
// ──────────────────────────────────────────────────

// ListCheckLogsRequest holds query parameters for querying check logs.
type ListCheckLogsRequest struct {
	Role       string `query:"role" description:"Filter by role"`
	Permission string `query:"permission" description:"Filter by permission"`
	Route      string `query:"route" description:"Filter by route"`
	ActorID    string `query:"actor_id" description:"Filter by actor ID"`
	Decision   string `query:"decision" description:"Filter by decision code"`
	After      string `query:"after" description:"After timestamp (RFC3339)"`
	Before     string `query:"before" description:"Before timestamp (RFC3339)"`
	Limit      int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset     int    `query:"offset" description:"Results to skip"`
}
