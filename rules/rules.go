// Package rules defines the persistent entities behind a tollgate Ruleset:
// permission grants, route bindings, and hierarchy edges. Role and
// permission values are carried as plain strings here; the root package
// interprets them against its closed sets when a snapshot is materialized.
package rules

import (
	"time"

	"github.com/xraph/tollgate/id"
)

// Grant records that a role holds a permission.
type Grant struct {
	ID         id.GrantID     `json:"id" db:"id"`
	TenantID   string         `json:"tenant_id" db:"tenant_id"`
	Role       string         `json:"role" db:"role"`
	Permission string         `json:"permission" db:"permission"`
	IsSystem   bool           `json:"is_system" db:"is_system"`
	GrantedBy  string         `json:"granted_by,omitempty" db:"granted_by"`
	Metadata   map[string]any `json:"metadata,omitempty" db:"metadata"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

// RouteBinding records the permissions required to access a route.
// Any-of semantics: one held permission grants access. A binding with an
// empty permission list marks the route as open to every valid role.
type RouteBinding struct {
	ID          id.RouteBindingID `json:"id" db:"id"`
	TenantID    string            `json:"tenant_id" db:"tenant_id"`
	Route       string            `json:"route" db:"route"`
	Permissions []string          `json:"permissions" db:"permissions"`
	Description string            `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`
}

// HierarchyEdge records that a manager role may administratively manage a
// target role (create, edit, deactivate its accounts).
type HierarchyEdge struct {
	ID        id.HierarchyEdgeID `json:"id" db:"id"`
	TenantID  string             `json:"tenant_id" db:"tenant_id"`
	Manager   string             `json:"manager" db:"manager"`
	Target    string             `json:"target" db:"target"`
	CreatedAt time.Time          `json:"created_at" db:"created_at"`
}

// Snapshot is the raw, uninterpreted content of a rules store at one point
// in time. The root package converts it into a validated Ruleset.
type Snapshot struct {
	Grants   []*Grant
	Routes   []*RouteBinding
	Edges    []*HierarchyEdge
	LoadedAt time.Time
}

// GrantFilter contains filters for listing grants.
type GrantFilter struct {
	TenantID   string `json:"tenant_id,omitempty"`
	Role       string `json:"role,omitempty"`
	Permission string `json:"permission,omitempty"`
	IsSystem   *bool  `json:"is_system,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	Offset     int    `json:"offset,omitempty"`
}

// RouteFilter contains filters for listing route bindings.
type RouteFilter struct {
	TenantID string `json:"tenant_id,omitempty"`
	Route    string `json:"route,omitempty"`
	Search   string `json:"search,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// EdgeFilter contains filters for listing hierarchy edges.
type EdgeFilter struct {
	TenantID string `json:"tenant_id,omitempty"`
	Manager  string `json:"manager,omitempty"`
	Target   string `json:"target,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}
