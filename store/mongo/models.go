package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/tollgate/checklog"
	"github.com/xraph/tollgate/id"
	"github.com/xraph/tollgate/rules"
)

// ──────────────────────────────────────────────────
// Grant model
// ──────────────────────────────────────────────────

type grantModel struct {
	grove.BaseModel `grove:"table:tollgate_grants"`
	ID              string         `grove:"id,pk"        bson:"_id"`
	TenantID        string         `grove:"tenant_id"    bson:"tenant_id"`
	Role            string         `grove:"role"         bson:"role"`
	Permission      string         `grove:"permission"   bson:"permission"`
	IsSystem        bool           `grove:"is_system"    bson:"is_system"`
	GrantedBy       string         `grove:"granted_by"   bson:"granted_by,omitempty"`
	Metadata        map[string]any `grove:"metadata"     bson:"metadata,omitempty"`
	CreatedAt       time.Time      `grove:"created_at"   bson:"created_at"`
}

func grantToModel(g *rules.Grant) *grantModel {
	return &grantModel{
		ID:         g.ID.String(),
		TenantID:   g.TenantID,
		Role:       g.Role,
		Permission: g.Permission,
		IsSystem:   g.IsSystem,
		GrantedBy:  g.GrantedBy,
		Metadata:   g.Metadata,
		CreatedAt:  g.CreatedAt,
	}
}

func grantFromModel(m *grantModel) *rules.Grant {
	gid, _ := id.ParseGrantID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &rules.Grant{
		ID:         gid,
		TenantID:   m.TenantID,
		Role:       m.Role,
		Permission: m.Permission,
		IsSystem:   m.IsSystem,
		GrantedBy:  m.GrantedBy,
		Metadata:   m.Metadata,
		CreatedAt:  m.CreatedAt,
	}
}

// ──────────────────────────────────────────────────
// Route binding model
// ──────────────────────────────────────────────────

type routeBindingModel struct {
	grove.BaseModel `grove:"table:tollgate_route_bindings"`
	ID              string    `grove:"id,pk"        bson:"_id"`
	TenantID        string    `grove:"tenant_id"    bson:"tenant_id"`
	Route           string    `grove:"route"        bson:"route"`
	Permissions     []string  `grove:"permissions"  bson:"permissions"`
	Description     string    `grove:"description"  bson:"description,omitempty"`
	CreatedAt       time.Time `grove:"created_at"   bson:"created_at"`
	UpdatedAt       time.Time `grove:"updated_at"   bson:"updated_at"`
}

func routeBindingToModel(b *rules.RouteBinding) *routeBindingModel {
	perms := b.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &routeBindingModel{
		ID:          b.ID.String(),
		TenantID:    b.TenantID,
		Route:       b.Route,
		Permissions: perms,
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func routeBindingFromModel(m *routeBindingModel) *rules.RouteBinding {
	bid, _ := id.ParseRouteBindingID(m.ID) //nolint:errcheck // stored IDs are always valid
	perms := m.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &rules.RouteBinding{
		ID:          bid,
		TenantID:    m.TenantID,
		Route:       m.Route,
		Permissions: perms,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Hierarchy edge model
// ──────────────────────────────────────────────────

type hierarchyEdgeModel struct {
	grove.BaseModel `grove:"table:tollgate_hierarchy_edges"`
	ID              string    `grove:"id,pk"       bson:"_id"`
	TenantID        string    `grove:"tenant_id"   bson:"tenant_id"`
	Manager         string    `grove:"manager"     bson:"manager"`
	Target          string    `grove:"target"      bson:"target"`
	CreatedAt       time.Time `grove:"created_at"  bson:"created_at"`
}

func hierarchyEdgeToModel(e *rules.HierarchyEdge) *hierarchyEdgeModel {
	return &hierarchyEdgeModel{
		ID:        e.ID.String(),
		TenantID:  e.TenantID,
		Manager:   e.Manager,
		Target:    e.Target,
		CreatedAt: e.CreatedAt,
	}
}

func hierarchyEdgeFromModel(m *hierarchyEdgeModel) *rules.HierarchyEdge {
	eid, _ := id.ParseHierarchyEdgeID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &rules.HierarchyEdge{
		ID:        eid,
		TenantID:  m.TenantID,
		Manager:   m.Manager,
		Target:    m.Target,
		CreatedAt: m.CreatedAt,
	}
}

// ──────────────────────────────────────────────────
// Check log model
// ──────────────────────────────────────────────────

type checkLogModel struct {
	grove.BaseModel `grove:"table:tollgate_check_logs"`
	ID              string         `grove:"id,pk"         bson:"_id"`
	TenantID        string         `grove:"tenant_id"     bson:"tenant_id"`
	Role            string         `grove:"role"          bson:"role"`
	Permission      string         `grove:"permission"    bson:"permission,omitempty"`
	Route           string         `grove:"route"         bson:"route,omitempty"`
	ActorID         string         `grove:"actor_id"      bson:"actor_id,omitempty"`
	OwnerID         string         `grove:"owner_id"      bson:"owner_id,omitempty"`
	Decision        string         `grove:"decision"      bson:"decision"`
	Reason          string         `grove:"reason"        bson:"reason,omitempty"`
	EvalTimeNs      int64          `grove:"eval_time_ns"  bson:"eval_time_ns"`
	RequestIP       string         `grove:"request_ip"    bson:"request_ip,omitempty"`
	Metadata        map[string]any `grove:"metadata"      bson:"metadata,omitempty"`
	CreatedAt       time.Time      `grove:"created_at"    bson:"created_at"`
}

func checkLogToModel(e *checklog.Entry) *checkLogModel {
	return &checkLogModel{
		ID:         e.ID.String(),
		TenantID:   e.TenantID,
		Role:       e.Role,
		Permission: e.Permission,
		Route:      e.Route,
		ActorID:    e.ActorID,
		OwnerID:    e.OwnerID,
		Decision:   e.Decision,
		Reason:     e.Reason,
		EvalTimeNs: e.EvalTimeNs,
		RequestIP:  e.RequestIP,
		Metadata:   e.Metadata,
		CreatedAt:  e.CreatedAt,
	}
}

func checkLogFromModel(m *checkLogModel) *checklog.Entry {
	lid, _ := id.ParseCheckLogID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &checklog.Entry{
		ID:         lid,
		TenantID:   m.TenantID,
		Role:       m.Role,
		Permission: m.Permission,
		Route:      m.Route,
		ActorID:    m.ActorID,
		OwnerID:    m.OwnerID,
		Decision:   m.Decision,
		Reason:     m.Reason,
		EvalTimeNs: m.EvalTimeNs,
		RequestIP:  m.RequestIP,
		Metadata:   m.Metadata,
		CreatedAt:  m.CreatedAt,
	}
}
