package sqlite

import (
	"encoding/json"
	"fmt"
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
	ID              string    `grove:"id,pk"`
	TenantID        string    `grove:"tenant_id,notnull"`
	Role            string    `grove:"role,notnull"`
	Permission      string    `grove:"permission,notnull"`
	IsSystem        bool      `grove:"is_system,notnull"`
	GrantedBy       string    `grove:"granted_by"`
	Metadata        string    `grove:"metadata"` // JSON text
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func grantToModel(g *rules.Grant) (*grantModel, error) {
	metadata, err := json.Marshal(g.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal grant metadata: %w", err)
	}
	return &grantModel{
		ID:         g.ID.String(),
		TenantID:   g.TenantID,
		Role:       g.Role,
		Permission: g.Permission,
		IsSystem:   g.IsSystem,
		GrantedBy:  g.GrantedBy,
		Metadata:   string(metadata),
		CreatedAt:  g.CreatedAt,
	}, nil
}

func grantFromModel(m *grantModel) (*rules.Grant, error) {
	gid, _ := id.ParseGrantID(m.ID) //nolint:errcheck // stored IDs are always valid
	var metadata map[string]any
	if m.Metadata != "" && m.Metadata != "null" {
		if err := json.Unmarshal([]byte(m.Metadata), &metadata); err != nil {
			return nil, fmt.Errorf("unmarshal grant metadata: %w", err)
		}
	}
	return &rules.Grant{
		ID:         gid,
		TenantID:   m.TenantID,
		Role:       m.Role,
		Permission: m.Permission,
		IsSystem:   m.IsSystem,
		GrantedBy:  m.GrantedBy,
		Metadata:   metadata,
		CreatedAt:  m.CreatedAt,
	}, nil
}

// ──────────────────────────────────────────────────
// Route binding model
// ──────────────────────────────────────────────────

type routeBindingModel struct {
	grove.BaseModel `grove:"table:tollgate_route_bindings"`
	ID              string    `grove:"id,pk"`
	TenantID        string    `grove:"tenant_id,notnull"`
	Route           string    `grove:"route,notnull"`
	Permissions     string    `grove:"permissions"` // JSON text
	Description     string    `grove:"description"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
	UpdatedAt       time.Time `grove:"updated_at,notnull"`
}

func routeBindingToModel(b *rules.RouteBinding) (*routeBindingModel, error) {
	perms := b.Permissions
	if perms == nil {
		perms = []string{}
	}
	encoded, err := json.Marshal(perms)
	if err != nil {
		return nil, fmt.Errorf("marshal route permissions: %w", err)
	}
	return &routeBindingModel{
		ID:          b.ID.String(),
		TenantID:    b.TenantID,
		Route:       b.Route,
		Permissions: string(encoded),
		Description: b.Description,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}, nil
}

func routeBindingFromModel(m *routeBindingModel) (*rules.RouteBinding, error) {
	bid, _ := id.ParseRouteBindingID(m.ID) //nolint:errcheck // stored IDs are always valid
	perms := []string{}
	if m.Permissions != "" && m.Permissions != "null" {
		if err := json.Unmarshal([]byte(m.Permissions), &perms); err != nil {
			return nil, fmt.Errorf("unmarshal route permissions: %w", err)
		}
	}
	return &rules.RouteBinding{
		ID:          bid,
		TenantID:    m.TenantID,
		Route:       m.Route,
		Permissions: perms,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}

// ──────────────────────────────────────────────────
// Hierarchy edge model
// ──────────────────────────────────────────────────

type hierarchyEdgeModel struct {
	grove.BaseModel `grove:"table:tollgate_hierarchy_edges"`
	ID              string    `grove:"id,pk"`
	TenantID        string    `grove:"tenant_id,notnull"`
	Manager         string    `grove:"manager,notnull"`
	Target          string    `grove:"target,notnull"`
	CreatedAt       time.Time `grove:"created_at,notnull"`
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
	ID              string    `grove:"id,pk"`
	TenantID        string    `grove:"tenant_id,notnull"`
	Role            string    `grove:"role,notnull"`
	Permission      string    `grove:"permission"`
	Route           string    `grove:"route"`
	ActorID         string    `grove:"actor_id"`
	OwnerID         string    `grove:"owner_id"`
	Decision        string    `grove:"decision,notnull"`
	Reason          string    `grove:"reason"`
	EvalTimeNs      int64     `grove:"eval_time_ns,notnull"`
	RequestIP       string    `grove:"request_ip"`
	Metadata        string    `grove:"metadata"` // JSON text
	CreatedAt       time.Time `grove:"created_at,notnull"`
}

func checkLogToModel(e *checklog.Entry) (*checkLogModel, error) {
	metadata, err := json.Marshal(e.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal check log metadata: %w", err)
	}
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
		Metadata:   string(metadata),
		CreatedAt:  e.CreatedAt,
	}, nil
}

func checkLogFromModel(m *checkLogModel) (*checklog.Entry, error) {
	lid, _ := id.ParseCheckLogID(m.ID) //nolint:errcheck // stored IDs are always valid
	var metadata map[string]any
	if m.Metadata != "" && m.Metadata != "null" {
		if err := json.Unmarshal([]byte(m.Metadata), &metadata); err != nil {
			return nil, fmt.Errorf("unmarshal check log metadata: %w", err)
		}
	}
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
		Metadata:   metadata,
		CreatedAt:  m.CreatedAt,
	}, nil
}
