// Package mongo provides a MongoDB implementation of the Tollgate
// composite store using grove ORM.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongod "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/tollgate"
	"github.com/xraph/tollgate/checklog"
	"github.com/xraph/tollgate/id"
	"github.com/xraph/tollgate/rules"
	"github.com/xraph/tollgate/store"
)

// Collection name constants.
const (
	colGrants        = "tollgate_grants"
	colRouteBindings = "tollgate_route_bindings"
	colEdges         = "tollgate_hierarchy_edges"
	colCheckLogs     = "tollgate_check_logs"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a MongoDB implementation of the composite Tollgate store.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// Migrate creates indexes for all tollgate collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()
	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("tollgate/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongod.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all tollgate
// collections. Unique indexes mirror the SQL backends' constraints.
func migrationIndexes() map[string][]mongod.IndexModel {
	return map[string][]mongod.IndexModel{
		colGrants: {
			{
				Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "role", Value: 1}, {Key: "permission", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "role", Value: 1}}},
		},
		colRouteBindings: {
			{
				Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "route", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}}},
		},
		colEdges: {
			{
				Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "manager", Value: 1}, {Key: "target", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}}},
		},
		colCheckLogs: {
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "role", Value: 1}}},
			{Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "decision", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: 1}}},
		},
	}
}

// ──────────────────────────────────────────────────
// Grant operations
// ──────────────────────────────────────────────────

func (s *Store) CreateGrant(ctx context.Context, g *rules.Grant) error {
	if g.ID.IsNil() {
		g.ID = id.NewGrantID()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now()
	}
	m := grantToModel(g)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s/%s: %w", g.Role, g.Permission, tollgate.ErrDuplicateGrant)
		}
		return fmt.Errorf("tollgate: create grant: %w", err)
	}
	return nil
}

func (s *Store) GetGrant(ctx context.Context, grantID id.GrantID) (*rules.Grant, error) {
	var m grantModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": grantID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("grant %s: %w", grantID, tollgate.ErrGrantNotFound)
		}
		return nil, fmt.Errorf("tollgate: get grant: %w", err)
	}
	return grantFromModel(&m), nil
}

func (s *Store) DeleteGrant(ctx context.Context, grantID id.GrantID) error {
	res, err := s.mdb.NewDelete((*grantModel)(nil)).
		Filter(bson.M{"_id": grantID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tollgate: delete grant: %w", err)
	}
	if res.DeletedCount() == 0 {
		return fmt.Errorf("grant %s: %w", grantID, tollgate.ErrGrantNotFound)
	}
	return nil
}

func grantFilterToBSON(filter *rules.GrantFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.TenantID != "" {
		f["tenant_id"] = filter.TenantID
	}
	if filter.Role != "" {
		f["role"] = filter.Role
	}
	if filter.Permission != "" {
		f["permission"] = filter.Permission
	}
	if filter.IsSystem != nil {
		f["is_system"] = *filter.IsSystem
	}
	return f
}

func (s *Store) ListGrants(ctx context.Context, filter *rules.GrantFilter) ([]*rules.Grant, error) {
	var models []grantModel
	q := s.mdb.NewFind(&models).
		Filter(grantFilterToBSON(filter)).
		Sort(bson.D{{Key: "created_at", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("tollgate: list grants: %w", err)
	}
	result := make([]*rules.Grant, len(models))
	for i := range models {
		result[i] = grantFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountGrants(ctx context.Context, filter *rules.GrantFilter) (int64, error) {
	count, err := s.mdb.NewFind((*grantModel)(nil)).
		Filter(grantFilterToBSON(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("tollgate: count grants: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteGrantsByRole(ctx context.Context, tenantID, role string) error {
	_, err := s.mdb.NewDelete((*grantModel)(nil)).
		Many().
		Filter(bson.M{"tenant_id": tenantID, "role": role}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tollgate: delete grants by role: %w", err)
	}
	return nil
}

// ──────────────────────────────────────────────────
// Route binding operations
// ──────────────────────────────────────────────────

func (s *Store) CreateRouteBinding(ctx context.Context, b *rules.RouteBinding) error {
	if b.ID.IsNil() {
		b.ID = id.NewRouteBindingID()
	}
	t := now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = t
	}
	b.UpdatedAt = t
	m := routeBindingToModel(b)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("tollgate: create route binding: %w", err)
	}
	return nil
}

func (s *Store) GetRouteBinding(ctx context.Context, bindingID id.RouteBindingID) (*rules.RouteBinding, error) {
	var m routeBindingModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": bindingID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("route binding %s: %w", bindingID, tollgate.ErrRouteBindingNotFound)
		}
		return nil, fmt.Errorf("tollgate: get route binding: %w", err)
	}
	return routeBindingFromModel(&m), nil
}

func (s *Store) GetRouteBindingByRoute(ctx context.Context, tenantID, route string) (*rules.RouteBinding, error) {
	var m routeBindingModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"tenant_id": tenantID, "route": route}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("route %q: %w", route, tollgate.ErrRouteBindingNotFound)
		}
		return nil, fmt.Errorf("tollgate: get route binding by route: %w", err)
	}
	return routeBindingFromModel(&m), nil
}

func (s *Store) UpdateRouteBinding(ctx context.Context, b *rules.RouteBinding) error {
	b.UpdatedAt = now()
	m := routeBindingToModel(b)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tollgate: update route binding: %w", err)
	}
	if res.MatchedCount() == 0 {
		return fmt.Errorf("route binding %s: %w", b.ID, tollgate.ErrRouteBindingNotFound)
	}
	return nil
}

func (s *Store) DeleteRouteBinding(ctx context.Context, bindingID id.RouteBindingID) error {
	res, err := s.mdb.NewDelete((*routeBindingModel)(nil)).
		Filter(bson.M{"_id": bindingID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tollgate: delete route binding: %w", err)
	}
	if res.DeletedCount() == 0 {
		return fmt.Errorf("route binding %s: %w", bindingID, tollgate.ErrRouteBindingNotFound)
	}
	return nil
}

func routeFilterToBSON(filter *rules.RouteFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.TenantID != "" {
		f["tenant_id"] = filter.TenantID
	}
	if filter.Route != "" {
		f["route"] = filter.Route
	}
	if filter.Search != "" {
		f["route"] = bson.M{"$regex": filter.Search, "$options": "i"}
	}
	return f
}

func (s *Store) ListRouteBindings(ctx context.Context, filter *rules.RouteFilter) ([]*rules.RouteBinding, error) {
	var models []routeBindingModel
	q := s.mdb.NewFind(&models).
		Filter(routeFilterToBSON(filter)).
		Sort(bson.D{{Key: "route", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("tollgate: list route bindings: %w", err)
	}
	result := make([]*rules.RouteBinding, len(models))
	for i := range models {
		result[i] = routeBindingFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountRouteBindings(ctx context.Context, filter *rules.RouteFilter) (int64, error) {
	count, err := s.mdb.NewFind((*routeBindingModel)(nil)).
		Filter(routeFilterToBSON(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("tollgate: count route bindings: %w", err)
	}
	return count, nil
}

// ──────────────────────────────────────────────────
// Hierarchy edge operations
// ──────────────────────────────────────────────────

func (s *Store) CreateHierarchyEdge(ctx context.Context, e *rules.HierarchyEdge) error {
	if e.ID.IsNil() {
		e.ID = id.NewHierarchyEdgeID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now()
	}
	m := hierarchyEdgeToModel(e)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		if mongod.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s->%s: %w", e.Manager, e.Target, tollgate.ErrDuplicateEdge)
		}
		return fmt.Errorf("tollgate: create hierarchy edge: %w", err)
	}
	return nil
}

func (s *Store) GetHierarchyEdge(ctx context.Context, edgeID id.HierarchyEdgeID) (*rules.HierarchyEdge, error) {
	var m hierarchyEdgeModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": edgeID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("hierarchy edge %s: %w", edgeID, tollgate.ErrHierarchyEdgeNotFound)
		}
		return nil, fmt.Errorf("tollgate: get hierarchy edge: %w", err)
	}
	return hierarchyEdgeFromModel(&m), nil
}

func (s *Store) DeleteHierarchyEdge(ctx context.Context, edgeID id.HierarchyEdgeID) error {
	res, err := s.mdb.NewDelete((*hierarchyEdgeModel)(nil)).
		Filter(bson.M{"_id": edgeID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tollgate: delete hierarchy edge: %w", err)
	}
	if res.DeletedCount() == 0 {
		return fmt.Errorf("hierarchy edge %s: %w", edgeID, tollgate.ErrHierarchyEdgeNotFound)
	}
	return nil
}

func (s *Store) ListHierarchyEdges(ctx context.Context, filter *rules.EdgeFilter) ([]*rules.HierarchyEdge, error) {
	var models []hierarchyEdgeModel
	f := bson.M{}
	if filter != nil {
		if filter.TenantID != "" {
			f["tenant_id"] = filter.TenantID
		}
		if filter.Manager != "" {
			f["manager"] = filter.Manager
		}
		if filter.Target != "" {
			f["target"] = filter.Target
		}
	}
	q := s.mdb.NewFind(&models).
		Filter(f).
		Sort(bson.D{{Key: "created_at", Value: 1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("tollgate: list hierarchy edges: %w", err)
	}
	result := make([]*rules.HierarchyEdge, len(models))
	for i := range models {
		result[i] = hierarchyEdgeFromModel(&models[i])
	}
	return result, nil
}

// LoadSnapshot returns the full rule content for a tenant.
func (s *Store) LoadSnapshot(ctx context.Context, tenantID string) (*rules.Snapshot, error) {
	grants, err := s.ListGrants(ctx, &rules.GrantFilter{TenantID: tenantID})
	if err != nil {
		return nil, err
	}
	routes, err := s.ListRouteBindings(ctx, &rules.RouteFilter{TenantID: tenantID})
	if err != nil {
		return nil, err
	}
	edges, err := s.ListHierarchyEdges(ctx, &rules.EdgeFilter{TenantID: tenantID})
	if err != nil {
		return nil, err
	}
	return &rules.Snapshot{
		Grants:   grants,
		Routes:   routes,
		Edges:    edges,
		LoadedAt: now(),
	}, nil
}

// ──────────────────────────────────────────────────
// Check log operations
// ──────────────────────────────────────────────────

func (s *Store) CreateCheckLog(ctx context.Context, e *checklog.Entry) error {
	if e.ID.IsNil() {
		e.ID = id.NewCheckLogID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now()
	}
	m := checkLogToModel(e)
	if _, err := s.mdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("tollgate: create check log: %w", err)
	}
	return nil
}

func (s *Store) GetCheckLog(ctx context.Context, logID id.CheckLogID) (*checklog.Entry, error) {
	var m checkLogModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": logID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, fmt.Errorf("check log %s: not found", logID)
		}
		return nil, fmt.Errorf("tollgate: get check log: %w", err)
	}
	return checkLogFromModel(&m), nil
}

func checkLogFilterToBSON(filter *checklog.QueryFilter) bson.M {
	f := bson.M{}
	if filter == nil {
		return f
	}
	if filter.TenantID != "" {
		f["tenant_id"] = filter.TenantID
	}
	if filter.Role != "" {
		f["role"] = filter.Role
	}
	if filter.Permission != "" {
		f["permission"] = filter.Permission
	}
	if filter.Route != "" {
		f["route"] = filter.Route
	}
	if filter.ActorID != "" {
		f["actor_id"] = filter.ActorID
	}
	if filter.Decision != "" {
		f["decision"] = filter.Decision
	}
	if filter.After != nil || filter.Before != nil {
		created := bson.M{}
		if filter.After != nil {
			created["$gt"] = *filter.After
		}
		if filter.Before != nil {
			created["$lt"] = *filter.Before
		}
		f["created_at"] = created
	}
	return f
}

func (s *Store) ListCheckLogs(ctx context.Context, filter *checklog.QueryFilter) ([]*checklog.Entry, error) {
	var models []checkLogModel
	q := s.mdb.NewFind(&models).
		Filter(checkLogFilterToBSON(filter)).
		Sort(bson.D{{Key: "created_at", Value: -1}})
	if filter != nil {
		if filter.Limit > 0 {
			q = q.Limit(int64(filter.Limit))
		}
		if filter.Offset > 0 {
			q = q.Skip(int64(filter.Offset))
		}
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("tollgate: list check logs: %w", err)
	}
	result := make([]*checklog.Entry, len(models))
	for i := range models {
		result[i] = checkLogFromModel(&models[i])
	}
	return result, nil
}

func (s *Store) CountCheckLogs(ctx context.Context, filter *checklog.QueryFilter) (int64, error) {
	count, err := s.mdb.NewFind((*checkLogModel)(nil)).
		Filter(checkLogFilterToBSON(filter)).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("tollgate: count check logs: %w", err)
	}
	return count, nil
}

func (s *Store) PurgeCheckLogs(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.mdb.NewDelete((*checkLogModel)(nil)).
		Many().
		Filter(bson.M{"created_at": bson.M{"$lt": before}}).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("tollgate: purge check logs: %w", err)
	}
	return res.DeletedCount(), nil
}

func (s *Store) DeleteCheckLogsByTenant(ctx context.Context, tenantID string) error {
	_, err := s.mdb.NewDelete((*checkLogModel)(nil)).
		Many().
		Filter(bson.M{"tenant_id": tenantID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("tollgate: delete check logs by tenant: %w", err)
	}
	return nil
}
