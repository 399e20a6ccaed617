// Package postgres provides a PostgreSQL implementation of the Tollgate
// composite store using grove ORM with Go-based migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/tollgate"
	"github.com/xraph/tollgate/checklog"
	"github.com/xraph/tollgate/id"
	"github.com/xraph/tollgate/rules"
	"github.com/xraph/tollgate/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Store is a PostgreSQL implementation of the composite Tollgate store.
type Store struct {
	db   *grove.DB
	pgdb *pgdriver.PgDB
}

// New creates a new PostgreSQL store.
func New(db *grove.DB) *Store {
	return &Store{
		db:   db,
		pgdb: pgdriver.Unwrap(db),
	}
}

// Migrate runs programmatic migrations via the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pgdb)
	if err != nil {
		return fmt.Errorf("tollgate: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("tollgate: migration failed: %w", err)
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

// isUniqueViolation unwraps pgx driver errors and matches the Postgres
// unique_violation code, so duplicate rows map to the package sentinels.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ──────────────────────────────────────────────────
// Grant operations
// ──────────────────────────────────────────────────

func (s *Store) CreateGrant(ctx context.Context, g *rules.Grant) error {
	if g.ID.IsNil() {
		g.ID = id.NewGrantID()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	m := grantToModel(g)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s/%s: %w", g.Role, g.Permission, tollgate.ErrDuplicateGrant)
		}
		return fmt.Errorf("tollgate: create grant: %w", err)
	}
	return nil
}

func (s *Store) GetGrant(ctx context.Context, grantID id.GrantID) (*rules.Grant, error) {
	m := new(grantModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", grantID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("grant %s: %w", grantID, tollgate.ErrGrantNotFound)
		}
		return nil, fmt.Errorf("tollgate: get grant: %w", err)
	}
	return grantFromModel(m), nil
}

func (s *Store) DeleteGrant(ctx context.Context, grantID id.GrantID) error {
	res, err := s.pgdb.NewDelete((*grantModel)(nil)).
		Where("id = ?", grantID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("tollgate: delete grant: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("grant %s: %w", grantID, tollgate.ErrGrantNotFound)
	}
	return nil
}

func (s *Store) ListGrants(ctx context.Context, filter *rules.GrantFilter) ([]*rules.Grant, error) {
	var models []grantModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.Role != "" {
			q = q.Where("role = ?", filter.Role)
		}
		if filter.Permission != "" {
			q = q.Where("permission = ?", filter.Permission)
		}
		if filter.IsSystem != nil {
			q = q.Where("is_system = ?", *filter.IsSystem)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
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
	q := s.pgdb.NewSelect((*grantModel)(nil))
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.Role != "" {
			q = q.Where("role = ?", filter.Role)
		}
		if filter.Permission != "" {
			q = q.Where("permission = ?", filter.Permission)
		}
		if filter.IsSystem != nil {
			q = q.Where("is_system = ?", *filter.IsSystem)
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("tollgate: count grants: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteGrantsByRole(ctx context.Context, tenantID, role string) error {
	_, err := s.pgdb.NewDelete((*grantModel)(nil)).
		Where("tenant_id = ?", tenantID).
		Where("role = ?", role).
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
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	m := routeBindingToModel(b)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("tollgate: create route binding: %w", err)
	}
	return nil
}

func (s *Store) GetRouteBinding(ctx context.Context, bindingID id.RouteBindingID) (*rules.RouteBinding, error) {
	m := new(routeBindingModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", bindingID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("route binding %s: %w", bindingID, tollgate.ErrRouteBindingNotFound)
		}
		return nil, fmt.Errorf("tollgate: get route binding: %w", err)
	}
	return routeBindingFromModel(m), nil
}

func (s *Store) GetRouteBindingByRoute(ctx context.Context, tenantID, route string) (*rules.RouteBinding, error) {
	m := new(routeBindingModel)
	err := s.pgdb.NewSelect(m).
		Where("tenant_id = ?", tenantID).
		Where("route = ?", route).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("route %q: %w", route, tollgate.ErrRouteBindingNotFound)
		}
		return nil, fmt.Errorf("tollgate: get route binding by route: %w", err)
	}
	return routeBindingFromModel(m), nil
}

func (s *Store) UpdateRouteBinding(ctx context.Context, b *rules.RouteBinding) error {
	b.UpdatedAt = time.Now().UTC()
	m := routeBindingToModel(b)
	_, err := s.pgdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("tollgate: update route binding: %w", err)
	}
	return nil
}

func (s *Store) DeleteRouteBinding(ctx context.Context, bindingID id.RouteBindingID) error {
	res, err := s.pgdb.NewDelete((*routeBindingModel)(nil)).
		Where("id = ?", bindingID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("tollgate: delete route binding: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("route binding %s: %w", bindingID, tollgate.ErrRouteBindingNotFound)
	}
	return nil
}

func (s *Store) ListRouteBindings(ctx context.Context, filter *rules.RouteFilter) ([]*rules.RouteBinding, error) {
	var models []routeBindingModel
	q := s.pgdb.NewSelect(&models).OrderExpr("route ASC")
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.Route != "" {
			q = q.Where("route = ?", filter.Route)
		}
		if filter.Search != "" {
			q = q.Where("LOWER(route) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
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
	q := s.pgdb.NewSelect((*routeBindingModel)(nil))
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.Route != "" {
			q = q.Where("route = ?", filter.Route)
		}
		if filter.Search != "" {
			q = q.Where("LOWER(route) LIKE LOWER(?)", "%"+filter.Search+"%")
		}
	}
	count, err := q.Count(ctx)
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
		e.CreatedAt = time.Now().UTC()
	}
	m := hierarchyEdgeToModel(e)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s->%s: %w", e.Manager, e.Target, tollgate.ErrDuplicateEdge)
		}
		return fmt.Errorf("tollgate: create hierarchy edge: %w", err)
	}
	return nil
}

func (s *Store) GetHierarchyEdge(ctx context.Context, edgeID id.HierarchyEdgeID) (*rules.HierarchyEdge, error) {
	m := new(hierarchyEdgeModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", edgeID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("hierarchy edge %s: %w", edgeID, tollgate.ErrHierarchyEdgeNotFound)
		}
		return nil, fmt.Errorf("tollgate: get hierarchy edge: %w", err)
	}
	return hierarchyEdgeFromModel(m), nil
}

func (s *Store) DeleteHierarchyEdge(ctx context.Context, edgeID id.HierarchyEdgeID) error {
	res, err := s.pgdb.NewDelete((*hierarchyEdgeModel)(nil)).
		Where("id = ?", edgeID.String()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("tollgate: delete hierarchy edge: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("hierarchy edge %s: %w", edgeID, tollgate.ErrHierarchyEdgeNotFound)
	}
	return nil
}

func (s *Store) ListHierarchyEdges(ctx context.Context, filter *rules.EdgeFilter) ([]*rules.HierarchyEdge, error) {
	var models []hierarchyEdgeModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at ASC")
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.Manager != "" {
			q = q.Where("manager = ?", filter.Manager)
		}
		if filter.Target != "" {
			q = q.Where("target = ?", filter.Target)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
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
		LoadedAt: time.Now().UTC(),
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
		e.CreatedAt = time.Now().UTC()
	}
	m := checkLogToModel(e)
	if _, err := s.pgdb.NewInsert(m).Exec(ctx); err != nil {
		return fmt.Errorf("tollgate: create check log: %w", err)
	}
	return nil
}

func (s *Store) GetCheckLog(ctx context.Context, logID id.CheckLogID) (*checklog.Entry, error) {
	m := new(checkLogModel)
	err := s.pgdb.NewSelect(m).Where("id = ?", logID.String()).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("check log %s: not found", logID)
		}
		return nil, fmt.Errorf("tollgate: get check log: %w", err)
	}
	return checkLogFromModel(m), nil
}

func (s *Store) ListCheckLogs(ctx context.Context, filter *checklog.QueryFilter) ([]*checklog.Entry, error) {
	var models []checkLogModel
	q := s.pgdb.NewSelect(&models).OrderExpr("created_at DESC")
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.Role != "" {
			q = q.Where("role = ?", filter.Role)
		}
		if filter.Permission != "" {
			q = q.Where("permission = ?", filter.Permission)
		}
		if filter.Route != "" {
			q = q.Where("route = ?", filter.Route)
		}
		if filter.ActorID != "" {
			q = q.Where("actor_id = ?", filter.ActorID)
		}
		if filter.Decision != "" {
			q = q.Where("decision = ?", filter.Decision)
		}
		if filter.After != nil {
			q = q.Where("created_at > ?", *filter.After)
		}
		if filter.Before != nil {
			q = q.Where("created_at < ?", *filter.Before)
		}
		if filter.Limit > 0 {
			q = q.Limit(filter.Limit)
		}
		if filter.Offset > 0 {
			q = q.Offset(filter.Offset)
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
	q := s.pgdb.NewSelect((*checkLogModel)(nil))
	if filter != nil {
		if filter.TenantID != "" {
			q = q.Where("tenant_id = ?", filter.TenantID)
		}
		if filter.Role != "" {
			q = q.Where("role = ?", filter.Role)
		}
		if filter.Decision != "" {
			q = q.Where("decision = ?", filter.Decision)
		}
	}
	count, err := q.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("tollgate: count check logs: %w", err)
	}
	return count, nil
}

func (s *Store) PurgeCheckLogs(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.pgdb.NewDelete((*checkLogModel)(nil)).
		Where("created_at < ?", before).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("tollgate: purge check logs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("tollgate: purge check logs: %w", err)
	}
	return n, nil
}

func (s *Store) DeleteCheckLogsByTenant(ctx context.Context, tenantID string) error {
	_, err := s.pgdb.NewDelete((*checkLogModel)(nil)).
		Where("tenant_id = ?", tenantID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("tollgate: delete check logs by tenant: %w", err)
	}
	return nil
}
