// Package memory provides an in-memory implementation of the Tollgate
// composite store. It is intended for testing and development.
package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xraph/tollgate"
	"github.com/xraph/tollgate/checklog"
	"github.com/xraph/tollgate/id"
	"github.com/xraph/tollgate/rules"
	"github.com/xraph/tollgate/store"
)

// Compile-time interface checks.
var (
	_ rules.Store    = (*Store)(nil)
	_ checklog.Store = (*Store)(nil)
	_ store.Store    = (*Store)(nil)
)

// Store is a thread-safe in-memory store for all Tollgate entities.
type Store struct {
	mu sync.RWMutex

	grants    map[string]*rules.Grant
	routes    map[string]*rules.RouteBinding
	edges     map[string]*rules.HierarchyEdge
	checkLogs map[string]*checklog.Entry
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		grants:    make(map[string]*rules.Grant),
		routes:    make(map[string]*rules.RouteBinding),
		edges:     make(map[string]*rules.HierarchyEdge),
		checkLogs: make(map[string]*checklog.Entry),
	}
}

// Seed populates the store from a ruleset decomposition, assigning IDs and
// timestamps. Existing content is kept; duplicates are skipped.
func (s *Store) Seed(ctx context.Context, snap *rules.Snapshot) error {
	for _, g := range snap.Grants {
		if err := s.CreateGrant(ctx, g); err != nil && !errors.Is(err, tollgate.ErrDuplicateGrant) {
			return err
		}
	}
	for _, b := range snap.Routes {
		if err := s.CreateRouteBinding(ctx, b); err != nil {
			return err
		}
	}
	for _, e := range snap.Edges {
		if err := s.CreateHierarchyEdge(ctx, e); err != nil && !errors.Is(err, tollgate.ErrDuplicateEdge) {
			return err
		}
	}
	return nil
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Grants
// ──────────────────────────────────────────────────

func (s *Store) CreateGrant(_ context.Context, g *rules.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.grants {
		if existing.TenantID == g.TenantID && existing.Role == g.Role && existing.Permission == g.Permission {
			return tollgate.ErrDuplicateGrant
		}
	}
	if g.ID.IsNil() {
		g.ID = id.NewGrantID()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	s.grants[g.ID.String()] = copyGrant(g)
	return nil
}

func (s *Store) GetGrant(_ context.Context, grantID id.GrantID) (*rules.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.grants[grantID.String()]
	if !ok {
		return nil, fmt.Errorf("grant %s: %w", grantID, tollgate.ErrGrantNotFound)
	}
	return copyGrant(g), nil
}

func (s *Store) DeleteGrant(_ context.Context, grantID id.GrantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.grants[grantID.String()]; !ok {
		return fmt.Errorf("grant %s: %w", grantID, tollgate.ErrGrantNotFound)
	}
	delete(s.grants, grantID.String())
	return nil
}

func (s *Store) ListGrants(_ context.Context, filter *rules.GrantFilter) ([]*rules.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*rules.Grant, 0, len(s.grants))
	for _, g := range s.grants {
		if filter != nil {
			if filter.TenantID != "" && g.TenantID != filter.TenantID {
				continue
			}
			if filter.Role != "" && g.Role != filter.Role {
				continue
			}
			if filter.Permission != "" && g.Permission != filter.Permission {
				continue
			}
			if filter.IsSystem != nil && g.IsSystem != *filter.IsSystem {
				continue
			}
		}
		result = append(result, copyGrant(g))
	}
	return applyPagination(result, paginationFromGrantFilter(filter)), nil
}

func (s *Store) CountGrants(ctx context.Context, filter *rules.GrantFilter) (int64, error) {
	var unpaged *rules.GrantFilter
	if filter != nil {
		f := *filter
		f.Limit, f.Offset = 0, 0
		unpaged = &f
	}
	list, err := s.ListGrants(ctx, unpaged)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) DeleteGrantsByRole(_ context.Context, tenantID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, g := range s.grants {
		if g.TenantID == tenantID && g.Role == role {
			delete(s.grants, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Route bindings
// ──────────────────────────────────────────────────

func (s *Store) CreateRouteBinding(_ context.Context, b *rules.RouteBinding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID.IsNil() {
		b.ID = id.NewRouteBindingID()
	}
	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	s.routes[b.ID.String()] = copyRouteBinding(b)
	return nil
}

func (s *Store) GetRouteBinding(_ context.Context, bindingID id.RouteBindingID) (*rules.RouteBinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.routes[bindingID.String()]
	if !ok {
		return nil, fmt.Errorf("route binding %s: %w", bindingID, tollgate.ErrRouteBindingNotFound)
	}
	return copyRouteBinding(b), nil
}

func (s *Store) GetRouteBindingByRoute(_ context.Context, tenantID, route string) (*rules.RouteBinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.routes {
		if b.TenantID == tenantID && b.Route == route {
			return copyRouteBinding(b), nil
		}
	}
	return nil, fmt.Errorf("route %q: %w", route, tollgate.ErrRouteBindingNotFound)
}

func (s *Store) UpdateRouteBinding(_ context.Context, b *rules.RouteBinding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.routes[b.ID.String()]; !ok {
		return fmt.Errorf("route binding %s: %w", b.ID, tollgate.ErrRouteBindingNotFound)
	}
	b.UpdatedAt = time.Now().UTC()
	s.routes[b.ID.String()] = copyRouteBinding(b)
	return nil
}

func (s *Store) DeleteRouteBinding(_ context.Context, bindingID id.RouteBindingID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.routes[bindingID.String()]; !ok {
		return fmt.Errorf("route binding %s: %w", bindingID, tollgate.ErrRouteBindingNotFound)
	}
	delete(s.routes, bindingID.String())
	return nil
}

func (s *Store) ListRouteBindings(_ context.Context, filter *rules.RouteFilter) ([]*rules.RouteBinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*rules.RouteBinding, 0, len(s.routes))
	for _, b := range s.routes {
		if filter != nil {
			if filter.TenantID != "" && b.TenantID != filter.TenantID {
				continue
			}
			if filter.Route != "" && b.Route != filter.Route {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(b.Route), strings.ToLower(filter.Search)) {
				continue
			}
		}
		result = append(result, copyRouteBinding(b))
	}
	return applyPagination(result, paginationFromRouteFilter(filter)), nil
}

func (s *Store) CountRouteBindings(ctx context.Context, filter *rules.RouteFilter) (int64, error) {
	var unpaged *rules.RouteFilter
	if filter != nil {
		f := *filter
		f.Limit, f.Offset = 0, 0
		unpaged = &f
	}
	list, err := s.ListRouteBindings(ctx, unpaged)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

// ──────────────────────────────────────────────────
// Hierarchy edges
// ──────────────────────────────────────────────────

func (s *Store) CreateHierarchyEdge(_ context.Context, e *rules.HierarchyEdge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.edges {
		if existing.TenantID == e.TenantID && existing.Manager == e.Manager && existing.Target == e.Target {
			return tollgate.ErrDuplicateEdge
		}
	}
	if e.ID.IsNil() {
		e.ID = id.NewHierarchyEdgeID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.edges[e.ID.String()] = copyEdge(e)
	return nil
}

func (s *Store) GetHierarchyEdge(_ context.Context, edgeID id.HierarchyEdgeID) (*rules.HierarchyEdge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.edges[edgeID.String()]
	if !ok {
		return nil, fmt.Errorf("hierarchy edge %s: %w", edgeID, tollgate.ErrHierarchyEdgeNotFound)
	}
	return copyEdge(e), nil
}

func (s *Store) DeleteHierarchyEdge(_ context.Context, edgeID id.HierarchyEdgeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.edges[edgeID.String()]; !ok {
		return fmt.Errorf("hierarchy edge %s: %w", edgeID, tollgate.ErrHierarchyEdgeNotFound)
	}
	delete(s.edges, edgeID.String())
	return nil
}

func (s *Store) ListHierarchyEdges(_ context.Context, filter *rules.EdgeFilter) ([]*rules.HierarchyEdge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*rules.HierarchyEdge, 0, len(s.edges))
	for _, e := range s.edges {
		if filter != nil {
			if filter.TenantID != "" && e.TenantID != filter.TenantID {
				continue
			}
			if filter.Manager != "" && e.Manager != filter.Manager {
				continue
			}
			if filter.Target != "" && e.Target != filter.Target {
				continue
			}
		}
		result = append(result, copyEdge(e))
	}
	return applyPagination(result, paginationFromEdgeFilter(filter)), nil
}

// LoadSnapshot returns the full rule content for a tenant.
func (s *Store) LoadSnapshot(_ context.Context, tenantID string) (*rules.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := &rules.Snapshot{LoadedAt: time.Now().UTC()}
	for _, g := range s.grants {
		if g.TenantID == tenantID {
			snap.Grants = append(snap.Grants, copyGrant(g))
		}
	}
	for _, b := range s.routes {
		if b.TenantID == tenantID {
			snap.Routes = append(snap.Routes, copyRouteBinding(b))
		}
	}
	for _, e := range s.edges {
		if e.TenantID == tenantID {
			snap.Edges = append(snap.Edges, copyEdge(e))
		}
	}
	return snap, nil
}

// ──────────────────────────────────────────────────
// Check logs
// ──────────────────────────────────────────────────

func (s *Store) CreateCheckLog(_ context.Context, e *checklog.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID.IsNil() {
		e.ID = id.NewCheckLogID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.checkLogs[e.ID.String()] = copyCheckLog(e)
	return nil
}

func (s *Store) GetCheckLog(_ context.Context, logID id.CheckLogID) (*checklog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.checkLogs[logID.String()]
	if !ok {
		return nil, fmt.Errorf("check log %s: not found", logID)
	}
	return copyCheckLog(e), nil
}

func (s *Store) ListCheckLogs(_ context.Context, filter *checklog.QueryFilter) ([]*checklog.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*checklog.Entry, 0, len(s.checkLogs))
	for _, e := range s.checkLogs {
		if filter != nil {
			if filter.TenantID != "" && e.TenantID != filter.TenantID {
				continue
			}
			if filter.Role != "" && e.Role != filter.Role {
				continue
			}
			if filter.Permission != "" && e.Permission != filter.Permission {
				continue
			}
			if filter.Route != "" && e.Route != filter.Route {
				continue
			}
			if filter.ActorID != "" && e.ActorID != filter.ActorID {
				continue
			}
			if filter.Decision != "" && e.Decision != filter.Decision {
				continue
			}
			if filter.After != nil && !e.CreatedAt.After(*filter.After) {
				continue
			}
			if filter.Before != nil && !e.CreatedAt.Before(*filter.Before) {
				continue
			}
		}
		result = append(result, copyCheckLog(e))
	}
	return applyPagination(result, paginationFromQueryFilter(filter)), nil
}

func (s *Store) CountCheckLogs(ctx context.Context, filter *checklog.QueryFilter) (int64, error) {
	var unpaged *checklog.QueryFilter
	if filter != nil {
		f := *filter
		f.Limit, f.Offset = 0, 0
		unpaged = &f
	}
	list, err := s.ListCheckLogs(ctx, unpaged)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) PurgeCheckLogs(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged int64
	for k, e := range s.checkLogs {
		if e.CreatedAt.Before(before) {
			delete(s.checkLogs, k)
			purged++
		}
	}
	return purged, nil
}

func (s *Store) DeleteCheckLogsByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.checkLogs {
		if e.TenantID == tenantID {
			delete(s.checkLogs, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

type pagOpts struct {
	limit  int
	offset int
}

func paginationFromGrantFilter(f *rules.GrantFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func paginationFromRouteFilter(f *rules.RouteFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func paginationFromEdgeFilter(f *rules.EdgeFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func paginationFromQueryFilter(f *checklog.QueryFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func applyPagination[T any](items []*T, p pagOpts) []*T {
	if p.offset > 0 && p.offset < len(items) {
		items = items[p.offset:]
	} else if p.offset >= len(items) && p.offset > 0 {
		return nil
	}
	if p.limit > 0 && p.limit < len(items) {
		items = items[:p.limit]
	}
	return items
}

func copyGrant(g *rules.Grant) *rules.Grant {
	c := *g
	if g.Metadata != nil {
		c.Metadata = make(map[string]any, len(g.Metadata))
		for k, v := range g.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

func copyRouteBinding(b *rules.RouteBinding) *rules.RouteBinding {
	c := *b
	c.Permissions = append([]string(nil), b.Permissions...)
	return &c
}

func copyEdge(e *rules.HierarchyEdge) *rules.HierarchyEdge {
	c := *e
	return &c
}

func copyCheckLog(e *checklog.Entry) *checklog.Entry {
	c := *e
	if e.Metadata != nil {
		c.Metadata = make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}
