package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/tollgate"
	"github.com/xraph/tollgate/checklog"
	"github.com/xraph/tollgate/id"
	"github.com/xraph/tollgate/rules"
	"github.com/xraph/tollgate/store"
)

// Compile-time check that *Store implements store.Store.
var _ store.Store = (*Store)(nil)

func TestGrantCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	g := &rules.Grant{
		ID:         id.NewGrantID(),
		TenantID:   "t1",
		Role:       "salesperson",
		Permission: "manage:deals",
	}

	// Create
	if err := s.CreateGrant(ctx, g); err != nil {
		t.Fatal(err)
	}

	// Duplicate role/permission pair is rejected.
	dup := &rules.Grant{ID: id.NewGrantID(), TenantID: "t1", Role: "salesperson", Permission: "manage:deals"}
	if err := s.CreateGrant(ctx, dup); !errors.Is(err, tollgate.ErrDuplicateGrant) {
		t.Fatalf("expected ErrDuplicateGrant, got %v", err)
	}

	// Get
	got, err := s.GetGrant(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Permission != "manage:deals" {
		t.Fatalf("expected manage:deals, got %s", got.Permission)
	}

	// List
	list, _ := s.ListGrants(ctx, &rules.GrantFilter{TenantID: "t1", Role: "salesperson"})
	if len(list) != 1 {
		t.Fatalf("expected 1 grant, got %d", len(list))
	}

	// Count
	count, _ := s.CountGrants(ctx, &rules.GrantFilter{TenantID: "t1"})
	if count != 1 {
		t.Fatalf("expected count 1, got %d", count)
	}

	// Delete
	if err := s.DeleteGrant(ctx, g.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetGrant(ctx, g.ID); !errors.Is(err, tollgate.ErrGrantNotFound) {
		t.Fatalf("expected ErrGrantNotFound after delete, got %v", err)
	}
}

func TestDeleteGrantsByRole(t *testing.T) {
	ctx := context.Background()
	s := New()

	_ = s.CreateGrant(ctx, &rules.Grant{TenantID: "t1", Role: "verifier", Permission: "verify:payments"})
	_ = s.CreateGrant(ctx, &rules.Grant{TenantID: "t1", Role: "verifier", Permission: "verify:invoices"})
	_ = s.CreateGrant(ctx, &rules.Grant{TenantID: "t1", Role: "supervisor", Permission: "manage:deals"})

	if err := s.DeleteGrantsByRole(ctx, "t1", "verifier"); err != nil {
		t.Fatal(err)
	}

	list, _ := s.ListGrants(ctx, &rules.GrantFilter{TenantID: "t1"})
	if len(list) != 1 || list[0].Role != "supervisor" {
		t.Fatalf("unexpected grants after delete: %+v", list)
	}
}

func TestRouteBindingCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	b := &rules.RouteBinding{
		ID:          id.NewRouteBindingID(),
		TenantID:    "t1",
		Route:       "/payments",
		Permissions: []string{"manage:payments", "verify:payments"},
	}

	if err := s.CreateRouteBinding(ctx, b); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetRouteBindingByRoute(ctx, "t1", "/payments")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Permissions) != 2 {
		t.Fatal("permissions not preserved")
	}

	// Update
	b.Permissions = []string{"manage:payments"}
	if err := s.UpdateRouteBinding(ctx, b); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetRouteBinding(ctx, b.ID)
	if len(got.Permissions) != 1 {
		t.Fatal("update failed")
	}

	// Search
	list, _ := s.ListRouteBindings(ctx, &rules.RouteFilter{TenantID: "t1", Search: "pay"})
	if len(list) != 1 {
		t.Fatalf("expected 1 binding, got %d", len(list))
	}

	// Delete
	if err := s.DeleteRouteBinding(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetRouteBinding(ctx, b.ID); !errors.Is(err, tollgate.ErrRouteBindingNotFound) {
		t.Fatalf("expected ErrRouteBindingNotFound, got %v", err)
	}
}

func TestHierarchyEdgeCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	e := &rules.HierarchyEdge{
		ID:       id.NewHierarchyEdgeID(),
		TenantID: "t1",
		Manager:  "supervisor",
		Target:   "salesperson",
	}

	if err := s.CreateHierarchyEdge(ctx, e); err != nil {
		t.Fatal(err)
	}

	dup := &rules.HierarchyEdge{TenantID: "t1", Manager: "supervisor", Target: "salesperson"}
	if err := s.CreateHierarchyEdge(ctx, dup); !errors.Is(err, tollgate.ErrDuplicateEdge) {
		t.Fatalf("expected ErrDuplicateEdge, got %v", err)
	}

	list, _ := s.ListHierarchyEdges(ctx, &rules.EdgeFilter{TenantID: "t1", Manager: "supervisor"})
	if len(list) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(list))
	}

	if err := s.DeleteHierarchyEdge(ctx, e.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetHierarchyEdge(ctx, e.ID); !errors.Is(err, tollgate.ErrHierarchyEdgeNotFound) {
		t.Fatalf("expected ErrHierarchyEdgeNotFound, got %v", err)
	}
}

func TestLoadSnapshotIsolatesTenants(t *testing.T) {
	ctx := context.Background()
	s := New()

	_ = s.CreateGrant(ctx, &rules.Grant{TenantID: "t1", Role: "verifier", Permission: "verify:payments"})
	_ = s.CreateGrant(ctx, &rules.Grant{TenantID: "t2", Role: "verifier", Permission: "verify:invoices"})
	_ = s.CreateRouteBinding(ctx, &rules.RouteBinding{TenantID: "t1", Route: "/verification"})
	_ = s.CreateHierarchyEdge(ctx, &rules.HierarchyEdge{TenantID: "t1", Manager: "org-admin", Target: "verifier"})

	snap, err := s.LoadSnapshot(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Grants) != 1 || len(snap.Routes) != 1 || len(snap.Edges) != 1 {
		t.Fatalf("snapshot leaked across tenants: %d grants, %d routes, %d edges",
			len(snap.Grants), len(snap.Routes), len(snap.Edges))
	}
}

func TestSeedFromDefaultRuleset(t *testing.T) {
	ctx := context.Background()
	s := New()

	snap := tollgate.SnapshotFromRuleset(tollgate.DefaultRuleset(), "t1")
	if err := s.Seed(ctx, snap); err != nil {
		t.Fatal(err)
	}
	// A second tenant seeds cleanly alongside the first.
	again := tollgate.SnapshotFromRuleset(tollgate.DefaultRuleset(), "t2")
	if err := s.Seed(ctx, again); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.LoadSnapshot(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	rs, err := tollgate.RulesetFromSnapshot(loaded)
	if err != nil {
		t.Fatal(err)
	}
	if err := rs.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestCheckLogCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	e := &checklog.Entry{
		ID:         id.NewCheckLogID(),
		TenantID:   "t1",
		Role:       "salesperson",
		Permission: "manage:deals",
		ActorID:    "u1",
		Decision:   "allow",
		CreatedAt:  time.Now(),
	}

	if err := s.CreateCheckLog(ctx, e); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetCheckLog(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Decision != "allow" {
		t.Fatal("mismatch")
	}

	logs, _ := s.ListCheckLogs(ctx, &checklog.QueryFilter{TenantID: "t1", Decision: "allow"})
	if len(logs) != 1 {
		t.Fatalf("expected 1 log, got %d", len(logs))
	}

	// Purge
	purged, _ := s.PurgeCheckLogs(ctx, time.Now().Add(time.Hour))
	if purged != 1 {
		t.Fatalf("expected 1 purged, got %d", purged)
	}
}

func TestMigratePingClose(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}
