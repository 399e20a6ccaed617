package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"

	"github.com/xraph/tollgate"
	"github.com/xraph/tollgate/checklog"
	"github.com/xraph/tollgate/rules"
)

// newTestStore provisions a throwaway Postgres container, opens a store
// against it, and runs migrations. Skipped in -short mode.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("tollgate"),
		tcpostgres.WithUsername("tollgate"),
		tcpostgres.WithPassword("tollgate"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(ctr)
	})

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	drv := pgdriver.New()
	if err := drv.Open(ctx, dsn); err != nil {
		t.Fatalf("open database: %v", err)
	}
	db, err := grove.Open(drv)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	s := New(db)
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func TestPostgresRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g := &rules.Grant{TenantID: "t1", Role: "salesperson", Permission: "manage:deals"}
	if err := s.CreateGrant(ctx, g); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetGrant(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Role != "salesperson" || got.Permission != "manage:deals" {
		t.Fatalf("grant mismatch: %+v", got)
	}

	// Unique violation maps to the duplicate sentinel.
	dup := &rules.Grant{TenantID: "t1", Role: "salesperson", Permission: "manage:deals"}
	if err := s.CreateGrant(ctx, dup); !errors.Is(err, tollgate.ErrDuplicateGrant) {
		t.Fatalf("expected ErrDuplicateGrant, got %v", err)
	}

	b := &rules.RouteBinding{TenantID: "t1", Route: "/payments", Permissions: []string{"manage:payments", "verify:payments"}}
	if err := s.CreateRouteBinding(ctx, b); err != nil {
		t.Fatal(err)
	}
	binding, err := s.GetRouteBindingByRoute(ctx, "t1", "/payments")
	if err != nil {
		t.Fatal(err)
	}
	if len(binding.Permissions) != 2 {
		t.Fatalf("permissions not preserved: %+v", binding.Permissions)
	}

	e := &rules.HierarchyEdge{TenantID: "t1", Manager: "supervisor", Target: "salesperson"}
	if err := s.CreateHierarchyEdge(ctx, e); err != nil {
		t.Fatal(err)
	}
	dupEdge := &rules.HierarchyEdge{TenantID: "t1", Manager: "supervisor", Target: "salesperson"}
	if err := s.CreateHierarchyEdge(ctx, dupEdge); !errors.Is(err, tollgate.ErrDuplicateEdge) {
		t.Fatalf("expected ErrDuplicateEdge, got %v", err)
	}

	snap, err := s.LoadSnapshot(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Grants) != 1 || len(snap.Routes) != 1 || len(snap.Edges) != 1 {
		t.Fatalf("snapshot incomplete: %d/%d/%d", len(snap.Grants), len(snap.Routes), len(snap.Edges))
	}
}

func TestPostgresSeedAndMaterialize(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	snap := tollgate.SnapshotFromRuleset(tollgate.DefaultRuleset(), "t1")
	for _, g := range snap.Grants {
		if err := s.CreateGrant(ctx, g); err != nil {
			t.Fatal(err)
		}
	}
	for _, b := range snap.Routes {
		if err := s.CreateRouteBinding(ctx, b); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range snap.Edges {
		if err := s.CreateHierarchyEdge(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	loaded, err := s.LoadSnapshot(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	rs, err := tollgate.RulesetFromSnapshot(loaded)
	if err != nil {
		t.Fatal(err)
	}
	if len(rs.Routes) != len(tollgate.DefaultRuleset().Routes) {
		t.Fatalf("routes lost in round trip: %d", len(rs.Routes))
	}
}

func TestPostgresCheckLogs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := &checklog.Entry{
		TenantID:   "t1",
		Role:       "verifier",
		Permission: "verify:payments",
		ActorID:    "u1",
		Decision:   "allow",
	}
	if err := s.CreateCheckLog(ctx, e); err != nil {
		t.Fatal(err)
	}

	logs, err := s.ListCheckLogs(ctx, &checklog.QueryFilter{TenantID: "t1", Decision: "allow"})
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 || logs[0].ActorID != "u1" {
		t.Fatalf("unexpected logs: %+v", logs)
	}

	purged, err := s.PurgeCheckLogs(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged, got %d", purged)
	}
}
