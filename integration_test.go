package tollgate_test

import (
	"context"
	"testing"

	"github.com/xraph/tollgate"
	"github.com/xraph/tollgate/cache"
	"github.com/xraph/tollgate/checklog"
	"github.com/xraph/tollgate/rules"
	"github.com/xraph/tollgate/store/memory"
)

func seededStore(t *testing.T, ctx context.Context, tenantID string) *memory.Store {
	t.Helper()
	s := memory.New()
	if err := s.Seed(ctx, tollgate.SnapshotFromRuleset(tollgate.DefaultRuleset(), tenantID)); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestEngineStartLoadsFromStore(t *testing.T) {
	ctx := tollgate.WithTenant(context.Background(), "t1")
	s := seededStore(t, ctx, "t1")

	eng, err := tollgate.NewEngine(tollgate.WithStore(s))
	if err != nil {
		t.Fatal(err)
	}
	if eng.Ruleset() != nil {
		t.Fatal("ruleset should not exist before Start")
	}
	if err := eng.Start(ctx); err != nil {
		t.Fatal(err)
	}

	if !eng.HasPermission(tollgate.RoleSalesperson, tollgate.PermManageDeals) {
		t.Fatal("store-loaded ruleset should grant salesperson manage:deals")
	}
	if !eng.CanAccessRoute(tollgate.RoleTeamMember, "/totally-unknown-route") {
		t.Fatal("fail-open default should survive the store path")
	}
}

func TestEngineReloadPicksUpStoreChanges(t *testing.T) {
	ctx := tollgate.WithTenant(context.Background(), "t1")
	s := seededStore(t, ctx, "t1")

	eng, err := tollgate.NewEngine(tollgate.WithStore(s))
	if err != nil {
		t.Fatal(err)
	}
	if err := eng.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if eng.HasPermission(tollgate.RoleTeamMember, tollgate.PermExportData) {
		t.Fatal("team-member starts without export:data")
	}

	err = s.CreateGrant(ctx, &rules.Grant{
		TenantID:   "t1",
		Role:       string(tollgate.RoleTeamMember),
		Permission: string(tollgate.PermExportData),
	})
	if err != nil {
		t.Fatal(err)
	}

	// The active ruleset is static until an explicit reload.
	if eng.HasPermission(tollgate.RoleTeamMember, tollgate.PermExportData) {
		t.Fatal("store change must not leak before Reload")
	}
	if err := eng.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	if !eng.HasPermission(tollgate.RoleTeamMember, tollgate.PermExportData) {
		t.Fatal("Reload should pick up the new grant")
	}
}

func TestEngineAuditsChecks(t *testing.T) {
	ctx := tollgate.WithTenant(context.Background(), "t1")
	s := seededStore(t, ctx, "t1")

	eng, err := tollgate.NewEngine(
		tollgate.WithStore(s),
		tollgate.WithConfig(tollgate.Config{
			RoutePolicy: tollgate.RouteFailOpen,
			AuditChecks: true,
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := eng.Start(ctx); err != nil {
		t.Fatal(err)
	}

	_, err = eng.Check(ctx, &tollgate.CheckRequest{
		Role:       tollgate.RoleTeamMember,
		Permission: tollgate.PermManageDeals,
		ActorScope: tollgate.Scope{UserID: "u1"},
	})
	if err != nil {
		t.Fatal(err)
	}

	logs, err := s.ListCheckLogs(ctx, &checklog.QueryFilter{TenantID: "t1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(logs))
	}
	e := logs[0]
	if e.Role != string(tollgate.RoleTeamMember) || e.Decision != string(tollgate.DecisionDenyNoPermission) {
		t.Fatalf("unexpected audit entry: %+v", e)
	}
	if e.ActorID != "u1" {
		t.Fatalf("expected actor u1, got %q", e.ActorID)
	}
}

func TestEngineCachesChecks(t *testing.T) {
	ctx := tollgate.WithTenant(context.Background(), "t1")

	eng, err := tollgate.NewEngine(
		tollgate.WithRuleset(tollgate.DefaultRuleset()),
		tollgate.WithCache(cache.NewMemory()),
	)
	if err != nil {
		t.Fatal(err)
	}

	req := &tollgate.CheckRequest{Role: tollgate.RoleSalesperson, Permission: tollgate.PermManageDeals}

	first, err := eng.Check(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	second, err := eng.Check(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if !first.Allowed || !second.Allowed {
		t.Fatal("both checks should allow")
	}
	if first.Decision != second.Decision {
		t.Fatal("cached result should carry the same decision")
	}
}
