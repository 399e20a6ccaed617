package tollgate

import (
	"errors"
	"testing"

	"github.com/xraph/tollgate/rules"
)

func TestSnapshotRoundTrip(t *testing.T) {
	rs := DefaultRuleset()
	snap := SnapshotFromRuleset(rs, "t1")

	got, err := RulesetFromSnapshot(snap)
	if err != nil {
		t.Fatal(err)
	}

	for _, r := range Roles() {
		if len(got.Permissions[r]) != len(rs.Permissions[r]) {
			t.Fatalf("role %q: got %d permissions, want %d",
				r, len(got.Permissions[r]), len(rs.Permissions[r]))
		}
		if len(got.Hierarchy[r]) != len(rs.Hierarchy[r]) {
			t.Fatalf("role %q: got %d targets, want %d",
				r, len(got.Hierarchy[r]), len(rs.Hierarchy[r]))
		}
	}
	if len(got.Routes) != len(rs.Routes) {
		t.Fatalf("got %d routes, want %d", len(got.Routes), len(rs.Routes))
	}
	if len(got.Routes["/dashboard"]) != 0 {
		t.Fatal("open route should stay open through the round trip")
	}
}

func TestRulesetFromSnapshotNil(t *testing.T) {
	if _, err := RulesetFromSnapshot(nil); !errors.Is(err, ErrNoRuleset) {
		t.Fatalf("expected ErrNoRuleset, got %v", err)
	}
}

func TestRulesetFromSnapshotSkipsUnknownRoles(t *testing.T) {
	snap := SnapshotFromRuleset(DefaultRuleset(), "t1")
	snap.Grants = append(snap.Grants, &rules.Grant{
		TenantID: "t1", Role: "chancellor", Permission: "manage:deals",
	})
	snap.Edges = append(snap.Edges, &rules.HierarchyEdge{
		TenantID: "t1", Manager: "chancellor", Target: "salesperson",
	})

	rs, err := RulesetFromSnapshot(snap)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := rs.Permissions["chancellor"]; ok {
		t.Fatal("unknown role should be skipped, not materialized")
	}
}

func TestRulesetFromSnapshotNormalizesRoleNames(t *testing.T) {
	snap := &rules.Snapshot{}
	for _, g := range SnapshotFromRuleset(DefaultRuleset(), "t1").Grants {
		snap.Grants = append(snap.Grants, g)
	}
	snap.Grants = append(snap.Grants, &rules.Grant{
		TenantID: "t1", Role: "Org Admin", Permission: string(PermManageUsers),
	})
	snap.Routes = SnapshotFromRuleset(DefaultRuleset(), "t1").Routes
	snap.Edges = SnapshotFromRuleset(DefaultRuleset(), "t1").Edges

	rs, err := RulesetFromSnapshot(snap)
	if err != nil {
		t.Fatal(err)
	}
	// The duplicate arrives through a differently-spelled role name and
	// must be deduplicated after normalization.
	count := 0
	for _, p := range rs.Permissions[RoleOrgAdmin] {
		if p == PermManageUsers {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected one manage:users grant for org-admin, got %d", count)
	}
}

func TestRulesetFromSnapshotRejectsCycles(t *testing.T) {
	snap := SnapshotFromRuleset(DefaultRuleset(), "t1")
	snap.Edges = append(snap.Edges, &rules.HierarchyEdge{
		TenantID: "t1", Manager: "salesperson", Target: "org-admin",
	})
	if _, err := RulesetFromSnapshot(snap); !errors.Is(err, ErrCyclicHierarchy) {
		t.Fatalf("expected ErrCyclicHierarchy, got %v", err)
	}
}
