package tollgate

import (
	"context"
	"errors"
	"testing"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithRuleset(DefaultRuleset())}, opts...)
	eng, err := NewEngine(opts...)
	if err != nil {
		t.Fatal(err)
	}
	return eng
}

func TestNewEngineRequiresRulesetOrStore(t *testing.T) {
	if _, err := NewEngine(); !errors.Is(err, ErrNoRuleset) {
		t.Fatalf("expected ErrNoRuleset, got %v", err)
	}
}

func TestNewEngineRejectsInvalidRuleset(t *testing.T) {
	rs := DefaultRuleset()
	rs.Hierarchy[RoleSalesperson] = []Role{RoleOrgAdmin}
	if _, err := NewEngine(WithRuleset(rs)); !errors.Is(err, ErrCyclicHierarchy) {
		t.Fatalf("expected ErrCyclicHierarchy, got %v", err)
	}
}

func TestEngineClonesInitialRuleset(t *testing.T) {
	rs := DefaultRuleset()
	eng, err := NewEngine(WithRuleset(rs))
	if err != nil {
		t.Fatal(err)
	}
	rs.Permissions[RoleTeamMember] = []Permission{PermExportData}
	if eng.HasPermission(RoleTeamMember, PermExportData) {
		t.Fatal("mutating the caller's ruleset leaked into the engine")
	}
}

func TestHasPermission(t *testing.T) {
	eng := newTestEngine(t)

	for _, p := range Permissions() {
		if !eng.HasPermission(RoleSuperAdmin, p) {
			t.Fatalf("super-admin should hold %q", p)
		}
	}
	if !eng.HasPermission(RoleSalesperson, PermManageDeals) {
		t.Fatal("salesperson should hold manage:deals")
	}
	if eng.HasPermission(RoleSalesperson, PermVerifyPayments) {
		t.Fatal("salesperson should not hold verify:payments")
	}
	if eng.HasPermission(RoleTeamMember, PermManageDeals) {
		t.Fatal("team-member should not hold manage:deals")
	}

	// Malformed input degrades to deny, never panics.
	if eng.HasPermission("intruder", PermManageDeals) {
		t.Fatal("unknown role should have nothing")
	}
	if eng.HasPermission(RoleOrgAdmin, "") {
		t.Fatal("empty permission should be false")
	}
}

func TestHasAnyAndAllPermissions(t *testing.T) {
	eng := newTestEngine(t)

	if !eng.HasAnyPermission(RoleVerifier, PermManageDeals, PermVerifyPayments) {
		t.Fatal("verifier holds verify:payments")
	}
	if eng.HasAnyPermission(RoleVerifier) {
		t.Fatal("empty any-list should be false")
	}
	if !eng.HasAllPermissions(RoleVerifier) {
		t.Fatal("empty all-list should be vacuously true")
	}
	if !eng.HasAllPermissions(RoleVerifier, PermVerifyPayments, PermVerifyInvoices) {
		t.Fatal("verifier holds both verify permissions")
	}
	if eng.HasAllPermissions(RoleVerifier, PermVerifyPayments, PermManageDeals) {
		t.Fatal("verifier does not hold manage:deals")
	}
}

func TestCanAccessRoute(t *testing.T) {
	eng := newTestEngine(t)

	if !eng.CanAccessRoute(RoleSalesperson, "/deals") {
		t.Fatal("salesperson should reach /deals")
	}
	if eng.CanAccessRoute(RoleTeamMember, "/deals") {
		t.Fatal("team-member should not reach /deals")
	}
	if !eng.CanAccessRoute(RoleVerifier, "/payments") {
		t.Fatal("any-of semantics: verify:payments opens /payments")
	}

	// Unlisted routes are open under the default policy, even for
	// unknown roles.
	if !eng.CanAccessRoute(RoleTeamMember, "/totally-unknown-route") {
		t.Fatal("unlisted route should be open by default")
	}
	if !eng.CanAccessRoute("intruder", "/totally-unknown-route") {
		t.Fatal("fail-open applies before role validation")
	}

	// A route bound to an empty permission set is open to every role.
	if !eng.CanAccessRoute(RoleTeamMember, "/dashboard") {
		t.Fatal("/dashboard is bound open")
	}
}

func TestCanAccessRouteFailClosed(t *testing.T) {
	eng := newTestEngine(t, WithConfig(Config{RoutePolicy: RouteFailClosed}))

	if eng.CanAccessRoute(RoleSuperAdmin, "/totally-unknown-route") {
		t.Fatal("fail-closed should deny unlisted routes")
	}
	if !eng.CanAccessRoute(RoleSalesperson, "/deals") {
		t.Fatal("bound routes are unaffected by the policy")
	}
	if !eng.CanAccessRoute(RoleTeamMember, "/dashboard") {
		t.Fatal("explicitly open routes are unaffected by the policy")
	}
}

func TestAccessibleRoutes(t *testing.T) {
	eng := newTestEngine(t)

	routes := eng.AccessibleRoutes(RoleSalesperson)
	want := []string{"/clients", "/dashboard", "/deals"}
	if len(routes) != len(want) {
		t.Fatalf("expected %v, got %v", want, routes)
	}
	for i := range want {
		if routes[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, routes)
		}
	}

	again := eng.AccessibleRoutes(RoleSalesperson)
	for i := range routes {
		if routes[i] != again[i] {
			t.Fatal("repeated calls should return identical results")
		}
	}
}

func TestCanManageRole(t *testing.T) {
	eng := newTestEngine(t)

	if !eng.CanManageRole(RoleSupervisor, RoleSalesperson) {
		t.Fatal("supervisor manages salesperson")
	}
	if eng.CanManageRole(RoleSalesperson, RoleSupervisor) {
		t.Fatal("management is directed")
	}
	if eng.CanManageRole(RoleOrgAdmin, RoleOrgAdmin) {
		t.Fatal("no role manages itself")
	}
	if eng.CanManageRole(RoleOrgAdmin, RoleSuperAdmin) {
		t.Fatal("org-admin does not manage super-admin")
	}
	if eng.CanManageRole("intruder", RoleTeamMember) {
		t.Fatal("unknown manager should be false")
	}
	if eng.CanManageRole(RoleSuperAdmin, "intruder") {
		t.Fatal("unknown target should be false")
	}
}

func TestManageableRoles(t *testing.T) {
	eng := newTestEngine(t)

	if got := eng.ManageableRoles(RoleSuperAdmin); len(got) != 5 {
		t.Fatalf("super-admin manages 5 roles, got %d", len(got))
	}
	if got := eng.ManageableRoles(RoleTeamMember); got != nil {
		t.Fatalf("team-member manages nothing, got %v", got)
	}
	if got := eng.ManageableRoles("intruder"); got != nil {
		t.Fatalf("unknown role manages nothing, got %v", got)
	}
}

func TestCanAccessResource(t *testing.T) {
	eng := newTestEngine(t)

	actor := Scope{OrgID: "org1", TeamID: "teamA", UserID: "u1"}

	// Salesperson reaches its own deals.
	if !eng.CanAccessResource(RoleSalesperson, PermManageDeals, actor,
		Scope{OrgID: "org1", TeamID: "teamA", OwnerID: "u1"}) {
		t.Fatal("owner should access own deal")
	}

	// Cross-owner deal in the same team is denied: deals are owner-scoped.
	if eng.CanAccessResource(RoleSalesperson, PermManageDeals, actor,
		Scope{OrgID: "org1", TeamID: "teamA", OwnerID: "u2"}) {
		t.Fatal("salesperson should not access another owner's deal")
	}

	// Team-shared clients are the one exception.
	if !eng.CanAccessResource(RoleSalesperson, PermManageClients, actor,
		Scope{OrgID: "org1", TeamID: "teamA", OwnerID: "u2"}) {
		t.Fatal("clients are shared within the team")
	}

	// The permission gate runs before any scope logic.
	if eng.CanAccessResource(RoleSalesperson, PermVerifyPayments, actor,
		Scope{OrgID: "org1", OwnerID: "u1"}) {
		t.Fatal("missing permission should deny regardless of scope")
	}

	// Super-admin ignores scope entirely.
	if !eng.CanAccessResource(RoleSuperAdmin, PermManageDeals, Scope{},
		Scope{OrgID: "other", OwnerID: "nobody"}) {
		t.Fatal("super-admin is never scope-restricted")
	}

	// Org-admin is bounded by its organization.
	if eng.CanAccessResource(RoleOrgAdmin, PermManageDeals,
		Scope{OrgID: "org1"}, Scope{OrgID: "org2"}) {
		t.Fatal("org-admin should not cross organizations")
	}

	// Supervisor is bounded by org and team.
	if eng.CanAccessResource(RoleSupervisor, PermManageDeals,
		Scope{OrgID: "org1", TeamID: "teamA"},
		Scope{OrgID: "org1", TeamID: "teamB"}) {
		t.Fatal("supervisor should not cross teams")
	}

	// Verifier sees the whole organization.
	if !eng.CanAccessResource(RoleVerifier, PermVerifyPayments,
		Scope{OrgID: "org1", UserID: "v1"},
		Scope{OrgID: "org1", OwnerID: "u9"}) {
		t.Fatal("verifier should see org-wide payments")
	}
}

type testDeal struct {
	name  string
	scope Scope
}

func (d testDeal) AccessScope() Scope { return d.scope }

func TestFilterByScope(t *testing.T) {
	eng := newTestEngine(t)

	actor := Scope{OrgID: "org1", TeamID: "teamA", UserID: "u1"}
	deals := []testDeal{
		{"mine", Scope{OrgID: "org1", TeamID: "teamA", OwnerID: "u1"}},
		{"theirs", Scope{OrgID: "org1", TeamID: "teamA", OwnerID: "u2"}},
		{"mine-too", Scope{OrgID: "org1", TeamID: "teamA", OwnerID: "u1"}},
	}

	got := FilterByScope(eng, deals, RoleSalesperson, actor, PermManageDeals)
	if len(got) != 2 || got[0].name != "mine" || got[1].name != "mine-too" {
		t.Fatalf("expected own deals in order, got %v", got)
	}

	// No permission: nothing passes.
	if got := FilterByScope(eng, deals, RoleVerifier, actor, PermManageDeals); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}

	// Super-admin keeps everything.
	if got := FilterByScope(eng, deals, RoleSuperAdmin, Scope{}, PermManageDeals); len(got) != 3 {
		t.Fatalf("expected all deals, got %v", got)
	}
}

func TestCheckDecisions(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t)

	cases := []struct {
		name    string
		req     CheckRequest
		allowed bool
		want    Decision
	}{
		{
			"permission allow",
			CheckRequest{Role: RoleSalesperson, Permission: PermManageDeals},
			true, DecisionAllow,
		},
		{
			"unknown role",
			CheckRequest{Role: "intruder", Permission: PermManageDeals},
			false, DecisionDenyUnknownRole,
		},
		{
			"missing permission",
			CheckRequest{Role: RoleTeamMember, Permission: PermManageDeals},
			false, DecisionDenyNoPermission,
		},
		{
			"scope deny",
			CheckRequest{
				Role:       RoleSalesperson,
				Permission: PermManageDeals,
				ActorScope: Scope{OrgID: "org1", TeamID: "teamA", UserID: "u1"},
				Resource:   Scope{OrgID: "org1", TeamID: "teamA", OwnerID: "u2"},
			},
			false, DecisionDenyScope,
		},
		{
			"scoped allow",
			CheckRequest{
				Role:       RoleSalesperson,
				Permission: PermManageDeals,
				ActorScope: Scope{OrgID: "org1", UserID: "u1"},
				Resource:   Scope{OrgID: "org1", OwnerID: "u1"},
			},
			true, DecisionAllow,
		},
		{
			"route allow",
			CheckRequest{Role: RoleSalesperson, Route: "/deals"},
			true, DecisionAllow,
		},
		{
			"route deny",
			CheckRequest{Role: RoleTeamMember, Route: "/deals"},
			false, DecisionDenyRoute,
		},
		{
			"unlisted route",
			CheckRequest{Role: RoleTeamMember, Route: "/totally-unknown-route"},
			true, DecisionAllowUnlisted,
		},
		{
			"open route with unknown role",
			CheckRequest{Role: "intruder", Route: "/dashboard"},
			true, DecisionAllow,
		},
		{
			"bound route with unknown role",
			CheckRequest{Role: "intruder", Route: "/deals"},
			false, DecisionDenyUnknownRole,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			result, err := eng.Check(ctx, &c.req)
			if err != nil {
				t.Fatal(err)
			}
			if result.Allowed != c.allowed || result.Decision != c.want {
				t.Fatalf("got %v/%s, want %v/%s: %s",
					result.Allowed, result.Decision, c.allowed, c.want, result.Reason)
			}
		})
	}
}

func TestCheckFailClosedUnlisted(t *testing.T) {
	eng := newTestEngine(t, WithConfig(Config{RoutePolicy: RouteFailClosed}))

	result, err := eng.Check(context.Background(), &CheckRequest{
		Role:  RoleSuperAdmin,
		Route: "/totally-unknown-route",
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed || result.Decision != DecisionDenyUnlisted {
		t.Fatalf("expected deny_unlisted_route, got %v/%s", result.Allowed, result.Decision)
	}
}

func TestEnforce(t *testing.T) {
	ctx := context.Background()
	eng := newTestEngine(t)

	if err := eng.Enforce(ctx, &CheckRequest{Role: RoleSalesperson, Permission: PermManageDeals}); err != nil {
		t.Fatal(err)
	}

	err := eng.Enforce(ctx, &CheckRequest{Role: RoleTeamMember, Permission: PermManageDeals})
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestConcurrentChecks(t *testing.T) {
	eng := newTestEngine(t)
	done := make(chan struct{})

	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 500; j++ {
				eng.HasPermission(RoleSalesperson, PermManageDeals)
				eng.CanAccessRoute(RoleVerifier, "/payments")
				eng.CanManageRole(RoleSupervisor, RoleTeamMember)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
