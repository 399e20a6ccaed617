package tollgate

import (
	"errors"
	"testing"
)

func TestDefaultRulesetValidates(t *testing.T) {
	if err := DefaultRuleset().Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestValidateRequiresTotalMaps(t *testing.T) {
	rs := DefaultRuleset()
	delete(rs.Permissions, RoleVerifier)
	if err := rs.Validate(); !errors.Is(err, ErrIncompleteRuleset) {
		t.Fatalf("expected ErrIncompleteRuleset, got %v", err)
	}

	rs = DefaultRuleset()
	delete(rs.Hierarchy, RoleTeamMember)
	if err := rs.Validate(); !errors.Is(err, ErrIncompleteRuleset) {
		t.Fatalf("expected ErrIncompleteRuleset, got %v", err)
	}
}

func TestValidateRejectsUnknownRole(t *testing.T) {
	rs := DefaultRuleset()
	rs.Permissions["chancellor"] = []Permission{PermViewDashboard}
	if err := rs.Validate(); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestValidateRejectsUnknownPermission(t *testing.T) {
	rs := DefaultRuleset()
	rs.Permissions[RoleVerifier] = append(rs.Permissions[RoleVerifier], "launch:rockets")
	if err := rs.Validate(); !errors.Is(err, ErrUnknownPermission) {
		t.Fatalf("expected ErrUnknownPermission, got %v", err)
	}

	rs = DefaultRuleset()
	rs.Routes["/rockets"] = []Permission{"launch:rockets"}
	if err := rs.Validate(); !errors.Is(err, ErrUnknownPermission) {
		t.Fatalf("expected ErrUnknownPermission, got %v", err)
	}
}

func TestValidateAcceptsWildcardGrants(t *testing.T) {
	rs := DefaultRuleset()
	rs.Permissions[RoleOrgAdmin] = []Permission{"manage:*", PermViewDashboard}
	if err := rs.Validate(); err != nil {
		t.Fatal(err)
	}

	// A glob that matches nothing declared is still unknown.
	rs.Permissions[RoleOrgAdmin] = []Permission{"launch:*"}
	if err := rs.Validate(); !errors.Is(err, ErrUnknownPermission) {
		t.Fatalf("expected ErrUnknownPermission, got %v", err)
	}
}

func TestValidateRejectsSelfManagement(t *testing.T) {
	rs := DefaultRuleset()
	rs.Hierarchy[RoleSupervisor] = append(rs.Hierarchy[RoleSupervisor], RoleSupervisor)
	if err := rs.Validate(); !errors.Is(err, ErrCyclicHierarchy) {
		t.Fatalf("expected ErrCyclicHierarchy, got %v", err)
	}
}

func TestValidateRejectsCycle(t *testing.T) {
	rs := DefaultRuleset()
	rs.Hierarchy[RoleSalesperson] = []Role{RoleOrgAdmin}
	if err := rs.Validate(); !errors.Is(err, ErrCyclicHierarchy) {
		t.Fatalf("expected ErrCyclicHierarchy, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	rs := DefaultRuleset()
	cp := rs.Clone()
	cp.Permissions[RoleTeamMember] = append(cp.Permissions[RoleTeamMember], PermExportData)
	cp.Routes["/dashboard"] = []Permission{PermViewDashboard}
	cp.Hierarchy[RoleTeamMember] = []Role{RoleSalesperson}

	if len(rs.Permissions[RoleTeamMember]) != 2 {
		t.Fatal("clone mutation leaked into permission map")
	}
	if len(rs.Routes["/dashboard"]) != 0 {
		t.Fatal("clone mutation leaked into route map")
	}
	if len(rs.Hierarchy[RoleTeamMember]) != 0 {
		t.Fatal("clone mutation leaked into hierarchy")
	}
}
