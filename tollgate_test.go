package tollgate

import "testing"

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"salesperson", RoleSalesperson, true},
		{"org-admin", RoleOrgAdmin, true},
		{"Org Admin", RoleOrgAdmin, true},
		{"ORG_ADMIN", RoleOrgAdmin, true},
		{"  super-admin  ", RoleSuperAdmin, true},
		{"Team Member", RoleTeamMember, true},
		{"SUPERVISOR", RoleSupervisor, true},
		{"verifier", RoleVerifier, true},
		{"root", "", false},
		{"", "", false},
		{"sales person admin", "", false},
	}
	for _, c := range cases {
		got, ok := ParseRole(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("ParseRole(%q) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range Roles() {
		if !r.Valid() {
			t.Fatalf("role %q should be valid", r)
		}
	}
	for _, r := range []Role{"", "admin", "Super-Admin", "salesperson "} {
		if r.Valid() {
			t.Fatalf("role %q should be invalid", r)
		}
	}
}

func TestClosedSetsAreStable(t *testing.T) {
	if len(Roles()) != 6 {
		t.Fatalf("expected 6 roles, got %d", len(Roles()))
	}
	if len(Permissions()) != 13 {
		t.Fatalf("expected 13 permissions, got %d", len(Permissions()))
	}
	seen := make(map[Permission]bool)
	for _, p := range Permissions() {
		if seen[p] {
			t.Fatalf("duplicate permission %q", p)
		}
		seen[p] = true
	}
}
