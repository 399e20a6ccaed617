package tollgate

import "fmt"

// Ruleset is the static authorization configuration: which permissions each
// role holds, which permissions each route requires, and which roles each
// role may administratively manage. A Ruleset is built once (in code or
// loaded from a rules store) and never mutated afterwards; the engine only
// ever reads it.
type Ruleset struct {
	// Permissions maps every role to the ordered set of permissions it holds.
	Permissions map[Role][]Permission

	// Routes maps a route identifier to the permissions that grant access.
	// Any-of semantics: holding one listed permission is enough. A route
	// bound to an empty set is open to every valid role.
	Routes map[string][]Permission

	// Hierarchy maps every role to the roles it may manage (create, edit,
	// deactivate). Directed and acyclic; no role manages itself.
	Hierarchy map[Role][]Role
}

// DefaultRuleset returns the built-in configuration for the payment
// receiving domain. It is total over the closed role set.
func DefaultRuleset() *Ruleset {
	return &Ruleset{
		Permissions: map[Role][]Permission{
			RoleSuperAdmin: Permissions(),
			RoleOrgAdmin: {
				PermManageAdmins,
				PermManageUsers,
				PermManageTeams,
				PermManageClients,
				PermManageDeals,
				PermManagePayments,
				PermManageCommissions,
				PermViewDashboard,
				PermViewReports,
				PermExportData,
			},
			RoleSupervisor: {
				PermManageClients,
				PermManageDeals,
				PermManagePayments,
				PermViewDashboard,
				PermViewReports,
			},
			RoleSalesperson: {
				PermManageClients,
				PermManageDeals,
				PermViewDashboard,
			},
			RoleVerifier: {
				PermVerifyPayments,
				PermVerifyInvoices,
				PermViewDashboard,
			},
			RoleTeamMember: {
				PermManageClients,
				PermViewDashboard,
			},
		},
		Routes: map[string][]Permission{
			"/organizations": {PermManageOrganizations},
			"/admins":        {PermManageAdmins},
			"/users":         {PermManageUsers},
			"/teams":         {PermManageTeams},
			"/clients":       {PermManageClients},
			"/deals":         {PermManageDeals},
			"/payments":      {PermManagePayments, PermVerifyPayments},
			"/commissions":   {PermManageCommissions},
			"/verification":  {PermVerifyPayments, PermVerifyInvoices},
			"/reports":       {PermViewReports},
			"/dashboard":     {},
		},
		Hierarchy: map[Role][]Role{
			RoleSuperAdmin: {
				RoleOrgAdmin,
				RoleSupervisor,
				RoleSalesperson,
				RoleVerifier,
				RoleTeamMember,
			},
			RoleOrgAdmin: {
				RoleSupervisor,
				RoleSalesperson,
				RoleVerifier,
				RoleTeamMember,
			},
			RoleSupervisor: {
				RoleSalesperson,
				RoleTeamMember,
			},
			RoleSalesperson: {},
			RoleVerifier:    {},
			RoleTeamMember:  {},
		},
	}
}

// Validate checks the structural invariants: all three maps are total over
// the closed role set, every referenced role and permission is declared,
// and the hierarchy is acyclic with no self-management. Wildcard grants
// (a trailing "*") are accepted when they match at least one declared
// permission.
func (rs *Ruleset) Validate() error {
	declared := make(map[Permission]struct{}, len(Permissions()))
	for _, p := range Permissions() {
		declared[p] = struct{}{}
	}

	known := func(p Permission) bool {
		if _, ok := declared[p]; ok {
			return true
		}
		if !isWildcard(p) {
			return false
		}
		for _, d := range Permissions() {
			if matchPermission(p, d) {
				return true
			}
		}
		return false
	}

	for _, r := range Roles() {
		if _, ok := rs.Permissions[r]; !ok {
			return fmt.Errorf("%w: no permission entry for role %q", ErrIncompleteRuleset, r)
		}
		if _, ok := rs.Hierarchy[r]; !ok {
			return fmt.Errorf("%w: no hierarchy entry for role %q", ErrIncompleteRuleset, r)
		}
	}

	for r, perms := range rs.Permissions {
		if !r.Valid() {
			return fmt.Errorf("%w: %q in permission map", ErrUnknownRole, r)
		}
		for _, p := range perms {
			if !known(p) {
				return fmt.Errorf("%w: %q granted to role %q", ErrUnknownPermission, p, r)
			}
		}
	}

	for route, perms := range rs.Routes {
		for _, p := range perms {
			if !known(p) {
				return fmt.Errorf("%w: %q required by route %q", ErrUnknownPermission, p, route)
			}
		}
	}

	for manager, targets := range rs.Hierarchy {
		if !manager.Valid() {
			return fmt.Errorf("%w: %q in hierarchy", ErrUnknownRole, manager)
		}
		for _, t := range targets {
			if !t.Valid() {
				return fmt.Errorf("%w: %q managed by %q", ErrUnknownRole, t, manager)
			}
			if t == manager {
				return fmt.Errorf("%w: role %q manages itself", ErrCyclicHierarchy, manager)
			}
		}
	}

	return rs.checkAcyclic()
}

// checkAcyclic walks the management graph breadth-first from every role and
// rejects any path that returns to its origin.
func (rs *Ruleset) checkAcyclic() error {
	for _, origin := range Roles() {
		visited := make(map[Role]struct{})
		queue := append([]Role(nil), rs.Hierarchy[origin]...)
		for len(queue) > 0 {
			r := queue[0]
			queue = queue[1:]
			if r == origin {
				return fmt.Errorf("%w: cycle through role %q", ErrCyclicHierarchy, origin)
			}
			if _, seen := visited[r]; seen {
				continue
			}
			visited[r] = struct{}{}
			queue = append(queue, rs.Hierarchy[r]...)
		}
	}
	return nil
}

// Clone returns a deep copy. Engine construction clones caller-provided
// rulesets so later mutation of the argument cannot leak into checks.
func (rs *Ruleset) Clone() *Ruleset {
	out := &Ruleset{
		Permissions: make(map[Role][]Permission, len(rs.Permissions)),
		Routes:      make(map[string][]Permission, len(rs.Routes)),
		Hierarchy:   make(map[Role][]Role, len(rs.Hierarchy)),
	}
	for r, perms := range rs.Permissions {
		out.Permissions[r] = append([]Permission(nil), perms...)
	}
	for route, perms := range rs.Routes {
		out.Routes[route] = append([]Permission(nil), perms...)
	}
	for r, targets := range rs.Hierarchy {
		out.Hierarchy[r] = append([]Role(nil), targets...)
	}
	return out
}
