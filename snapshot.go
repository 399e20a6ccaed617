package tollgate

import (
	"fmt"

	"github.com/xraph/tollgate/rules"
)

// RulesetFromSnapshot materializes a Ruleset from stored rules. Grants and
// edges that name an unrecognized role are skipped rather than failing the
// whole load; the result is always total over the closed role set. A cyclic
// hierarchy in the stored edges is an error.
func RulesetFromSnapshot(snap *rules.Snapshot) (*Ruleset, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: nil snapshot", ErrNoRuleset)
	}

	rs := &Ruleset{
		Permissions: make(map[Role][]Permission, len(Roles())),
		Routes:      make(map[string][]Permission, len(snap.Routes)),
		Hierarchy:   make(map[Role][]Role, len(Roles())),
	}
	for _, r := range Roles() {
		rs.Permissions[r] = []Permission{}
		rs.Hierarchy[r] = []Role{}
	}

	for _, g := range snap.Grants {
		role, ok := ParseRole(g.Role)
		if !ok {
			continue
		}
		perm := Permission(g.Permission)
		if !hasPermToken(rs.Permissions[role], perm) {
			rs.Permissions[role] = append(rs.Permissions[role], perm)
		}
	}

	for _, b := range snap.Routes {
		perms := make([]Permission, 0, len(b.Permissions))
		for _, p := range b.Permissions {
			perms = append(perms, Permission(p))
		}
		rs.Routes[b.Route] = perms
	}

	for _, edge := range snap.Edges {
		manager, ok := ParseRole(edge.Manager)
		if !ok {
			continue
		}
		target, ok := ParseRole(edge.Target)
		if !ok {
			continue
		}
		if !hasRole(rs.Hierarchy[manager], target) {
			rs.Hierarchy[manager] = append(rs.Hierarchy[manager], target)
		}
	}

	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return rs, nil
}

// SnapshotFromRuleset decomposes a ruleset into storable rules, suitable
// for seeding an empty rules store. IDs and timestamps are left for the
// store to assign.
func SnapshotFromRuleset(rs *Ruleset, tenantID string) *rules.Snapshot {
	snap := &rules.Snapshot{}
	for _, role := range Roles() {
		for _, perm := range rs.Permissions[role] {
			snap.Grants = append(snap.Grants, &rules.Grant{
				TenantID:   tenantID,
				Role:       string(role),
				Permission: string(perm),
				IsSystem:   true,
			})
		}
	}
	for route, perms := range rs.Routes {
		b := &rules.RouteBinding{TenantID: tenantID, Route: route}
		for _, p := range perms {
			b.Permissions = append(b.Permissions, string(p))
		}
		snap.Routes = append(snap.Routes, b)
	}
	for _, manager := range Roles() {
		for _, target := range rs.Hierarchy[manager] {
			snap.Edges = append(snap.Edges, &rules.HierarchyEdge{
				TenantID: tenantID,
				Manager:  string(manager),
				Target:   string(target),
			})
		}
	}
	return snap
}

func hasPermToken(perms []Permission, p Permission) bool {
	for _, q := range perms {
		if q == p {
			return true
		}
	}
	return false
}

func hasRole(roles []Role, r Role) bool {
	for _, q := range roles {
		if q == r {
			return true
		}
	}
	return false
}
