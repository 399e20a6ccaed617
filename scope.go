package tollgate

// scopeAllows applies the role-specific scope comparison. It is only called
// after the permission gate has passed. Comparison is plain field equality,
// matching the dashboard contract this engine replicates: an empty field on
// both sides is a match.
func scopeAllows(role Role, perm Permission, actor, resource Scope) bool {
	switch role {
	case RoleSuperAdmin:
		// Top-level administrative role: scope never restricts.
		return true

	case RoleOrgAdmin:
		return actor.OrgID == resource.OrgID

	case RoleSupervisor:
		return actor.OrgID == resource.OrgID && actor.TeamID == resource.TeamID

	case RoleSalesperson, RoleTeamMember:
		if actor.UserID == resource.OwnerID {
			return true
		}
		// Individual contributors may reach team resources, but only
		// through the client-management permission.
		return actor.TeamID == resource.TeamID && perm == PermManageClients

	case RoleVerifier:
		return actor.OrgID == resource.OrgID
	}

	return false
}

// isZero reports whether s has no fields set, meaning no scope comparison
// was requested.
func (s Scope) isZero() bool {
	return s == Scope{}
}
