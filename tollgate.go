// Package tollgate provides role-based authorization for payment and deal
// management platforms.
//
// Tollgate answers three questions: does a role hold a permission, may a role
// reach a route, and does a role's permission extend to a specific resource
// given the actor's organization/team/ownership scope. A fourth relation,
// the role hierarchy, decides which roles may administratively manage which
// other roles. All answers are computed from a static Ruleset loaded once at
// startup, so every check is pure and safe for unsynchronized concurrent use.
//
//	eng, err := tollgate.NewEngine(
//	    tollgate.WithRuleset(tollgate.DefaultRuleset()),
//	)
//	result, err := eng.Check(ctx, &tollgate.CheckRequest{
//	    Role:       tollgate.RoleSalesperson,
//	    Permission: tollgate.PermManageDeals,
//	    ActorScope: tollgate.Scope{OrgID: "org_1", UserID: "user_7"},
//	    Resource:   tollgate.Scope{OrgID: "org_1", OwnerID: "user_7"},
//	})
package tollgate

import "strings"

// Role is a named class of user with a fixed baseline of permissions.
// The set of roles is closed; the backend assigns exactly one per user
// at login and it never changes for the lifetime of the session.
type Role string

const (
	// RoleSuperAdmin is the platform operator. Scope checks never apply.
	RoleSuperAdmin Role = "super-admin"

	// RoleOrgAdmin administers a single organization.
	RoleOrgAdmin Role = "org-admin"

	// RoleSupervisor manages one team inside an organization.
	RoleSupervisor Role = "supervisor"

	// RoleSalesperson owns deals and clients it created.
	RoleSalesperson Role = "salesperson"

	// RoleVerifier reviews payments and invoices across its organization.
	RoleVerifier Role = "verifier"

	// RoleTeamMember is an individual contributor inside a team.
	RoleTeamMember Role = "team-member"
)

// Roles lists every valid role in a stable order.
func Roles() []Role {
	return []Role{
		RoleSuperAdmin,
		RoleOrgAdmin,
		RoleSupervisor,
		RoleSalesperson,
		RoleVerifier,
		RoleTeamMember,
	}
}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleOrgAdmin, RoleSupervisor,
		RoleSalesperson, RoleVerifier, RoleTeamMember:
		return true
	}
	return false
}

// ParseRole normalizes a free-form role string from an identity backend
// into a member of the closed role set. Normalization lowercases the input
// and collapses spaces and underscores to hyphens, so "Org Admin",
// "ORG_ADMIN", and "org-admin" all parse to RoleOrgAdmin. The second
// return is false for anything outside the closed set; ParseRole never
// panics on malformed input.
func ParseRole(raw string) (Role, bool) {
	norm := strings.ToLower(strings.TrimSpace(raw))
	norm = strings.NewReplacer(" ", "-", "_", "-").Replace(norm)
	r := Role(norm)
	if !r.Valid() {
		return "", false
	}
	return r, true
}

// Permission is an atomic capability token in "verb:resource" form.
type Permission string

// The closed permission set for the payment receiving domain.
const (
	PermManageOrganizations Permission = "manage:organizations"
	PermManageAdmins        Permission = "manage:admins"
	PermManageUsers         Permission = "manage:users"
	PermManageTeams         Permission = "manage:teams"
	PermManageClients       Permission = "manage:clients"
	PermManageDeals         Permission = "manage:deals"
	PermManagePayments      Permission = "manage:payments"
	PermManageCommissions   Permission = "manage:commissions"
	PermVerifyPayments      Permission = "verify:payments"
	PermVerifyInvoices      Permission = "verify:invoices"
	PermViewDashboard       Permission = "view:dashboard"
	PermViewReports         Permission = "view:reports"
	PermExportData          Permission = "export:data"
)

// Permissions lists every declared permission in a stable order.
func Permissions() []Permission {
	return []Permission{
		PermManageOrganizations,
		PermManageAdmins,
		PermManageUsers,
		PermManageTeams,
		PermManageClients,
		PermManageDeals,
		PermManagePayments,
		PermManageCommissions,
		PermVerifyPayments,
		PermVerifyInvoices,
		PermViewDashboard,
		PermViewReports,
		PermExportData,
	}
}

// Scope describes the organizational context of an actor or a resource.
// For an actor, UserID identifies the acting user; for a resource, OwnerID
// identifies the user who owns it. Empty fields mean "not applicable".
// A Scope is consulted only for the duration of one check and never stored.
type Scope struct {
	OrgID   string `json:"org_id,omitempty"`
	TeamID  string `json:"team_id,omitempty"`
	UserID  string `json:"user_id,omitempty"`
	OwnerID string `json:"owner_id,omitempty"`
}

// Scoped is implemented by domain values that know their own access scope.
// FilterByScope uses it to derive each item's resource scope.
type Scoped interface {
	AccessScope() Scope
}

// CheckRequest is the input to a full authorization check.
// Route, when non-empty, requests a route check instead of a bare
// permission check; Resource, when non-zero, adds the scope comparison.
type CheckRequest struct {
	Role       Role       `json:"role"`
	Permission Permission `json:"permission,omitempty"`
	Route      string     `json:"route,omitempty"`
	ActorScope Scope      `json:"actor_scope,omitempty"`
	Resource   Scope      `json:"resource,omitempty"`
}

// CheckResult is the outcome of an authorization check.
type CheckResult struct {
	Allowed    bool     `json:"allowed"`
	Decision   Decision `json:"decision"`
	Reason     string   `json:"reason,omitempty"`
	EvalTimeNs int64    `json:"eval_time_ns"`
}

// Decision is the authorization outcome code.
type Decision string

const (
	// DecisionAllow means a permission or scope rule granted the request.
	DecisionAllow Decision = "allow"

	// DecisionAllowUnlisted means the route has no binding and the engine
	// runs with RouteFailOpen.
	DecisionAllowUnlisted Decision = "allow_unlisted_route"

	// DecisionDenyUnknownRole means the role is not in the closed set.
	DecisionDenyUnknownRole Decision = "deny_unknown_role"

	// DecisionDenyNoPermission means the role does not hold the permission.
	DecisionDenyNoPermission Decision = "deny_no_permission"

	// DecisionDenyScope means the permission is held but the actor's scope
	// does not extend to the resource.
	DecisionDenyScope Decision = "deny_scope"

	// DecisionDenyRoute means none of the route's permissions are held.
	DecisionDenyRoute Decision = "deny_route"

	// DecisionDenyUnlisted means the route has no binding and the engine
	// runs with RouteFailClosed.
	DecisionDenyUnlisted Decision = "deny_unlisted_route"

	// DecisionDenyDefault means no rule produced an allow.
	DecisionDenyDefault Decision = "deny_default"
)
