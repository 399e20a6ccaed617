package tollgate

import "errors"

var (
	// ErrAccessDenied is returned when an authorization check fails.
	ErrAccessDenied = errors.New("tollgate: access denied")

	// ErrUnknownRole is returned when a role is outside the closed set.
	ErrUnknownRole = errors.New("tollgate: unknown role")

	// ErrUnknownPermission is returned when a permission is not declared.
	ErrUnknownPermission = errors.New("tollgate: unknown permission")

	// ErrIncompleteRuleset is returned when a ruleset is not total over
	// the closed role set.
	ErrIncompleteRuleset = errors.New("tollgate: incomplete ruleset")

	// ErrCyclicHierarchy is returned when the role hierarchy contains a
	// cycle or a self-managing role.
	ErrCyclicHierarchy = errors.New("tollgate: cyclic role hierarchy")

	// ErrNoRuleset is returned when the engine has neither a ruleset nor
	// a store to load one from.
	ErrNoRuleset = errors.New("tollgate: ruleset or store is required")

	// ErrGrantNotFound is returned when a permission grant cannot be found.
	ErrGrantNotFound = errors.New("tollgate: grant not found")

	// ErrRouteBindingNotFound is returned when a route binding cannot be found.
	ErrRouteBindingNotFound = errors.New("tollgate: route binding not found")

	// ErrHierarchyEdgeNotFound is returned when a hierarchy edge cannot be found.
	ErrHierarchyEdgeNotFound = errors.New("tollgate: hierarchy edge not found")

	// ErrDuplicateGrant is returned when the same role/permission pair is
	// granted twice.
	ErrDuplicateGrant = errors.New("tollgate: grant already exists")

	// ErrDuplicateEdge is returned when the same manager/target pair is
	// declared twice.
	ErrDuplicateEdge = errors.New("tollgate: hierarchy edge already exists")
)
