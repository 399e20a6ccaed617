package api

import (
	"errors"

	"github.com/xraph/forge"

	"github.com/xraph/tollgate"
	"github.com/xraph/tollgate/store"
)

// requireStore guards the rule management endpoints. An engine built on a
// static ruleset has nothing to persist to.
func (a *API) requireStore() (store.Store, error) {
	s := a.eng.Store()
	if s == nil {
		return nil, forge.BadRequest("engine runs on a static ruleset; no store is configured")
	}
	return s, nil
}

// mapError maps domain errors to Forge HTTP errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return forge.NotFound(err.Error())
	}
	if errors.Is(err, tollgate.ErrDuplicateGrant) || errors.Is(err, tollgate.ErrDuplicateEdge) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, tollgate.ErrUnknownRole) || errors.Is(err, tollgate.ErrUnknownPermission) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, tollgate.ErrCyclicHierarchy) || errors.Is(err, tollgate.ErrIncompleteRuleset) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, tollgate.ErrAccessDenied) {
		return forge.Forbidden(err.Error())
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, tollgate.ErrGrantNotFound) ||
		errors.Is(err, tollgate.ErrRouteBindingNotFound) ||
		errors.Is(err, tollgate.ErrHierarchyEdgeNotFound)
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
