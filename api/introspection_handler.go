package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/tollgate"
)

func (a *API) registerIntrospectionRoutes(router forge.Router) error {
	g := router.Group("/v1/roles", forge.WithGroupTags("roles"))

	if err := g.GET("", a.listRoles,
		forge.WithSummary("List roles"),
		forge.WithDescription("Returns the closed role set."),
		forge.WithOperationID("listRoles"),
		forge.WithResponseSchema(http.StatusOK, "Role list", []string{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/:role/routes", a.accessibleRoutes,
		forge.WithSummary("Accessible routes"),
		forge.WithDescription("Returns the explicitly bound routes the role may access."),
		forge.WithOperationID("accessibleRoutes"),
		forge.WithResponseSchema(http.StatusOK, "Accessible routes", AccessibleRoutesResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/:role/manageable", a.manageableRoles,
		forge.WithSummary("Manageable roles"),
		forge.WithDescription("Returns the roles the given role may administratively manage."),
		forge.WithOperationID("manageableRoles"),
		forge.WithResponseSchema(http.StatusOK, "Manageable roles", ManageableRolesResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) listRoles(ctx forge.Context, _ *struct{}) ([]string, error) {
	roles := tollgate.Roles()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out, ctx.JSON(http.StatusOK, out)
}

func (a *API) accessibleRoutes(ctx forge.Context, _ *RoleIntrospectionRequest) (*AccessibleRoutesResponse, error) {
	role, ok := tollgate.ParseRole(ctx.Param("role"))
	if !ok {
		return nil, forge.BadRequest("unknown role: " + ctx.Param("role"))
	}

	routes := a.eng.AccessibleRoutes(role)
	resp := &AccessibleRoutesResponse{Role: string(role), Routes: routes}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) manageableRoles(ctx forge.Context, _ *RoleIntrospectionRequest) (*ManageableRolesResponse, error) {
	role, ok := tollgate.ParseRole(ctx.Param("role"))
	if !ok {
		return nil, forge.BadRequest("unknown role: " + ctx.Param("role"))
	}

	targets := a.eng.ManageableRoles(role)
	out := make([]string, len(targets))
	for i, t := range targets {
		out[i] = string(t)
	}
	resp := &ManageableRolesResponse{Role: string(role), Roles: out}
	return resp, ctx.JSON(http.StatusOK, resp)
}
