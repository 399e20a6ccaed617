package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/tollgate"
	"github.com/xraph/tollgate/id"
	"github.com/xraph/tollgate/rules"
)

func (a *API) registerGrantRoutes(router forge.Router) error {
	g := router.Group("/v1/grants", forge.WithGroupTags("grants"))

	if err := g.POST("", a.createGrant,
		forge.WithSummary("Create grant"),
		forge.WithDescription("Grants a permission to a role."),
		forge.WithOperationID("createGrant"),
		forge.WithRequestSchema(CreateGrantRequest{}),
		forge.WithCreatedResponse(&rules.Grant{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/:grantId", a.getGrant,
		forge.WithSummary("Get grant"),
		forge.WithDescription("Returns details of a specific grant."),
		forge.WithOperationID("getGrant"),
		forge.WithResponseSchema(http.StatusOK, "Grant details", &rules.Grant{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/:grantId", a.deleteGrant,
		forge.WithSummary("Delete grant"),
		forge.WithDescription("Revokes a permission grant."),
		forge.WithOperationID("deleteGrant"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("", a.listGrants,
		forge.WithSummary("List grants"),
		forge.WithDescription("Lists grants with optional filters."),
		forge.WithOperationID("listGrants"),
		forge.WithRequestSchema(ListGrantsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Grant list", []*rules.Grant{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createGrant(ctx forge.Context, req *CreateGrantRequest) (*rules.Grant, error) {
	st, err := a.requireStore()
	if err != nil {
		return nil, err
	}
	role, ok := tollgate.ParseRole(req.Role)
	if !ok {
		return nil, forge.BadRequest("unknown role: " + req.Role)
	}
	if req.Permission == "" {
		return nil, forge.BadRequest("permission is required")
	}

	grant := &rules.Grant{
		ID:         id.NewGrantID(),
		TenantID:   tollgate.TenantFromContext(ctx.Context()),
		Role:       string(role),
		Permission: req.Permission,
		GrantedBy:  req.GrantedBy,
		Metadata:   req.Metadata,
	}

	if err := st.CreateGrant(ctx.Context(), grant); err != nil {
		return nil, mapError(err)
	}

	a.eng.Hooks().EmitGrantCreated(ctx.Context(), grant)

	return grant, ctx.JSON(http.StatusCreated, grant)
}

func (a *API) getGrant(ctx forge.Context, _ *GetGrantRequest) (*rules.Grant, error) {
	st, err := a.requireStore()
	if err != nil {
		return nil, err
	}
	grantID, err := id.ParseGrantID(ctx.Param("grantId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid grant ID: %v", err))
	}

	grant, err := st.GetGrant(ctx.Context(), grantID)
	if err != nil {
		return nil, mapError(err)
	}

	return grant, ctx.JSON(http.StatusOK, grant)
}

func (a *API) deleteGrant(ctx forge.Context, _ *GetGrantRequest) (*struct{}, error) {
	st, err := a.requireStore()
	if err != nil {
		return nil, err
	}
	grantID, err := id.ParseGrantID(ctx.Param("grantId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid grant ID: %v", err))
	}

	if err := st.DeleteGrant(ctx.Context(), grantID); err != nil {
		return nil, mapError(err)
	}

	a.eng.Hooks().EmitGrantDeleted(ctx.Context(), grantID)

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listGrants(ctx forge.Context, req *ListGrantsRequest) ([]*rules.Grant, error) {
	st, err := a.requireStore()
	if err != nil {
		return nil, err
	}

	filter := &rules.GrantFilter{
		TenantID:   tollgate.TenantFromContext(ctx.Context()),
		Role:       req.Role,
		Permission: req.Permission,
		Limit:      defaultLimit(req.Limit),
		Offset:     req.Offset,
	}

	grants, err := st.ListGrants(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return grants, ctx.JSON(http.StatusOK, grants)
}
