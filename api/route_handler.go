package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/tollgate"
	"github.com/xraph/tollgate/id"
	"github.com/xraph/tollgate/rules"
)

func (a *API) registerRouteBindingRoutes(router forge.Router) error {
	g := router.Group("/v1/routes", forge.WithGroupTags("routes"))

	if err := g.POST("", a.createRouteBinding,
		forge.WithSummary("Bind route"),
		forge.WithDescription("Binds a route to the permissions that open it."),
		forge.WithOperationID("createRouteBinding"),
		forge.WithRequestSchema(CreateRouteBindingRequest{}),
		forge.WithCreatedResponse(&rules.RouteBinding{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/:bindingId", a.getRouteBinding,
		forge.WithSummary("Get route binding"),
		forge.WithDescription("Returns details of a specific route binding."),
		forge.WithOperationID("getRouteBinding"),
		forge.WithResponseSchema(http.StatusOK, "Route binding details", &rules.RouteBinding{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/:bindingId", a.updateRouteBinding,
		forge.WithSummary("Update route binding"),
		forge.WithDescription("Replaces the permission list of a route binding."),
		forge.WithOperationID("updateRouteBinding"),
		forge.WithRequestSchema(UpdateRouteBindingRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated route binding", &rules.RouteBinding{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/:bindingId", a.deleteRouteBinding,
		forge.WithSummary("Unbind route"),
		forge.WithDescription("Removes a route binding. The route falls back to the engine's unlisted-route policy."),
		forge.WithOperationID("deleteRouteBinding"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("", a.listRouteBindings,
		forge.WithSummary("List route bindings"),
		forge.WithDescription("Lists route bindings with optional filters."),
		forge.WithOperationID("listRouteBindings"),
		forge.WithRequestSchema(ListRouteBindingsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Route binding list", []*rules.RouteBinding{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createRouteBinding(ctx forge.Context, req *CreateRouteBindingRequest) (*rules.RouteBinding, error) {
	st, err := a.requireStore()
	if err != nil {
		return nil, err
	}
	if req.Route == "" {
		return nil, forge.BadRequest("route is required")
	}

	perms := req.Permissions
	if perms == nil {
		perms = []string{}
	}
	binding := &rules.RouteBinding{
		ID:          id.NewRouteBindingID(),
		TenantID:    tollgate.TenantFromContext(ctx.Context()),
		Route:       req.Route,
		Permissions: perms,
		Description: req.Description,
	}

	if err := st.CreateRouteBinding(ctx.Context(), binding); err != nil {
		return nil, mapError(err)
	}

	a.eng.Hooks().EmitRouteBound(ctx.Context(), binding)

	return binding, ctx.JSON(http.StatusCreated, binding)
}

func (a *API) getRouteBinding(ctx forge.Context, _ *GetRouteBindingRequest) (*rules.RouteBinding, error) {
	st, err := a.requireStore()
	if err != nil {
		return nil, err
	}
	bindingID, err := id.ParseRouteBindingID(ctx.Param("bindingId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid binding ID: %v", err))
	}

	binding, err := st.GetRouteBinding(ctx.Context(), bindingID)
	if err != nil {
		return nil, mapError(err)
	}

	return binding, ctx.JSON(http.StatusOK, binding)
}

func (a *API) updateRouteBinding(ctx forge.Context, req *UpdateRouteBindingRequest) (*rules.RouteBinding, error) {
	st, err := a.requireStore()
	if err != nil {
		return nil, err
	}
	bindingID, err := id.ParseRouteBindingID(ctx.Param("bindingId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid binding ID: %v", err))
	}

	binding, err := st.GetRouteBinding(ctx.Context(), bindingID)
	if err != nil {
		return nil, mapError(err)
	}

	if req.Permissions != nil {
		binding.Permissions = req.Permissions
	}
	if req.Description != "" {
		binding.Description = req.Description
	}

	if err := st.UpdateRouteBinding(ctx.Context(), binding); err != nil {
		return nil, mapError(err)
	}

	a.eng.Hooks().EmitRouteBound(ctx.Context(), binding)

	return binding, ctx.JSON(http.StatusOK, binding)
}

func (a *API) deleteRouteBinding(ctx forge.Context, _ *GetRouteBindingRequest) (*struct{}, error) {
	st, err := a.requireStore()
	if err != nil {
		return nil, err
	}
	bindingID, err := id.ParseRouteBindingID(ctx.Param("bindingId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid binding ID: %v", err))
	}

	if err := st.DeleteRouteBinding(ctx.Context(), bindingID); err != nil {
		return nil, mapError(err)
	}

	a.eng.Hooks().EmitRouteUnbound(ctx.Context(), bindingID)

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listRouteBindings(ctx forge.Context, req *ListRouteBindingsRequest) ([]*rules.RouteBinding, error) {
	st, err := a.requireStore()
	if err != nil {
		return nil, err
	}

	filter := &rules.RouteFilter{
		TenantID: tollgate.TenantFromContext(ctx.Context()),
		Search:   req.Search,
		Limit:    defaultLimit(req.Limit),
		Offset:   req.Offset,
	}

	bindings, err := st.ListRouteBindings(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return bindings, ctx.JSON(http.StatusOK, bindings)
}
