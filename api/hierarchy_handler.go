package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/tollgate"
	"github.com/xraph/tollgate/id"
	"github.com/xraph/tollgate/rules"
)

func (a *API) registerHierarchyRoutes(router forge.Router) error {
	g := router.Group("/v1/hierarchy", forge.WithGroupTags("hierarchy"))

	if err := g.POST("", a.createHierarchyEdge,
		forge.WithSummary("Create hierarchy edge"),
		forge.WithDescription("Declares that the manager role may administratively manage the target role."),
		forge.WithOperationID("createHierarchyEdge"),
		forge.WithRequestSchema(CreateHierarchyEdgeRequest{}),
		forge.WithCreatedResponse(&rules.HierarchyEdge{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/:edgeId", a.getHierarchyEdge,
		forge.WithSummary("Get hierarchy edge"),
		forge.WithDescription("Returns details of a specific hierarchy edge."),
		forge.WithOperationID("getHierarchyEdge"),
		forge.WithResponseSchema(http.StatusOK, "Hierarchy edge details", &rules.HierarchyEdge{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/:edgeId", a.deleteHierarchyEdge,
		forge.WithSummary("Delete hierarchy edge"),
		forge.WithDescription("Removes a manager/target pair from the role hierarchy."),
		forge.WithOperationID("deleteHierarchyEdge"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("", a.listHierarchyEdges,
		forge.WithSummary("List hierarchy edges"),
		forge.WithDescription("Lists hierarchy edges with optional filters."),
		forge.WithOperationID("listHierarchyEdges"),
		forge.WithRequestSchema(ListHierarchyEdgesRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Hierarchy edge list", []*rules.HierarchyEdge{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createHierarchyEdge(ctx forge.Context, req *CreateHierarchyEdgeRequest) (*rules.HierarchyEdge, error) {
	st, err := a.requireStore()
	if err != nil {
		return nil, err
	}
	manager, ok := tollgate.ParseRole(req.Manager)
	if !ok {
		return nil, forge.BadRequest("unknown manager role: " + req.Manager)
	}
	target, ok := tollgate.ParseRole(req.Target)
	if !ok {
		return nil, forge.BadRequest("unknown target role: " + req.Target)
	}
	if manager == target {
		return nil, forge.BadRequest("a role cannot manage itself")
	}

	tenantID := tollgate.TenantFromContext(ctx.Context())
	edges, err := st.ListHierarchyEdges(ctx.Context(), &rules.EdgeFilter{TenantID: tenantID})
	if err != nil {
		return nil, mapError(err)
	}
	if introducesCycle(edges, string(manager), string(target)) {
		return nil, forge.BadRequest(fmt.Sprintf("edge %s->%s would make the hierarchy cyclic", manager, target))
	}

	edge := &rules.HierarchyEdge{
		ID:       id.NewHierarchyEdgeID(),
		TenantID: tenantID,
		Manager:  string(manager),
		Target:   string(target),
	}

	if err := st.CreateHierarchyEdge(ctx.Context(), edge); err != nil {
		return nil, mapError(err)
	}

	a.eng.Hooks().EmitEdgeCreated(ctx.Context(), edge)

	return edge, ctx.JSON(http.StatusCreated, edge)
}

// introducesCycle reports whether adding manager->target closes a loop,
// i.e. whether manager is already reachable from target through the
// existing edges.
func introducesCycle(edges []*rules.HierarchyEdge, manager, target string) bool {
	next := make(map[string][]string, len(edges))
	for _, e := range edges {
		next[e.Manager] = append(next[e.Manager], e.Target)
	}
	seen := map[string]bool{target: true}
	queue := []string{target}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == manager {
			return true
		}
		for _, n := range next[cur] {
			if !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	return false
}

func (a *API) getHierarchyEdge(ctx forge.Context, _ *GetHierarchyEdgeRequest) (*rules.HierarchyEdge, error) {
	st, err := a.requireStore()
	if err != nil {
		return nil, err
	}
	edgeID, err := id.ParseHierarchyEdgeID(ctx.Param("edgeId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid edge ID: %v", err))
	}

	edge, err := st.GetHierarchyEdge(ctx.Context(), edgeID)
	if err != nil {
		return nil, mapError(err)
	}

	return edge, ctx.JSON(http.StatusOK, edge)
}

func (a *API) deleteHierarchyEdge(ctx forge.Context, _ *GetHierarchyEdgeRequest) (*struct{}, error) {
	st, err := a.requireStore()
	if err != nil {
		return nil, err
	}
	edgeID, err := id.ParseHierarchyEdgeID(ctx.Param("edgeId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid edge ID: %v", err))
	}

	if err := st.DeleteHierarchyEdge(ctx.Context(), edgeID); err != nil {
		return nil, mapError(err)
	}

	a.eng.Hooks().EmitEdgeDeleted(ctx.Context(), edgeID)

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listHierarchyEdges(ctx forge.Context, req *ListHierarchyEdgesRequest) ([]*rules.HierarchyEdge, error) {
	st, err := a.requireStore()
	if err != nil {
		return nil, err
	}

	filter := &rules.EdgeFilter{
		TenantID: tollgate.TenantFromContext(ctx.Context()),
		Manager:  req.Manager,
		Target:   req.Target,
		Limit:    defaultLimit(req.Limit),
		Offset:   req.Offset,
	}

	edges, err := st.ListHierarchyEdges(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	return edges, ctx.JSON(http.StatusOK, edges)
}
