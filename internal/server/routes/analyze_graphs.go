package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/scholargraph/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

// GetGraphAnalysisHandler returns the full analysis of a stored graph.
func GetGraphAnalysisHandler(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()
	p := c.(*middleware.AppContext).App.Pipeline

	result, err := p.Analyze(ctx, id)
	if err != nil {
		return graphError(c, err, id)
	}

	return c.JSON(http.StatusOK, result)
}

// GetGraphPathHandler finds the shortest path between two nodes. Unknown or
// unreachable nodes are reported as {"exists": false}.
func GetGraphPathHandler(c echo.Context) error {
	type getPathData struct {
		GraphID string `param:"id" validate:"required"`
		Source  string `query:"source" validate:"required"`
		Target  string `query:"target" validate:"required"`
	}

	data := new(getPathData)
	if err := c.Bind(data); err != nil {
		return badRequest(c)
	}
	if err := c.Validate(data); err != nil {
		return badRequest(c)
	}

	ctx := c.Request().Context()
	p := c.(*middleware.AppContext).App.Pipeline
	analyzer, err := p.Analyzer(ctx, data.GraphID)
	if err != nil {
		return graphError(c, err, data.GraphID)
	}

	return c.JSON(http.StatusOK, analyzer.FindShortestPath(data.Source, data.Target))
}

// GetNodeNeighborhoodHandler returns the subgraph within depth hops of a node.
func GetNodeNeighborhoodHandler(c echo.Context) error {
	type getNeighborhoodData struct {
		GraphID string `param:"id" validate:"required"`
		NodeID  string `param:"node_id" validate:"required"`
		Depth   int    `query:"depth" validate:"min=0,max=5"`
	}

	data := new(getNeighborhoodData)
	if err := c.Bind(data); err != nil {
		return badRequest(c)
	}
	if err := c.Validate(data); err != nil {
		return badRequest(c)
	}
	depth := data.Depth
	if c.QueryParam("depth") == "" {
		depth = 1
	}

	ctx := c.Request().Context()
	p := c.(*middleware.AppContext).App.Pipeline
	analyzer, err := p.Analyzer(ctx, data.GraphID)
	if err != nil {
		return graphError(c, err, data.GraphID)
	}

	sub, ok := analyzer.Neighborhood(data.NodeID, depth)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Node not found"})
	}

	return c.JSON(http.StatusOK, sub)
}
