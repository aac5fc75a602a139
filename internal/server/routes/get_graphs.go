package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/scholargraph/internal/server/middleware"
	"github.com/OFFIS-RIT/scholargraph/pkg/logger"
	"github.com/OFFIS-RIT/scholargraph/pkg/store"

	"github.com/labstack/echo/v4"
)

// GetGraphsHandler lists the graphs of a session, newest first.
func GetGraphsHandler(c echo.Context) error {
	type getGraphsData struct {
		SessionID string `query:"session_id" validate:"required"`
	}

	data := new(getGraphsData)
	if err := c.Bind(data); err != nil {
		return badRequest(c)
	}
	if err := c.Validate(data); err != nil {
		return badRequest(c)
	}

	ctx := c.Request().Context()
	s := c.(*middleware.AppContext).App.Pipeline.Store()
	graphs, err := s.ListGraphs(ctx, data.SessionID)
	if err != nil {
		logger.Error("[Routes] Failed to list graphs", "session", data.SessionID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
	if graphs == nil {
		graphs = []store.GraphInfo{}
	}

	return c.JSON(http.StatusOK, graphs)
}

// GetGraphHandler returns a stored graph with its nodes and edges.
func GetGraphHandler(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return badRequest(c)
	}

	ctx := c.Request().Context()
	s := c.(*middleware.AppContext).App.Pipeline.Store()
	record, err := s.GetGraph(ctx, id)
	if err != nil {
		return graphError(c, err, id)
	}

	return c.JSON(http.StatusOK, record)
}
