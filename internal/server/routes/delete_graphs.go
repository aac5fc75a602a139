package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/scholargraph/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

// DeleteGraphHandler removes a graph with its analysis and exports.
func DeleteGraphHandler(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()
	p := c.(*middleware.AppContext).App.Pipeline

	if err := p.Delete(ctx, id); err != nil {
		return graphError(c, err, id)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Graph deleted"})
}
