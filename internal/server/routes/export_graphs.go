package routes

import (
	"errors"
	"net/http"

	"github.com/OFFIS-RIT/scholargraph/internal/pipeline"
	"github.com/OFFIS-RIT/scholargraph/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

// ExportGraphHandler uploads a graph and its analysis to object storage and
// returns presigned download links.
func ExportGraphHandler(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()
	p := c.(*middleware.AppContext).App.Pipeline

	export, err := p.Export(ctx, id)
	if errors.Is(err, pipeline.ErrExportDisabled) {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Export is not configured"})
	}
	if err != nil {
		return graphError(c, err, id)
	}

	return c.JSON(http.StatusOK, export)
}
