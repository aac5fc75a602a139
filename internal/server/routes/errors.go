package routes

import (
	"errors"
	"net/http"

	"github.com/OFFIS-RIT/scholargraph/pkg/logger"
	"github.com/OFFIS-RIT/scholargraph/pkg/store"

	"github.com/labstack/echo/v4"
)

func badRequest(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
}

// graphError answers a failed storage lookup, logging anything but a missing graph.
func graphError(c echo.Context, err error, graphID string) error {
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Graph not found"})
	}
	logger.Error("[Routes] Graph request failed", "graph", graphID, "err", err)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
}
