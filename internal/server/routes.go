package server

import (
	"net/http"

	"github.com/OFFIS-RIT/scholargraph/internal/server/middleware"
	"github.com/OFFIS-RIT/scholargraph/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	apiRoutes.GET("/schema/records", routes.GetRecordSchemaHandler)

	// Graph routes
	apiRoutes.GET("/graphs", routes.GetGraphsHandler, middleware.RequirePermission(middleware.PermissionGraphView))
	apiRoutes.POST("/graphs", routes.CreateGraphHandler, middleware.RequirePermission(middleware.PermissionGraphCreate))
	apiRoutes.POST("/graphs/async", routes.CreateGraphAsyncHandler, middleware.RequirePermission(middleware.PermissionGraphCreate))
	apiRoutes.GET("/graphs/:id", routes.GetGraphHandler, middleware.RequirePermission(middleware.PermissionGraphView))
	apiRoutes.DELETE("/graphs/:id", routes.DeleteGraphHandler, middleware.RequirePermission(middleware.PermissionGraphDelete))
	apiRoutes.POST("/graphs/:id/export", routes.ExportGraphHandler, middleware.RequirePermission(middleware.PermissionGraphExport))

	// Analysis routes
	apiRoutes.GET("/graphs/:id/analysis", routes.GetGraphAnalysisHandler, middleware.RequirePermission(middleware.PermissionGraphView))
	apiRoutes.GET("/graphs/:id/path", routes.GetGraphPathHandler, middleware.RequirePermission(middleware.PermissionGraphView))
	apiRoutes.GET("/graphs/:id/nodes/:node_id/neighborhood", routes.GetNodeNeighborhoodHandler, middleware.RequirePermission(middleware.PermissionGraphView))
}
