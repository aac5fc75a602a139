package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/scholargraph/pkg/records"

	"github.com/labstack/echo/v4"
)

// GetRecordSchemaHandler returns the JSON Schema upstream agents should follow.
func GetRecordSchemaHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, records.Schema())
}
