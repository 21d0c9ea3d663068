package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health reports liveness together with the reference-table version the
// engine was built from, so a deployment can be checked for stale tables.
func Health(tablesVersion string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status":         "ok",
			"tables_version": tablesVersion,
		})
	}
}
