package handler // declare the package name; contains HTTP handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is a liveness check for load balancers.  It returns a plain text
// "ok" with status 200 and touches no backing service.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
