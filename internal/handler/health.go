package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health responds with a minimal payload so load balancers and monitors can
// verify the service is up.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
