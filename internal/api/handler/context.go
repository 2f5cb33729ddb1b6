package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxPrincipal extracts the caller identity injected by the Auth middleware.
// A missing principal means the middleware did not run on this route; that is
// a wiring mistake, rejected as 401 rather than passed on as an empty actor.
func ctxPrincipal(c echo.Context) (string, error) {
	principal, _ := c.Get("principal").(string)
	if principal == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return principal, nil
}
