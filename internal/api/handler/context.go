package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// callerID returns the authenticated user id stored by the auth middleware,
// or the empty string for anonymous requests.
func callerID(c echo.Context) string {
	id, _ := c.Get("user_id").(string)
	return id
}

// requireCallerID is callerID for endpoints that refuse anonymous access.
func requireCallerID(c echo.Context) (string, error) {
	id := callerID(c)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return id, nil
}
