// Package router wires the handlers onto the Echo instance.  Route
// registration is split by surface: auth, account management and the
// public booking catalogue.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/greenwork/greenwork-api/internal/handler"
)

// RegisterRoutes registers routes that carry no middleware at all.
// Currently that is the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}
