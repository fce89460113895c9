package router

import (
	"github.com/labstack/echo/v4"

	"github.com/greenwork/greenwork-api/internal/handler"
)

// RegisterAuth registers the credential endpoints and /api/me.
// limiter is the token-bucket middleware applied to the anonymous
// credential routes; authMW is the JWT middleware for /api/me.  Both
// may be pass-throughs when their backing services are unavailable.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, authMW, limiter echo.MiddlewareFunc) {
	g := e.Group("/api")
	g.POST("/register", a.Register, limiter)
	g.POST("/login", a.Login, limiter)
	g.POST("/refresh", a.Refresh, limiter)
	// Logout is also anonymous: possession of the refresh token is
	// the credential being revoked.
	g.POST("/logout", a.Logout)
	// Logout-all needs the bearer identity to know whose sessions to
	// revoke.
	g.POST("/logout-all", a.LogoutAll, authMW)

	g.GET("/me", a.Me, authMW)
}
