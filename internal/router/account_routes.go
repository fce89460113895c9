package router

import (
	"github.com/labstack/echo/v4"

	"github.com/greenwork/greenwork-api/internal/handler"
	"github.com/greenwork/greenwork-api/internal/middleware"
	"github.com/greenwork/greenwork-api/internal/model"
)

// RegisterUsers registers the /api/users management surface.  All of
// it sits behind the JWT middleware; creating and deleting users is
// admin-only, while profile edits apply a self-or-admin check inside
// the handler where the target id is known.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, authMW echo.MiddlewareFunc) {
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	g := e.Group("/api/users", authMW)
	g.GET("", u.List)
	g.GET("/:id", u.Get)
	g.POST("", u.Create, adminOnly)
	g.PUT("/:id", u.Update)
	g.POST("/:id/change-password", u.ChangePassword)
	g.DELETE("/:id", u.Delete, adminOnly)
}

// RegisterCompanies registers the /api/companies surface plus the
// per-user company listing.  Ownership checks on mutation live in the
// handlers.
func RegisterCompanies(e *echo.Echo, h *handler.CompanyHandler, authMW echo.MiddlewareFunc) {
	g := e.Group("/api/companies", authMW)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)

	e.GET("/api/users/:id/companies", h.ListByUser, authMW)
}
