package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/greenwork/greenwork-api/internal/model"
)

// RequireRole enforces that the authenticated user's role, as stored
// in the context by JWTAuth, is one of the allowed values.  Requests
// with a missing or disallowed role are rejected with 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxRole).(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": true, "message": "forbidden"})
			}
			return next(c)
		}
	}
}

// OwnerOrAdmin reports whether the request's identity may act on a
// resource owned by ownerID: admins always may, everyone else only on
// their own resources.  Handlers call this next to the resource load,
// where the owner id is known.
func OwnerOrAdmin(c echo.Context, ownerID uint64) bool {
	role, _ := c.Get(CtxRole).(string)
	if role == model.RoleAdmin {
		return true
	}
	uid, ok := c.Get(CtxUserID).(uint64)
	return ok && uid == ownerID
}
