package middleware // middleware provides reusable HTTP middleware for the API

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/greenwork/greenwork-api/internal/model"
	"github.com/greenwork/greenwork-api/internal/utils"
)

// Context keys populated by JWTAuth for downstream middleware and
// handlers.
const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxRole   = "role"
	CtxClaims = "claims"
)

// UserFinder is the slice of the user store the middleware needs to
// confirm that the token's subject still exists.  *repository.UserRepo
// satisfies it.
type UserFinder interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// unauthenticated is the single 401 body used for every verification
// failure.  Whether the token was missing, malformed, expired or
// referenced a deleted user is never revealed to the client.
func unauthenticated(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": true, "message": "Authorization token required"})
}

// JWTAuth returns middleware that validates a Bearer access token and
// injects the token's identity claims into the request context.  In
// addition to signature and expiry checks, it re-confirms the
// referenced user still exists: an otherwise valid token for a
// deleted user is rejected.
func JWTAuth(secret string, users UserFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return unauthenticated(c)
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.VerifyAccessToken(secret, raw)
			if err != nil {
				return unauthenticated(c)
			}

			// stale tokens for deleted users are invalid regardless
			// of the signature
			if _, err := users.GetByID(c.Request().Context(), claims.Data.ID); err != nil {
				return unauthenticated(c)
			}

			c.Set(CtxUserID, claims.Data.ID)
			c.Set(CtxEmail, claims.Data.Email)
			c.Set(CtxRole, claims.Data.Role)
			c.Set(CtxClaims, claims)
			return next(c)
		}
	}
}
