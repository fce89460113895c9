package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/greenwork/greenwork-api/internal/config"
	"github.com/greenwork/greenwork-api/internal/middleware"
	"github.com/greenwork/greenwork-api/internal/model"
	"github.com/greenwork/greenwork-api/internal/repository"
)

// UserHandler implements the /api/users management endpoints.  Route
// registration decides which of them are admin-only; the self-or-admin
// checks that depend on the target resource live here.
type UserHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens TokenStore
}

func NewUserHandler(cfg config.Config, users UserStore, tokens TokenStore) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: users, Tokens: tokens}
}

// List handles GET /api/users.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return serverError(c, "Failed to load users")
	}
	out := make([]model.User, len(users))
	for i, u := range users {
		out[i] = u.Public()
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /api/users/:id.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "User not found")
		}
		return serverError(c, "Failed to load user")
	}
	return c.JSON(http.StatusOK, u.Public())
}

// Create handles POST /api/users (admin only, enforced by the route).
// Unlike registration it issues no tokens.
func (h *UserHandler) Create(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	for _, f := range []struct{ name, val string }{
		{"email", req.Email},
		{"password", req.Password},
		{"first_name", req.FirstName},
	} {
		if f.val == "" {
			return badRequest(c, "Field '"+f.name+"' is required")
		}
	}
	role := req.Role
	if role == "" {
		role = model.RoleUser
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u := model.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Role:      role,
	}
	uid, err := h.Users.Create(ctx, u, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return fail(c, http.StatusConflict, "Email already registered")
		}
		return serverError(c, "User creation failed")
	}
	u.ID = uid
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "User created successfully",
		"user":    u.Public(),
	})
}

type userUpdateReq struct {
	FirstName         *string `json:"first_name"`
	LastName          *string `json:"last_name"`
	Email             *string `json:"email"`
	Password          *string `json:"password"`
	Role              *string `json:"role"`
	PreferredLanguage *string `json:"preferred_language"`
	ProfileImageID    *uint64 `json:"profile_image_id"`
}

// Update handles PUT /api/users/:id.  Users may edit their own
// profile; admins may edit anyone.  A role change by a non-admin is
// silently dropped rather than rejected.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid id")
	}
	if !middleware.OwnerOrAdmin(c, id) {
		return fail(c, http.StatusForbidden, "You can only update your own profile")
	}

	var req userUpdateReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "User not found")
		}
		return serverError(c, "User update failed")
	}

	patch := repository.UserPatch{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		Password:          req.Password,
		PreferredLanguage: req.PreferredLanguage,
		ProfileImageID:    req.ProfileImageID,
	}
	if role, _ := c.Get(middleware.CtxRole).(string); role == model.RoleAdmin {
		patch.Role = req.Role
	}

	if err := h.Users.Update(ctx, id, patch, h.Cfg.BcryptCost); err != nil {
		if err == repository.ErrEmailExists {
			return fail(c, http.StatusConflict, "Email already in use by another user")
		}
		return serverError(c, "User update failed")
	}

	updated, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return serverError(c, "User update failed")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "User updated successfully",
		"user":    updated.Public(),
	})
}

type changePasswordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword handles POST /api/users/:id/change-password.  The
// current password is always required, admins included.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid id")
	}
	if !middleware.OwnerOrAdmin(c, id) {
		return fail(c, http.StatusForbidden, "You can only change your own password")
	}

	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return badRequest(c, "Current password and new password are required")
	}
	if len(req.NewPassword) < 8 {
		return badRequest(c, "New password must be at least 8 characters long")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.UpdatePassword(ctx, id, req.CurrentPassword, req.NewPassword, h.Cfg.BcryptCost); err != nil {
		switch err {
		case sql.ErrNoRows:
			return notFound(c, "User not found")
		case repository.ErrForbidden:
			return fail(c, http.StatusUnauthorized, "Current password is incorrect")
		default:
			return serverError(c, "Password change failed")
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Password changed successfully"})
}

// Delete handles DELETE /api/users/:id (admin only, enforced by the
// route).
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "User not found")
		}
		return serverError(c, "User deletion failed")
	}
	// A deleted account must not keep live sessions.
	if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
		return serverError(c, "User deletion failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "User deleted successfully"})
}
