package handler

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenwork/greenwork-api/internal/config"
	"github.com/greenwork/greenwork-api/internal/model"
	"github.com/greenwork/greenwork-api/internal/repository"
	"github.com/greenwork/greenwork-api/internal/utils"
)

// AuthHandler implements registration, the login/refresh/logout token
// lifecycle and the /api/me endpoint.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens TokenStore
}

func NewAuthHandler(cfg config.Config, users UserStore, tokens TokenStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Tokens: tokens}
}

type registerReq struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

// issuePair mints a login-grade access token plus a fresh refresh
// token and persists the latter.  Shared by Register and Login.
func (h *AuthHandler) issuePair(c echo.Context, u model.User) (utils.AccessToken, utils.RefreshToken, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret,
		utils.UserData{ID: u.ID, Email: u.Email, Role: u.Role},
		time.Duration(h.Cfg.AccessTTLLoginHours)*time.Hour)
	if err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Tokens.Store(ctx, u.ID, refresh.Raw, refresh.Exp); err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, err
	}
	return access, refresh, nil
}

// Register handles POST /api/register: create the user and log them
// in immediately, returning both tokens alongside the profile.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	for _, f := range []struct{ name, val string }{
		{"email", req.Email},
		{"password", req.Password},
		{"first_name", req.FirstName},
		{"last_name", req.LastName},
	} {
		if strings.TrimSpace(f.val) == "" {
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
		return serverError(c, "Registration failed")
	}
	u.ID = uid
	u.Email = strings.ToLower(strings.TrimSpace(req.Email))

	access, refresh, err := h.issuePair(c, u)
	if err != nil {
		return serverError(c, "Failed to generate token")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success":       true,
		"message":       "Registration successful",
		"access_token":  access.Token,
		"refresh_token": refresh.Raw,
		"user":          u.Public(),
	})
}

// Login handles POST /api/login.  Unknown email and wrong password
// produce the same generic 401 so account existence cannot be probed.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return fail(c, http.StatusUnauthorized, "Invalid email or password")
		}
		return serverError(c, "Login failed")
	}
	if !utils.VerifyPassword(u.Password, req.Password) {
		return fail(c, http.StatusUnauthorized, "Invalid email or password")
	}

	access, refresh, err := h.issuePair(c, u)
	if err != nil {
		return serverError(c, "Failed to generate token")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":       true,
		"message":       "Login successful",
		"access_token":  access.Token,
		"refresh_token": refresh.Raw,
		"user":          u.Public(),
	})
}

// Refresh handles POST /api/refresh: exchange a live refresh token
// for a short-lived access token.  The refresh token is NOT rotated;
// it stays valid until its own expiry or an explicit logout.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return badRequest(c, "Refresh token is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	tok, err := h.Tokens.GetByRefresh(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil || !tok.Valid(time.Now().UTC()) {
		return fail(c, http.StatusUnauthorized, "Invalid or expired refresh token")
	}

	u, err := h.Users.GetByID(ctx, tok.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "User not found")
		}
		return serverError(c, "Token refresh failed")
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret,
		utils.UserData{ID: u.ID, Email: u.Email, Role: u.Role},
		time.Duration(h.Cfg.AccessTTLRefreshMin)*time.Minute)
	if err != nil {
		return serverError(c, "Failed to generate token")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"message":      "Token refreshed",
		"access_token": access.Token,
	})
}

// Logout handles POST /api/logout: revoke the given refresh token.
// Revoking a token that does not exist still reports success; the
// caller's session is gone either way.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return badRequest(c, "Refresh token is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Tokens.Revoke(ctx, strings.TrimSpace(req.RefreshToken)); err != nil {
		return serverError(c, "Logout failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Logout successful"})
}

// LogoutAll handles POST /api/logout-all: revoke every refresh token
// the authenticated user holds, closing all sessions across devices.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	uid := authUserID(c)
	if uid == 0 {
		return fail(c, http.StatusUnauthorized, "Authorization token required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
		return serverError(c, "Logout failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "All sessions closed successfully"})
}

// Me handles GET /api/me: return the authenticated user's profile,
// re-read from the store so the response reflects current data rather
// than token claims.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, authUserID(c))
	if err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "User not found")
		}
		return serverError(c, "Failed to load user")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": u.Public()})
}
