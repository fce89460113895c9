package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/greenwork/greenwork-api/internal/model"
)

func roleRequest(t *testing.T, mw echo.MiddlewareFunc, role interface{}) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != nil {
		c.Set(CtxRole, role)
	}
	h := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestRequireRole(t *testing.T) {
	mw := RequireRole(model.RoleUser, model.RoleAdmin)
	adminOnly := RequireRole(model.RoleAdmin)

	cases := []struct {
		name string
		mw   echo.MiddlewareFunc
		role interface{}
		want int
	}{
		{"user allowed", mw, model.RoleUser, http.StatusOK},
		{"admin allowed", mw, model.RoleAdmin, http.StatusOK},
		{"unknown role", mw, "guest", http.StatusForbidden},
		{"role missing", mw, nil, http.StatusForbidden},
		{"role wrong type", mw, 42, http.StatusForbidden},
		{"user blocked from admin route", adminOnly, model.RoleUser, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := roleRequest(t, tc.mw, tc.role)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestOwnerOrAdmin(t *testing.T) {
	ctx := func(uid interface{}, role string) echo.Context {
		e := echo.New()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		if uid != nil {
			c.Set(CtxUserID, uid)
		}
		c.Set(CtxRole, role)
		return c
	}

	if !OwnerOrAdmin(ctx(uint64(3), model.RoleUser), 3) {
		t.Errorf("owner should be allowed on own resource")
	}
	if OwnerOrAdmin(ctx(uint64(3), model.RoleUser), 4) {
		t.Errorf("user should not be allowed on someone else's resource")
	}
	if !OwnerOrAdmin(ctx(uint64(3), model.RoleAdmin), 4) {
		t.Errorf("admin should be allowed on any resource")
	}
	if OwnerOrAdmin(ctx(nil, model.RoleUser), 0) {
		t.Errorf("missing identity should not be allowed")
	}
}
