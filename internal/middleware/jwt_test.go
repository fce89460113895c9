package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenwork/greenwork-api/internal/model"
	"github.com/greenwork/greenwork-api/internal/utils"
)

const testSecret = "unit-test-secret"

// stubUserFinder serves a fixed set of users by id.
type stubUserFinder struct {
	users map[uint64]model.User
}

func (s *stubUserFinder) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, sql.ErrNoRows
	}
	return u, nil
}

func authRequest(t *testing.T, mw echo.MiddlewareFunc, authorization string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec, c
}

func TestJWTAuthValidToken(t *testing.T) {
	finder := &stubUserFinder{users: map[uint64]model.User{
		7: {ID: 7, Email: "ana@example.com", Role: model.RoleUser},
	}}
	tok, err := utils.NewAccessToken(testSecret, utils.UserData{ID: 7, Email: "ana@example.com", Role: model.RoleUser}, time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	rec, c := authRequest(t, JWTAuth(testSecret, finder), "Bearer "+tok.Token)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got, _ := c.Get(CtxUserID).(uint64); got != 7 {
		t.Errorf("user_id in context = %v, want 7", c.Get(CtxUserID))
	}
	if got, _ := c.Get(CtxEmail).(string); got != "ana@example.com" {
		t.Errorf("email in context = %q", got)
	}
	if got, _ := c.Get(CtxRole).(string); got != model.RoleUser {
		t.Errorf("role in context = %q", got)
	}
	if _, ok := c.Get(CtxClaims).(*utils.AccessClaims); !ok {
		t.Errorf("claims missing from context")
	}
}

func TestJWTAuthRejections(t *testing.T) {
	finder := &stubUserFinder{users: map[uint64]model.User{
		7: {ID: 7, Email: "ana@example.com", Role: model.RoleUser},
	}}
	mw := JWTAuth(testSecret, finder)

	expired, err := utils.NewAccessToken(testSecret, utils.UserData{ID: 7, Email: "ana@example.com", Role: model.RoleUser}, -time.Minute)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	wrongSecret, err := utils.NewAccessToken("other-secret", utils.UserData{ID: 7, Email: "ana@example.com", Role: model.RoleUser}, time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	deletedUser, err := utils.NewAccessToken(testSecret, utils.UserData{ID: 42, Email: "gone@example.com", Role: model.RoleUser}, time.Hour)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	cases := []struct {
		name string
		auth string
	}{
		{"missing header", ""},
		{"no bearer prefix", "Basic abc123"},
		{"garbage token", "Bearer not-a-jwt"},
		{"expired token", "Bearer " + expired.Token},
		{"wrong secret", "Bearer " + wrongSecret.Token},
		{"deleted user", "Bearer " + deletedUser.Token},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, _ := authRequest(t, mw, tc.auth)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			// Every rejection uses the same body so the failure
			// reason cannot be probed from outside.
			want := `"Authorization token required"`
			if body := rec.Body.String(); !strings.Contains(body, want) {
				t.Errorf("body = %s, want it to contain %s", body, want)
			}
		})
	}
}
