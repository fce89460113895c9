package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/greenwork/greenwork-api/internal/model"
)

func TestUserDeleteRevokesTokens(t *testing.T) {
	users := newStubUsers()
	u := users.add(model.User{Email: "bob@example.com", FirstName: "Bob", Role: model.RoleUser}, "secret123")
	other := users.add(model.User{Email: "eve@example.com", FirstName: "Eve", Role: model.RoleUser}, "secret123")

	tokens := newStubTokens()
	exp := time.Now().Add(time.Hour)
	if err := tokens.Store(context.Background(), u.ID, "token-bob-1", exp); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := tokens.Store(context.Background(), u.ID, "token-bob-2", exp); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := tokens.Store(context.Background(), other.ID, "token-eve", exp); err != nil {
		t.Fatalf("Store: %v", err)
	}

	h := NewUserHandler(testConfig(), users, tokens)

	c, rec := newJSONContext(http.MethodDelete, "/api/users/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if _, err := users.GetByID(context.Background(), u.ID); err == nil {
		t.Errorf("user row must be gone after delete")
	}
	if n := tokens.activeFor(u.ID); n != 0 {
		t.Errorf("deleted user still holds %d active tokens", n)
	}
	if n := tokens.activeFor(other.ID); n != 1 {
		t.Errorf("unrelated user's tokens touched, %d active left", n)
	}

	// Deleting an unknown user must not revoke anything.
	c, rec = newJSONContext(http.MethodDelete, "/api/users/99", "")
	c.SetParamNames("id")
	c.SetParamValues("99")
	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id status = %d, want 404", rec.Code)
	}
	if n := tokens.activeFor(other.ID); n != 1 {
		t.Errorf("404 delete revoked tokens, %d active left", n)
	}
}
