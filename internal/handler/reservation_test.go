package handler

import (
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/greenwork/greenwork-api/internal/model"
)

// reservationFixture wires a reservation handler over stub stores
// with one user and one room pre-seeded.
func reservationFixture() (*ReservationHandler, *stubReservations) {
	users := newStubUsers()
	users.add(model.User{FirstName: "Ana", Email: "ana@example.com", Role: model.RoleUser}, "secret123")
	rooms := newStubRooms()
	_, _ = rooms.Create(nil, model.Room{CompanyID: 1, Name: "Sala Norte", Capacity: 8})
	reservations := newStubReservations()
	return NewReservationHandler(reservations, users, rooms, nil), reservations
}

func createReservation(t *testing.T, h *ReservationHandler, body string) (int, string) {
	t.Helper()
	c, rec := newJSONContext(http.MethodPost, "/api/reservations", body)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return rec.Code, rec.Body.String()
}

func TestReservationCreateConflict(t *testing.T) {
	h, _ := reservationFixture()

	code, body := createReservation(t, h,
		`{"user_id":1,"room_id":1,"date":"2026-09-10","start_time":"09:00:00","end_time":"10:00:00"}`)
	if code != http.StatusCreated {
		t.Fatalf("first booking status = %d: %s", code, body)
	}

	// Overlapping window is rejected and the occupied slot reported.
	code, body = createReservation(t, h,
		`{"user_id":1,"room_id":1,"date":"2026-09-10","start_time":"09:30:00","end_time":"10:30:00"}`)
	if code != http.StatusConflict {
		t.Fatalf("overlap status = %d, want 409: %s", code, body)
	}
	if !strings.Contains(body, "09:00:00 - 10:00:00") {
		t.Errorf("conflict response does not list the occupied window: %s", body)
	}

	// Touching endpoints do not overlap: [09,10) then [10,11).
	code, body = createReservation(t, h,
		`{"user_id":1,"room_id":1,"date":"2026-09-10","start_time":"10:00:00","end_time":"11:00:00"}`)
	if code != http.StatusCreated {
		t.Fatalf("back-to-back booking status = %d: %s", code, body)
	}

	// Same window on another date is free.
	code, body = createReservation(t, h,
		`{"user_id":1,"room_id":1,"date":"2026-09-11","start_time":"09:00:00","end_time":"10:00:00"}`)
	if code != http.StatusCreated {
		t.Fatalf("other-date booking status = %d: %s", code, body)
	}
}

func TestReservationCreateValidation(t *testing.T) {
	h, store := reservationFixture()

	cases := []struct {
		name     string
		body     string
		wantCode int
		wantMsg  string
	}{
		{
			"missing date",
			`{"user_id":1,"room_id":1,"start_time":"09:00:00","end_time":"10:00:00"}`,
			http.StatusBadRequest, "'date' is required",
		},
		{
			"unknown user",
			`{"user_id":99,"room_id":1,"date":"2026-09-10","start_time":"09:00:00","end_time":"10:00:00"}`,
			http.StatusBadRequest, "user does not exist",
		},
		{
			"unknown room",
			`{"user_id":1,"room_id":99,"date":"2026-09-10","start_time":"09:00:00","end_time":"10:00:00"}`,
			http.StatusBadRequest, "room does not exist",
		},
		{
			"bad date format",
			`{"user_id":1,"room_id":1,"date":"10/09/2026","start_time":"09:00:00","end_time":"10:00:00"}`,
			http.StatusBadRequest, "YYYY-MM-DD",
		},
		{
			"bad time format",
			`{"user_id":1,"room_id":1,"date":"2026-09-10","start_time":"9am","end_time":"10:00:00"}`,
			http.StatusBadRequest, "HH:MM:SS",
		},
		{
			"start not before end",
			`{"user_id":1,"room_id":1,"date":"2026-09-10","start_time":"10:00:00","end_time":"10:00:00"}`,
			http.StatusBadRequest, "before end time",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := createReservation(t, h, tc.body)
			if code != tc.wantCode {
				t.Fatalf("status = %d, want %d: %s", code, tc.wantCode, body)
			}
			if !strings.Contains(body, tc.wantMsg) {
				t.Errorf("body = %s, want it to mention %q", body, tc.wantMsg)
			}
		})
	}

	// Invalid input never reaches the conflict-checked insert.
	if store.createCalls != 0 {
		t.Errorf("store saw %d insert attempts from invalid requests, want 0", store.createCalls)
	}
}

func TestReservationCancelThenRebook(t *testing.T) {
	h, _ := reservationFixture()

	code, body := createReservation(t, h,
		`{"user_id":1,"room_id":1,"date":"2026-09-10","start_time":"09:00:00","end_time":"10:00:00"}`)
	if code != http.StatusCreated {
		t.Fatalf("booking status = %d: %s", code, body)
	}

	c, rec := newJSONContext(http.MethodPut, "/api/reservations/1/cancel", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.Cancel(c); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel status = %d: %s", rec.Code, rec.Body.String())
	}

	// The cancelled window no longer blocks the slot.
	code, body = createReservation(t, h,
		`{"user_id":1,"room_id":1,"date":"2026-09-10","start_time":"09:00:00","end_time":"10:00:00"}`)
	if code != http.StatusCreated {
		t.Fatalf("rebooking after cancel status = %d: %s", code, body)
	}
}

func updateReservation(t *testing.T, h *ReservationHandler, id uint64, body string) (int, string) {
	t.Helper()
	c, rec := newJSONContext(http.MethodPut, "/api/reservations/"+strconv.FormatUint(id, 10), body)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatUint(id, 10))
	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	return rec.Code, rec.Body.String()
}

func TestReservationUpdate(t *testing.T) {
	h, store := reservationFixture()

	createReservation(t, h,
		`{"user_id":1,"room_id":1,"date":"2026-09-10","start_time":"09:00:00","end_time":"10:00:00"}`)
	createReservation(t, h,
		`{"user_id":1,"room_id":1,"date":"2026-09-10","start_time":"10:30:00","end_time":"11:30:00"}`)

	// Growing the first window into the second collides.
	code, body := updateReservation(t, h, 1, `{"end_time":"11:00:00"}`)
	if code != http.StatusConflict {
		t.Fatalf("overlapping update status = %d, want 409: %s", code, body)
	}

	// A pure status edit skips the conflict re-check entirely.
	code, body = updateReservation(t, h, 1, `{"status":"confirmed","payment_status":"paid"}`)
	if code != http.StatusOK {
		t.Fatalf("status-only update = %d: %s", code, body)
	}
	if store.lastRecheck {
		t.Errorf("status-only update triggered a conflict re-check")
	}

	// Moving the window somewhere free succeeds and re-checks.
	code, body = updateReservation(t, h, 1, `{"start_time":"07:00:00","end_time":"08:00:00"}`)
	if code != http.StatusOK {
		t.Fatalf("window move status = %d: %s", code, body)
	}
	if !store.lastRecheck {
		t.Errorf("window move did not trigger a conflict re-check")
	}

	// Shrinking within the own old window is no conflict with itself.
	code, body = updateReservation(t, h, 2, `{"end_time":"11:00:00"}`)
	if code != http.StatusOK {
		t.Fatalf("self-shrink status = %d: %s", code, body)
	}

	// Malformed clock is rejected before anything runs.
	code, body = updateReservation(t, h, 2, `{"end_time":"11pm"}`)
	if code != http.StatusBadRequest {
		t.Fatalf("bad clock update status = %d: %s", code, body)
	}

	// Unknown reservation.
	code, _ = updateReservation(t, h, 42, `{"status":"confirmed"}`)
	if code != http.StatusNotFound {
		t.Fatalf("unknown id update status = %d, want 404", code)
	}
}

func TestReservationDelete(t *testing.T) {
	h, _ := reservationFixture()
	createReservation(t, h,
		`{"user_id":1,"room_id":1,"date":"2026-09-10","start_time":"09:00:00","end_time":"10:00:00"}`)

	c, rec := newJSONContext(http.MethodDelete, "/api/reservations/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	c, rec = newJSONContext(http.MethodDelete, "/api/reservations/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}
