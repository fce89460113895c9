package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenwork/greenwork-api/internal/booking"
	"github.com/greenwork/greenwork-api/internal/model"
	"github.com/greenwork/greenwork-api/internal/queue"
	"github.com/greenwork/greenwork-api/internal/repository"
)

// ReservationHandler implements the /api/reservations endpoints.
// Format validation runs here, before the store's conflict check, so
// malformed input is always a 400 and never reaches the lock.
type ReservationHandler struct {
	Reservations ReservationStore
	Users        UserStore
	Rooms        RoomStore
	Events       EventPublisher // nil disables events
}

func NewReservationHandler(reservations ReservationStore, users UserStore, rooms RoomStore, events EventPublisher) *ReservationHandler {
	return &ReservationHandler{Reservations: reservations, Users: users, Rooms: rooms, Events: events}
}

// publish emits a reservation event without blocking the response.
// Broker failures are the publisher's problem to log; a reservation
// must never fail because RabbitMQ is down.
func (h *ReservationHandler) publish(eventType string, res model.Reservation) {
	if h.Events == nil {
		return
	}
	ev := queue.ReservationEvent{
		Type:          eventType,
		ReservationID: res.ID,
		UserID:        res.UserID,
		RoomID:        res.RoomID,
		Date:          res.Date,
		StartTime:     res.StartTime,
		EndTime:       res.EndTime,
		Status:        res.Status,
		TotalPrice:    res.TotalPrice,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.Events.Publish(ctx, ev)
	}()
}

// List handles GET /api/reservations.
func (h *ReservationHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	reservations, err := h.Reservations.List(ctx)
	if err != nil {
		return serverError(c, "Failed to load reservations")
	}
	return c.JSON(http.StatusOK, reservations)
}

// Get handles GET /api/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "Reservation not found")
		}
		return serverError(c, "Failed to load reservation")
	}
	return c.JSON(http.StatusOK, res)
}

// ListByUser handles GET /api/users/:id/reservations.
func (h *ReservationHandler) ListByUser(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	reservations, err := h.Reservations.ListByUser(ctx, id)
	if err != nil {
		return serverError(c, "Failed to load reservations")
	}
	return c.JSON(http.StatusOK, reservations)
}

// ListByRoom handles GET /api/rooms/:id/reservations.
func (h *ReservationHandler) ListByRoom(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	reservations, err := h.Reservations.ListByRoom(ctx, id)
	if err != nil {
		return serverError(c, "Failed to load reservations")
	}
	return c.JSON(http.StatusOK, reservations)
}

type reservationCreateReq struct {
	UserID         uint64   `json:"user_id"`
	RoomID         uint64   `json:"room_id"`
	Date           string   `json:"date"`
	StartTime      string   `json:"start_time"`
	EndTime        string   `json:"end_time"`
	Status         string   `json:"status"`
	TotalPrice     *float64 `json:"total_price"`
	PaymentStatus  *string  `json:"payment_status"`
	PaymentMethod  *string  `json:"payment_method"`
	CardLastDigits *string  `json:"card_last_digits"`
}

// Create handles POST /api/reservations.  Validation order: required
// fields, referenced user and room exist, formats, start before end;
// only then does the conflict-checked insert run.  A conflict is a
// 409 listing the occupied windows.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req reservationCreateReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.UserID == 0 {
		return badRequest(c, "The field 'user_id' is required")
	}
	if req.RoomID == 0 {
		return badRequest(c, "The field 'room_id' is required")
	}
	for _, f := range []struct{ name, val string }{
		{"date", req.Date},
		{"start_time", req.StartTime},
		{"end_time", req.EndTime},
	} {
		if f.val == "" {
			return badRequest(c, "The field '"+f.name+"' is required")
		}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, req.UserID); err != nil {
		if err == sql.ErrNoRows {
			return badRequest(c, "The given user does not exist")
		}
		return serverError(c, "Failed to create reservation")
	}
	if _, err := h.Rooms.GetByID(ctx, req.RoomID); err != nil {
		if err == sql.ErrNoRows {
			return badRequest(c, "The given room does not exist")
		}
		return serverError(c, "Failed to create reservation")
	}

	if !booking.ValidDate(req.Date) {
		return badRequest(c, "Invalid date format. Use YYYY-MM-DD")
	}
	if !booking.ValidClock(req.StartTime) || !booking.ValidClock(req.EndTime) {
		return badRequest(c, "Invalid time format. Use HH:MM:SS")
	}
	if req.StartTime >= req.EndTime {
		return badRequest(c, "Start time must be before end time")
	}

	status := req.Status
	if status == "" {
		status = model.ReservationStatusConfirmed
	}
	res := model.Reservation{
		UserID:         req.UserID,
		RoomID:         req.RoomID,
		Date:           req.Date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Status:         status,
		TotalPrice:     req.TotalPrice,
		PaymentStatus:  req.PaymentStatus,
		PaymentMethod:  req.PaymentMethod,
		CardLastDigits: req.CardLastDigits,
	}
	if err := h.Reservations.CreateChecked(ctx, &res); err != nil {
		if conflict, ok := err.(*repository.TimeConflictError); ok {
			return fail(c, http.StatusConflict,
				"Room already reserved for the selected time. Occupied slots: "+conflict.OccupiedList())
		}
		return serverError(c, "Failed to create reservation")
	}

	h.publish(queue.EventReservationConfirmed, res)
	return c.JSON(http.StatusCreated, echo.Map{
		"success":     true,
		"message":     "Reservation created successfully",
		"reservation": res,
	})
}

type reservationUpdateReq struct {
	Date           *string  `json:"date"`
	StartTime      *string  `json:"start_time"`
	EndTime        *string  `json:"end_time"`
	Status         *string  `json:"status"`
	TotalPrice     *float64 `json:"total_price"`
	PaymentStatus  *string  `json:"payment_status"`
	PaymentMethod  *string  `json:"payment_method"`
	CardLastDigits *string  `json:"card_last_digits"`
}

// Update handles PUT /api/reservations/:id.  Absent fields keep
// their stored values; the merged window is re-validated and, when
// the window moved, re-checked for conflicts excluding the
// reservation itself.  The room of a reservation cannot change.
func (h *ReservationHandler) Update(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	existing, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "Reservation not found")
		}
		return serverError(c, "Failed to load reservation")
	}

	var req reservationUpdateReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Date != nil && !booking.ValidDate(*req.Date) {
		return badRequest(c, "Invalid date format. Use YYYY-MM-DD")
	}
	if req.StartTime != nil && !booking.ValidClock(*req.StartTime) {
		return badRequest(c, "Invalid start time format. Use HH:MM:SS")
	}
	if req.EndTime != nil && !booking.ValidClock(*req.EndTime) {
		return badRequest(c, "Invalid end time format. Use HH:MM:SS")
	}

	patch := booking.Patch{
		Date:           req.Date,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		Status:         req.Status,
		TotalPrice:     req.TotalPrice,
		PaymentStatus:  req.PaymentStatus,
		PaymentMethod:  req.PaymentMethod,
		CardLastDigits: req.CardLastDigits,
	}
	merged := patch.Apply(existing)
	merged.Room = nil
	if merged.StartTime >= merged.EndTime {
		return badRequest(c, "Start time must be before end time")
	}

	if err := h.Reservations.UpdateChecked(ctx, merged, patch.WindowChanged()); err != nil {
		if conflict, ok := err.(*repository.TimeConflictError); ok {
			return fail(c, http.StatusConflict,
				"Room already reserved for the selected time. Occupied slots: "+conflict.OccupiedList())
		}
		return serverError(c, "Failed to update reservation")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Reservation updated successfully"})
}

// Cancel handles PUT /api/reservations/:id/cancel.  Cancelling frees
// the slot for rebooking; no conflict check runs.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	existing, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "Reservation not found")
		}
		return serverError(c, "Failed to load reservation")
	}

	if err := h.Reservations.Cancel(ctx, id); err != nil {
		return serverError(c, "Failed to cancel reservation")
	}

	existing.Status = model.ReservationStatusCancelled
	h.publish(queue.EventReservationCancelled, existing)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Reservation cancelled successfully"})
}

// Delete handles DELETE /api/reservations/:id: a hard row delete, as
// opposed to Cancel which preserves the record.
func (h *ReservationHandler) Delete(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Reservations.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "Reservation not found")
		}
		return serverError(c, "Failed to delete reservation")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Reservation deleted successfully"})
}
