package handler

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/greenwork/greenwork-api/internal/model"
	"github.com/greenwork/greenwork-api/internal/repository"
)

// RoomHandler implements the /api/rooms endpoints.  The room surface
// is unauthenticated: rooms are the public catalogue clients browse
// before booking.
type RoomHandler struct {
	Rooms     RoomStore
	Companies CompanyStore
}

func NewRoomHandler(rooms RoomStore, companies CompanyStore) *RoomHandler {
	return &RoomHandler{Rooms: rooms, Companies: companies}
}

// List handles GET /api/rooms.
func (h *RoomHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	rooms, err := h.Rooms.List(ctx)
	if err != nil {
		return serverError(c, "Failed to load rooms")
	}
	return c.JSON(http.StatusOK, rooms)
}

// Get handles GET /api/rooms/:id.
func (h *RoomHandler) Get(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "Room not found")
		}
		return serverError(c, "Failed to load room")
	}
	return c.JSON(http.StatusOK, room)
}

// ListByCompany handles GET /api/companies/:id/rooms.
func (h *RoomHandler) ListByCompany(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Companies.GetByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "Company not found")
		}
		return serverError(c, "Failed to load company")
	}
	rooms, err := h.Rooms.ListByCompany(ctx, id)
	if err != nil {
		return serverError(c, "Failed to load rooms")
	}
	return c.JSON(http.StatusOK, rooms)
}

type roomCreateReq struct {
	CompanyID   uint64   `json:"company_id"`
	Name        string   `json:"name"`
	Capacity    uint32   `json:"capacity"`
	Status      string   `json:"status"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
}

// Create handles POST /api/rooms.
func (h *RoomHandler) Create(c echo.Context) error {
	var req roomCreateReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.CompanyID == 0 {
		return badRequest(c, "Field 'company_id' is required")
	}
	if req.Name == "" {
		return badRequest(c, "Field 'name' is required")
	}
	if req.Capacity == 0 {
		return badRequest(c, "Field 'capacity' is required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Companies.GetByID(ctx, req.CompanyID); err != nil {
		if err == sql.ErrNoRows {
			return badRequest(c, "The given company does not exist")
		}
		return serverError(c, "Failed to create room")
	}

	room := model.Room{
		CompanyID:   req.CompanyID,
		Name:        req.Name,
		Capacity:    req.Capacity,
		Status:      req.Status,
		Description: req.Description,
		Price:       req.Price,
	}
	id, err := h.Rooms.Create(ctx, room)
	if err != nil {
		return serverError(c, "Failed to create room")
	}
	room.ID = id
	if room.Status == "" {
		room.Status = model.RoomStatusAvailable
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Room created successfully",
		"room":    room,
	})
}

type roomUpdateReq struct {
	Name        *string  `json:"name"`
	Capacity    *uint32  `json:"capacity"`
	Status      *string  `json:"status"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
}

// Update handles PUT /api/rooms/:id.
func (h *RoomHandler) Update(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid id")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Rooms.GetByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "Room not found")
		}
		return serverError(c, "Failed to load room")
	}

	var req roomUpdateReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	patch := repository.RoomPatch{
		Name:        req.Name,
		Capacity:    req.Capacity,
		Status:      req.Status,
		Description: req.Description,
		Price:       req.Price,
	}
	if err := h.Rooms.Update(ctx, id, patch); err != nil {
		return serverError(c, "Failed to update room")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Room updated successfully"})
}

// Delete handles DELETE /api/rooms/:id.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return badRequest(c, "Invalid id")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Rooms.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return notFound(c, "Room not found")
		}
		return serverError(c, "Failed to delete room")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Room deleted successfully"})
}
