// Package handler implements the HTTP endpoints of the booking API.
// Handlers depend on narrow store interfaces rather than the concrete
// repositories so tests can run against in-memory stubs.  Failure
// responses use the envelope {"error": true, "message": ...} and
// mutating successes use {"success": true, "message": ..., payload};
// plain reads return the record or list directly.
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/greenwork/greenwork-api/internal/middleware"
	"github.com/greenwork/greenwork-api/internal/model"
	"github.com/greenwork/greenwork-api/internal/queue"
	"github.com/greenwork/greenwork-api/internal/repository"
)

// dbTimeout bounds every store call made from a handler.
const dbTimeout = 5 * time.Second

// UserStore is the slice of *repository.UserRepo the handlers use.
type UserStore interface {
	Create(ctx context.Context, u model.User, password string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id uint64, p repository.UserPatch, cost int) error
	UpdatePassword(ctx context.Context, id uint64, current, next string, cost int) error
	Delete(ctx context.Context, id uint64) error
}

// TokenStore persists refresh tokens (*repository.TokenRepo).
type TokenStore interface {
	Store(ctx context.Context, userID uint64, refreshToken string, exp time.Time) error
	GetByRefresh(ctx context.Context, refreshToken string) (model.Token, error)
	Revoke(ctx context.Context, refreshToken string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// CompanyStore is the slice of *repository.CompanyRepo the handlers use.
type CompanyStore interface {
	Create(ctx context.Context, c model.Company) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.Company, error)
	List(ctx context.Context) ([]model.Company, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Company, error)
	Update(ctx context.Context, id uint64, p repository.CompanyPatch) error
	Delete(ctx context.Context, id uint64) error
}

// RoomStore is the slice of *repository.RoomRepo the handlers use.
type RoomStore interface {
	Create(ctx context.Context, rm model.Room) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.Room, error)
	List(ctx context.Context) ([]model.Room, error)
	ListByCompany(ctx context.Context, companyID uint64) ([]model.Room, error)
	Update(ctx context.Context, id uint64, p repository.RoomPatch) error
	Delete(ctx context.Context, id uint64) error
}

// ReservationStore is the slice of *repository.ReservationRepo the
// handlers use.  The Checked methods run the conflict engine inside
// the store's locking transaction.
type ReservationStore interface {
	CreateChecked(ctx context.Context, res *model.Reservation) error
	UpdateChecked(ctx context.Context, merged model.Reservation, recheck bool) error
	Cancel(ctx context.Context, id uint64) error
	Delete(ctx context.Context, id uint64) error
	GetByID(ctx context.Context, id uint64) (model.Reservation, error)
	List(ctx context.Context) ([]model.Reservation, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error)
	ListByRoom(ctx context.Context, roomID uint64) ([]model.Reservation, error)
}

// ImageStore is the slice of *repository.ImageRepo the handlers use.
type ImageStore interface {
	Create(ctx context.Context, name, data string) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.Image, error)
	GetByName(ctx context.Context, name string) (model.Image, error)
	List(ctx context.Context) ([]model.Image, error)
	Update(ctx context.Context, id uint64, p repository.ImagePatch) error
	Delete(ctx context.Context, id uint64) error
}

// EventPublisher emits reservation lifecycle events to the broker.
// A nil publisher disables events.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

// reqCtx derives a bounded context from the request for store calls.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// idParam parses a numeric path parameter.
func idParam(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// authUserID returns the authenticated user's id injected by the JWT
// middleware, or 0 when the request is unauthenticated.
func authUserID(c echo.Context) uint64 {
	uid, _ := c.Get(middleware.CtxUserID).(uint64)
	return uid
}

// fail writes the error envelope shared by every failure response.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"error": true, "message": msg})
}

func badRequest(c echo.Context, msg string) error {
	return fail(c, http.StatusBadRequest, msg)
}

func notFound(c echo.Context, msg string) error {
	return fail(c, http.StatusNotFound, msg)
}

func serverError(c echo.Context, msg string) error {
	return fail(c, http.StatusInternalServerError, msg)
}
