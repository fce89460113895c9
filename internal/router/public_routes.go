package router

import (
	"github.com/labstack/echo/v4"

	"github.com/greenwork/greenwork-api/internal/handler"
)

// RegisterPublic registers the booking catalogue: rooms, reservations
// and images.  These routes are unauthenticated; clients browse rooms
// and book without a session.  cache is the Redis response cache
// applied to the read-only listings (a pass-through when Redis is
// down).
func RegisterPublic(e *echo.Echo, rooms *handler.RoomHandler, reservations *handler.ReservationHandler, images *handler.ImageHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/api")

	g.GET("/rooms", rooms.List, cache)
	g.GET("/rooms/:id", rooms.Get, cache)
	g.GET("/companies/:id/rooms", rooms.ListByCompany, cache)
	g.POST("/rooms", rooms.Create)
	g.PUT("/rooms/:id", rooms.Update)
	g.DELETE("/rooms/:id", rooms.Delete)

	g.GET("/reservations", reservations.List)
	g.GET("/reservations/:id", reservations.Get)
	g.GET("/users/:id/reservations", reservations.ListByUser)
	g.GET("/rooms/:id/reservations", reservations.ListByRoom)
	g.POST("/reservations", reservations.Create)
	g.PUT("/reservations/:id", reservations.Update)
	g.PUT("/reservations/:id/cancel", reservations.Cancel)
	g.DELETE("/reservations/:id", reservations.Delete)

	g.GET("/images", images.List, cache)
	g.GET("/images/:name", images.Get)
	g.GET("/images/data/:id", images.Data)
	g.POST("/images", images.Upload)
	g.PUT("/images/:id", images.Update)
	g.DELETE("/images/:id", images.Delete)
}
