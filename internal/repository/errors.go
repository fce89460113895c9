// Package repository defines error values shared across the
// repositories.  Handlers translate these into HTTP statuses:
// ErrForbidden -> 403, ErrEmailExists and TimeConflictError -> 409,
// sql.ErrNoRows -> 404.
package repository

import (
	"errors"
	"strings"

	"github.com/greenwork/greenwork-api/internal/booking"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource owned by someone else.
var ErrForbidden = errors.New("forbidden")

// ErrEmailExists is returned when inserting or updating a row would
// violate an email uniqueness constraint (users and companies).
var ErrEmailExists = errors.New("email already exists")

// TimeConflictError reports that a candidate reservation window
// collides with existing non-cancelled reservations on the same room
// and date.  Occupied lists the colliding windows so the response can
// tell the client which slots are taken.
type TimeConflictError struct {
	Occupied []booking.Window
}

func (e *TimeConflictError) Error() string {
	parts := make([]string, len(e.Occupied))
	for i, w := range e.Occupied {
		parts[i] = w.String()
	}
	return "room already reserved for: " + strings.Join(parts, ", ")
}

// OccupiedList renders the occupied windows for a client-facing
// message, e.g. "09:00:00 - 10:00:00, 14:00:00 - 15:00:00".
func (e *TimeConflictError) OccupiedList() string {
	parts := make([]string, len(e.Occupied))
	for i, w := range e.Occupied {
		parts[i] = w.String()
	}
	return strings.Join(parts, ", ")
}
