// Package queue defines the message payloads exchanged over the
// broker and the background consumer that processes them.
package queue

// Event types carried in ReservationEvent.Type.
const (
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationCancelled = "reservation.cancelled"
)

// ReservationEvent is published whenever a reservation is confirmed
// or cancelled.  It carries enough detail for downstream consumers to
// log or notify without querying the primary database.
type ReservationEvent struct {
	Type          string   `json:"type"`
	ReservationID uint64   `json:"reservation_id"`
	UserID        uint64   `json:"user_id"`
	RoomID        uint64   `json:"room_id"`
	Date          string   `json:"date"`
	StartTime     string   `json:"start_time"`
	EndTime       string   `json:"end_time"`
	Status        string   `json:"status"`
	TotalPrice    *float64 `json:"total_price,omitempty"`
	OccurredAt    string   `json:"occurred_at"`
}
