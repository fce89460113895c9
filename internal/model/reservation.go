package model

// Reservation books a room for a time slot on a calendar day.  Date
// is stored as "YYYY-MM-DD" and the two clock fields as "HH:MM:SS";
// the fixed zero-padded formats make lexicographic comparison of
// clock strings equivalent to chronological comparison.
//
// Invariants enforced by the repository:
//  - StartTime < EndTime.
//  - For a given (RoomID, Date), no two reservations whose status is
//    not "cancelled" may have overlapping [StartTime, EndTime) windows.
//
// Status transitions: confirmed -> cancelled is terminal; a confirmed
// reservation may have its window mutated, which re-runs the conflict
// check.  Payment fields are stored verbatim; no payment processing
// happens in this service.
type Reservation struct {
	ID             uint64   `json:"id"`               // reservations.id
	UserID         uint64   `json:"user_id"`          // reservations.user_id
	RoomID         uint64   `json:"room_id"`          // reservations.room_id
	Date           string   `json:"date"`             // reservations.date (YYYY-MM-DD)
	StartTime      string   `json:"start_time"`       // reservations.start_time (HH:MM:SS)
	EndTime        string   `json:"end_time"`         // reservations.end_time (HH:MM:SS)
	Status         string   `json:"status"`           // reservations.status
	TotalPrice     *float64 `json:"total_price"`      // reservations.total_price (nullable)
	PaymentStatus  *string  `json:"payment_status"`   // reservations.payment_status (nullable)
	PaymentMethod  *string  `json:"payment_method"`   // reservations.payment_method (nullable)
	CardLastDigits *string  `json:"card_last_digits"` // reservations.card_last_digits (nullable)

	// Room carries the joined room row when the query asked for it
	// (list/detail endpoints); nil otherwise.
	Room *Room `json:"room,omitempty"`
}

// Reservation statuses with special meaning.  Other values are
// accepted and stored as-is.
const (
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCancelled = "cancelled"
)
