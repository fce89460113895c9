package booking

import "github.com/greenwork/greenwork-api/internal/model"

// Patch is the caller-supplied portion of a reservation update.  Nil
// fields keep the value already persisted; the merged result is what
// gets validated and conflict-checked.
type Patch struct {
	Date           *string
	StartTime      *string
	EndTime        *string
	Status         *string
	TotalPrice     *float64
	PaymentStatus  *string
	PaymentMethod  *string
	CardLastDigits *string
}

// WindowChanged reports whether the patch touches the date or either
// clock bound.  Only then does the update path re-run the conflict
// check; pure status or payment edits never do.
func (p Patch) WindowChanged() bool {
	return p.Date != nil || p.StartTime != nil || p.EndTime != nil
}

// Apply merges the patch over an existing reservation and returns the
// result.  The input is not mutated.
func (p Patch) Apply(r model.Reservation) model.Reservation {
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.StartTime != nil {
		r.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		r.EndTime = *p.EndTime
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.TotalPrice != nil {
		r.TotalPrice = p.TotalPrice
	}
	if p.PaymentStatus != nil {
		r.PaymentStatus = p.PaymentStatus
	}
	if p.PaymentMethod != nil {
		r.PaymentMethod = p.PaymentMethod
	}
	if p.CardLastDigits != nil {
		r.CardLastDigits = p.CardLastDigits
	}
	return r
}
