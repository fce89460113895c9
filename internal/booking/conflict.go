// Package booking holds the reservation conflict rules: date and
// clock format validation and the interval overlap test.  The logic
// is pure so the same checks run identically on the create and the
// update path; the repository layer supplies the persisted windows.
package booking

import (
	"regexp"
	"time"
)

var (
	dateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	clockRe = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`)
)

// ValidDate reports whether s matches YYYY-MM-DD and denotes a real
// calendar date.
func ValidDate(s string) bool {
	if !dateRe.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// ValidClock reports whether s matches HH:MM:SS.  With the fixed
// zero-padded format, plain string comparison of two valid clock
// values orders them chronologically, so no further parsing is done.
func ValidClock(s string) bool {
	return clockRe.MatchString(s)
}

// Window is a half-open time interval [Start, End) on a single day,
// both bounds in HH:MM:SS form.
type Window struct {
	Start string
	End   string
}

// WellFormed reports whether both bounds are valid clock values and
// Start is strictly before End.
func (w Window) WellFormed() bool {
	return ValidClock(w.Start) && ValidClock(w.End) && w.Start < w.End
}

// Overlaps applies the standard half-open interval test: two windows
// collide iff s1 < e2 && e1 > s2.  Touching endpoints (one ends
// exactly when the other starts) do not overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start < o.End && w.End > o.Start
}

// String renders the window the way conflict messages report occupied
// slots, e.g. "09:00:00 - 10:00:00".
func (w Window) String() string {
	return w.Start + " - " + w.End
}

// Conflicts returns the subset of existing windows that collide with
// the candidate, preserving their order.  Callers are expected to
// have already filtered out cancelled reservations: a cancelled slot
// frees the room immediately.
func Conflicts(candidate Window, existing []Window) []Window {
	var out []Window
	for _, w := range existing {
		if candidate.Overlaps(w) {
			out = append(out, w)
		}
	}
	return out
}
