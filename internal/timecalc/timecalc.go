package timecalc

import "time"

// UntilNext returns the time remaining until the next wall-clock multiple
// of d, measured from the Unix epoch. The result is in (0, d].
func UntilNext(t time.Time, d time.Duration) time.Duration {
	rem := time.Duration(t.UnixNano()) % d
	return d - rem
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
