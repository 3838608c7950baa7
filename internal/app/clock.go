package app

import "time"

// Clock supplies the current time. Services that bucket by calendar day take
// one so tests can move across midnight.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now in the server's local zone.
func SystemClock() Clock { return systemClock{} }

// StartOfDay is midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
