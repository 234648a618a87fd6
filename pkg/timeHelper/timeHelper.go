package timehelper

import "time"

// Clock is the time source used for stamps. Tests replace it with a fixed sequence.
type Clock func() time.Time

// ClockString formats t as the board's "HH:MM" display time in loc.
func ClockString(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("15:04")
}

// Stamp returns a high-resolution stamp suitable for storage keys.
func Stamp(t time.Time) int64 {
	return t.UnixNano()
}
