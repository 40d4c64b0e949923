package domain

import "time"

// NextFire returns the next UTC instant strictly after nowUTC at which
// the slot's derived UTC time occurs. Weekday filtering is left to the
// calendar so that holidays and weekends share one decision point.
func NextFire(nowUTC time.Time, s Slot) time.Time {
	nowUTC = nowUTC.UTC()
	next := time.Date(nowUTC.Year(), nowUTC.Month(), nowUTC.Day(), s.UTCHour, s.UTCMinute, 0, 0, time.UTC)
	if !next.After(nowUTC) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// IsWeekend reports whether t falls on Saturday or Sunday in its own location.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DateOnly truncates t to midnight in loc.
func DateOnly(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}
