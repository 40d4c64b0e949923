package domain

import "time"

// DefaultHolidayName is used when a holiday is added without a name.
const DefaultHolidayName = "Special holiday"

// Holiday is a non-business calendar date.
type Holiday struct {
	Date time.Time // midnight in the business timezone
	Name string
}

// DateKey formats a date as YYYY-MM-DD, the storage key for holidays.
func DateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}
