package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrEmptyDate   = errors.New("empty date")
	ErrInvalidDate = errors.New("invalid date")
)

// buddhistEraOffset converts Buddhist-era years to Common Era.
const buddhistEraOffset = 543

var dmyRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)

// ParseHolidayDate accepts YYYY-MM-DD or D/M/YYYY. Years of 2400 and above
// in the slash form are treated as Buddhist era.
func ParseHolidayDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrEmptyDate
	}
	if loc == nil {
		loc = time.UTC
	}
	if m := dmyRe.FindStringSubmatch(s); m != nil {
		d, _ := strconv.Atoi(m[1])
		mon, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		if y >= 2400 {
			y -= buddhistEraOffset
		}
		t := time.Date(y, time.Month(mon), d, 0, 0, 0, 0, loc)
		// time.Date normalizes overflow; reject it.
		if t.Day() != d || int(t.Month()) != mon {
			return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDate, s)
		}
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatThaiDate renders a date as DD/MM/YYYY in the Buddhist era.
func FormatThaiDate(t time.Time) string {
	return fmt.Sprintf("%02d/%02d/%d", t.Day(), int(t.Month()), t.Year()+buddhistEraOffset)
}

// ParseClock parses HH:MM into minutes since midnight.
func ParseClock(s string) (int, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[1]) != 2 {
		return 0, errors.New("expected HH:MM")
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, errors.New("invalid hour")
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, errors.New("invalid minute")
	}
	return h*60 + m, nil
}

// FormatMinutes returns HH:MM for minutes since midnight (00:00..23:59).
func FormatMinutes(mins int) string {
	if mins < 0 {
		mins = 0
	}
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// LoadTZ resolves an IANA location name.
func LoadTZ(tz string) (*time.Location, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return loc, nil
}

// SplitArgs splits a command tail into its first word and the rest.
func SplitArgs(s string) (first, rest string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t\n")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}
