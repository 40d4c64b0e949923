package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/Arnutt-N/time-reminder/internal/domain"
)

// maxEventDays bounds how many days one all-day event may cover.
const maxEventDays = 31

// ParseICS reads VEVENTs as holidays. Recurring events are expanded from
// the start of last year to the end of next year relative to now.
func ParseICS(r io.Reader, loc *time.Location, now time.Time) (*List, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parse ics: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	from := time.Date(now.Year()-1, time.January, 1, 0, 0, 0, 0, loc)
	to := time.Date(now.Year()+2, time.January, 1, 0, 0, 0, 0, loc)

	var hs []domain.Holiday
	for _, e := range cal.Events() {
		start, ok := parseEventDate(e.GetProperty(ical.ComponentPropertyDtStart), loc)
		if !ok {
			continue
		}
		days := 1
		if end, ok := parseEventDate(e.GetProperty(ical.ComponentPropertyDtEnd), loc); ok && end.After(start) {
			days = int(end.Sub(start).Hours()/24 + 0.5)
			if days < 1 {
				days = 1
			}
			if days > maxEventDays {
				days = maxEventDays
			}
		}

		name := ""
		if p := e.GetProperty(ical.ComponentPropertySummary); p != nil {
			name = strings.TrimSpace(p.Value)
		}

		starts := []time.Time{start}
		if p := e.GetProperty(ical.ComponentPropertyRrule); p != nil && strings.TrimSpace(p.Value) != "" {
			starts = expandRecurrence(p.Value, start, from, to)
		}
		for _, s := range starts {
			for i := 0; i < days; i++ {
				hs = append(hs, domain.Holiday{Date: domain.DateOnly(s.AddDate(0, 0, i), loc), Name: name})
			}
		}
	}
	return NewList(hs), nil
}

func expandRecurrence(ruleText string, dtStart, from, to time.Time) []time.Time {
	opts, err := rrule.StrToROption(strings.TrimSpace(ruleText))
	if err != nil {
		return []time.Time{dtStart}
	}
	opts.Dtstart = dtStart

	r, err := rrule.NewRRule(*opts)
	if err != nil {
		return []time.Time{dtStart}
	}
	return r.Between(from, to, true)
}

func parseEventDate(prop *ical.IANAProperty, loc *time.Location) (time.Time, bool) {
	if prop == nil {
		return time.Time{}, false
	}
	raw := strings.TrimSpace(prop.Value)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("20060102T150405Z", raw); err == nil {
		return domain.DateOnly(t, loc), true
	}
	for _, layout := range []string{"20060102T150405", "20060102"} {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return domain.DateOnly(t, loc), true
		}
	}
	return time.Time{}, false
}
