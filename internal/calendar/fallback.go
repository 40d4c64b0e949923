package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Arnutt-N/time-reminder/internal/domain"
)

// List is an in-memory holiday set keyed by date.
type List struct {
	byDate map[string]domain.Holiday
}

// NewList builds a List; later entries for the same date win.
func NewList(hs []domain.Holiday) *List {
	l := &List{byDate: make(map[string]domain.Holiday, len(hs))}
	for _, h := range hs {
		if strings.TrimSpace(h.Name) == "" {
			h.Name = domain.DefaultHolidayName
		}
		l.byDate[domain.DateKey(h.Date)] = h
	}
	return l
}

// FindHolidayByDate implements HolidayLookup.
func (l *List) FindHolidayByDate(_ context.Context, date time.Time) (*domain.Holiday, error) {
	h, ok := l.byDate[domain.DateKey(date)]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

// Len returns the number of holidays.
func (l *List) Len() int { return len(l.byDate) }

// Holidays returns all entries ordered by date.
func (l *List) Holidays() []domain.Holiday {
	out := make([]domain.Holiday, 0, len(l.byDate))
	for _, h := range l.byDate {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// holidayDocument is the JSON/YAML file layout. Both the flat
// holidays+holidayDetails form and an entries list are accepted.
type holidayDocument struct {
	Holidays       []string          `json:"holidays" yaml:"holidays"`
	HolidayDetails map[string]string `json:"holidayDetails" yaml:"holidayDetails"`
	Entries        []struct {
		Date string `json:"date" yaml:"date"`
		Name string `json:"name" yaml:"name"`
	} `json:"entries" yaml:"entries"`
}

// LoadFile reads a holiday file by extension: .ics as iCalendar,
// .json as JSON, anything else as YAML.
func LoadFile(path string, loc *time.Location) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ics":
		return ParseICS(bytes.NewReader(data), loc, time.Now())
	case ".json":
		var doc holidayDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decode holidays: %w", err)
		}
		return doc.list(loc)
	}
	return ParseDocument(data, loc)
}

// ParseDocument decodes the YAML holiday layout.
func ParseDocument(data []byte, loc *time.Location) (*List, error) {
	var doc holidayDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode holidays: %w", err)
	}
	return doc.list(loc)
}

func (doc holidayDocument) list(loc *time.Location) (*List, error) {
	var hs []domain.Holiday
	for _, raw := range doc.Holidays {
		d, err := domain.ParseHolidayDate(raw, loc)
		if err != nil {
			return nil, err
		}
		hs = append(hs, domain.Holiday{Date: d, Name: doc.HolidayDetails[raw]})
	}
	// details without a matching holidays entry still count
	for raw, name := range doc.HolidayDetails {
		d, err := domain.ParseHolidayDate(raw, loc)
		if err != nil {
			return nil, err
		}
		hs = append(hs, domain.Holiday{Date: d, Name: name})
	}
	for _, e := range doc.Entries {
		d, err := domain.ParseHolidayDate(e.Date, loc)
		if err != nil {
			return nil, err
		}
		hs = append(hs, domain.Holiday{Date: d, Name: e.Name})
	}
	return NewList(hs), nil
}
