package domain

import (
	"errors"
	"fmt"
	"time"
)

// SlotType is the kind of reminder a slot sends.
type SlotType string

const (
	SlotMorning   SlotType = "morning"
	SlotAfternoon SlotType = "afternoon"
	SlotEvening   SlotType = "evening"
)

var (
	ErrInvalidSlotType = errors.New("invalid slot type")
	ErrInvalidSlotTime = errors.New("invalid slot time")
	ErrSlotMismatch    = errors.New("time does not belong to slot type")
)

// ParseSlotType validates s against the known slot types.
func ParseSlotType(s string) (SlotType, error) {
	switch t := SlotType(s); t {
	case SlotMorning, SlotAfternoon, SlotEvening:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSlotType, s)
}

// Slot is one fixed daily reminder time in the business timezone,
// together with its derived UTC firing time.
type Slot struct {
	Type   SlotType
	Hour   int // local business time
	Minute int

	UTCHour   int
	UTCMinute int
}

// Clock returns the local wall-clock time as HH:MM.
func (s Slot) Clock() string {
	return FormatMinutes(s.Hour*60 + s.Minute)
}

// Key identifies the slot in the execution record.
func (s Slot) Key() string {
	return s.Clock() + "-" + string(s.Type)
}

// Cron returns the weekday cron expression for the slot in UTC.
func (s Slot) Cron() string {
	return fmt.Sprintf("%d %d * * 1-5", s.UTCMinute, s.UTCHour)
}

// slotTable is the single source of truth for reminder times.
var slotTable = []struct {
	t            SlotType
	hour, minute int
}{
	{SlotMorning, 7, 25},
	{SlotMorning, 8, 25},
	{SlotMorning, 9, 25},
	{SlotAfternoon, 15, 30},
	{SlotAfternoon, 16, 30},
	{SlotEvening, 17, 30},
}

// SlotTable is the compiled slot list for a fixed UTC offset.
type SlotTable struct {
	offsetHours int
	slots       []Slot
}

// NewSlotTable derives UTC firing times from the local slot table and
// checks that every derived time maps back to the same wall-clock instant.
func NewSlotTable(offsetHours int) (*SlotTable, error) {
	if offsetHours < -12 || offsetHours > 14 {
		return nil, fmt.Errorf("utc offset out of range: %d", offsetHours)
	}
	slots := make([]Slot, 0, len(slotTable))
	for _, e := range slotTable {
		slots = append(slots, Slot{
			Type:      e.t,
			Hour:      e.hour,
			Minute:    e.minute,
			UTCHour:   (e.hour - offsetHours + 24) % 24,
			UTCMinute: e.minute,
		})
	}
	st := &SlotTable{offsetHours: offsetHours, slots: slots}
	if err := st.Check(); err != nil {
		return nil, err
	}
	return st, nil
}

// Check verifies that each slot's UTC time shifted by the offset lands
// on its local time, and that its clock string parses back to it.
func (st *SlotTable) Check() error {
	zone := time.FixedZone("business", st.offsetHours*3600)
	base := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	for _, s := range st.slots {
		fired := base.Add(time.Duration(s.UTCHour)*time.Hour + time.Duration(s.UTCMinute)*time.Minute).In(zone)
		if fired.Hour() != s.Hour || fired.Minute() != s.Minute {
			return fmt.Errorf("slot %s: cron %q fires at %s local", s.Key(), s.Cron(), fired.Format("15:04"))
		}
		m, err := ParseClock(s.Clock())
		if err != nil || m != s.Hour*60+s.Minute {
			return fmt.Errorf("slot %s: clock %q does not round-trip", s.Key(), s.Clock())
		}
	}
	return nil
}

// OffsetHours returns the fixed offset the table was compiled for.
func (st *SlotTable) OffsetHours() int { return st.offsetHours }

// Slots returns a copy of all slots in table order.
func (st *SlotTable) Slots() []Slot {
	out := make([]Slot, len(st.slots))
	copy(out, st.slots)
	return out
}

// AllowedTimes lists the accepted external trigger times.
func (st *SlotTable) AllowedTimes() []string {
	out := make([]string, 0, len(st.slots))
	for _, s := range st.slots {
		out = append(out, s.Clock())
	}
	return out
}

// TimesByType groups clock strings by slot type.
func (st *SlotTable) TimesByType() map[SlotType][]string {
	out := make(map[SlotType][]string)
	for _, s := range st.slots {
		out[s.Type] = append(out[s.Type], s.Clock())
	}
	return out
}

// Lookup resolves a (type, time) pair against the allow-list.
func (st *SlotTable) Lookup(slotType, clock string) (Slot, error) {
	t, err := ParseSlotType(slotType)
	if err != nil {
		return Slot{}, err
	}
	var known bool
	for _, s := range st.slots {
		if s.Clock() != clock {
			continue
		}
		known = true
		if s.Type == t {
			return s, nil
		}
	}
	if !known {
		return Slot{}, fmt.Errorf("%w: %q", ErrInvalidSlotTime, clock)
	}
	return Slot{}, fmt.Errorf("%w: %s at %s", ErrSlotMismatch, t, clock)
}

// First returns the first slot of the given type, used for manual sends.
func (st *SlotTable) First(t SlotType) (Slot, bool) {
	for _, s := range st.slots {
		if s.Type == t {
			return s, true
		}
	}
	return Slot{}, false
}
