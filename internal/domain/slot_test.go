package domain

import (
	"errors"
	"testing"
)

func TestNewSlotTable_BangkokOffset(t *testing.T) {
	st, err := NewSlotTable(7)
	if err != nil {
		t.Fatalf("new table: %v", err)
	}

	want := map[string]string{
		"07:25-morning":   "25 0 * * 1-5",
		"08:25-morning":   "25 1 * * 1-5",
		"09:25-morning":   "25 2 * * 1-5",
		"15:30-afternoon": "30 8 * * 1-5",
		"16:30-afternoon": "30 9 * * 1-5",
		"17:30-evening":   "30 10 * * 1-5",
	}
	slots := st.Slots()
	if len(slots) != len(want) {
		t.Fatalf("want %d slots, got %d", len(want), len(slots))
	}
	for _, s := range slots {
		if got := s.Cron(); got != want[s.Key()] {
			t.Fatalf("%s: want cron %q, got %q", s.Key(), want[s.Key()], got)
		}
	}
}

func TestNewSlotTable_WrapsAroundMidnight(t *testing.T) {
	st, err := NewSlotTable(10)
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	s, _ := st.First(SlotMorning)
	if s.UTCHour != 21 {
		t.Fatalf("want 21 UTC for 07:25 at +10, got %d", s.UTCHour)
	}
}

func TestNewSlotTable_RejectsOffset(t *testing.T) {
	if _, err := NewSlotTable(20); err == nil {
		t.Fatalf("want error for offset 20")
	}
}

func TestSlotTable_Lookup(t *testing.T) {
	st, _ := NewSlotTable(7)

	s, err := st.Lookup("morning", "07:25")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if s.Type != SlotMorning || s.Hour != 7 || s.Minute != 25 {
		t.Fatalf("unexpected slot %+v", s)
	}

	cases := []struct {
		typ, clock string
		want       error
	}{
		{"noon", "07:25", ErrInvalidSlotType},
		{"morning", "07:26", ErrInvalidSlotTime},
		{"evening", "07:25", ErrSlotMismatch},
		{"", "", ErrInvalidSlotType},
	}
	for _, c := range cases {
		if _, err := st.Lookup(c.typ, c.clock); !errors.Is(err, c.want) {
			t.Fatalf("%s/%s: want %v, got %v", c.typ, c.clock, c.want, err)
		}
	}
}

func TestSlotTable_TimesByType(t *testing.T) {
	st, _ := NewSlotTable(7)
	m := st.TimesByType()
	if len(m[SlotMorning]) != 3 || len(m[SlotAfternoon]) != 2 || len(m[SlotEvening]) != 1 {
		t.Fatalf("unexpected grouping %v", m)
	}
	if got := len(st.AllowedTimes()); got != 6 {
		t.Fatalf("want 6 allowed times, got %d", got)
	}
}
