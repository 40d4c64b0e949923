package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseHolidayDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2025-04-13", "2025-04-13"},
		{"13/04/2568", "2025-04-13"},
		{"1/5/2568", "2025-05-01"},
		{"01/05/2025", "2025-05-01"},
	}
	for _, c := range cases {
		got, err := ParseHolidayDate(c.in, time.UTC)
		if err != nil {
			t.Fatalf("%s: %v", c.in, err)
		}
		if DateKey(got) != c.want {
			t.Fatalf("%s: want %s, got %s", c.in, c.want, DateKey(got))
		}
	}
}

func TestParseHolidayDate_Invalid(t *testing.T) {
	for _, in := range []string{"31/02/2568", "2025-13-01", "tomorrow"} {
		if _, err := ParseHolidayDate(in, time.UTC); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%s: want ErrInvalidDate, got %v", in, err)
		}
	}
	if _, err := ParseHolidayDate("  ", time.UTC); !errors.Is(err, ErrEmptyDate) {
		t.Fatalf("want ErrEmptyDate, got %v", err)
	}
}

func TestFormatThaiDate(t *testing.T) {
	d := time.Date(2025, time.April, 13, 0, 0, 0, 0, time.UTC)
	if got := FormatThaiDate(d); got != "13/04/2568" {
		t.Fatalf("want 13/04/2568, got %s", got)
	}
}

func TestParseClock(t *testing.T) {
	m, err := ParseClock("17:30")
	if err != nil || m != 17*60+30 {
		t.Fatalf("want 1050, got %d (%v)", m, err)
	}
	for _, in := range []string{"7:5", "24:00", "12:60", "noon"} {
		if _, err := ParseClock(in); err == nil {
			t.Fatalf("%s: want error", in)
		}
	}
}

func TestSplitArgs(t *testing.T) {
	first, rest := SplitArgs("  2025-01-01   New Year Day ")
	if first != "2025-01-01" || rest != "New Year Day" {
		t.Fatalf("unexpected split %q / %q", first, rest)
	}
	first, rest = SplitArgs("only")
	if first != "only" || rest != "" {
		t.Fatalf("unexpected split %q / %q", first, rest)
	}
}
