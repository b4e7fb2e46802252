package dates

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
		ok    bool
	}{
		{"2025-10-31", time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC), true},
		{"  2025-10-31  ", time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC), true},
		{"2025-10-31, 21:50:13", time.Date(2025, 10, 31, 21, 50, 13, 0, time.UTC), true},
		{"2025-10-31 21:50", time.Date(2025, 10, 31, 21, 50, 0, 0, time.UTC), true},
		{"10/31/2025", time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC), true},
		{"1/5/2025", time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), true},
		{"Oct 31, 2025", time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC), true},
		{"31 Oct 2025", time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC), true},
		{"2025-10-31T08:00:00Z", time.Date(2025, 10, 31, 8, 0, 0, 0, time.UTC), true},
		{"Oct 31, 2025, 21:50:13", time.Date(2025, 10, 31, 21, 50, 13, 0, time.UTC), true},
		{"10/31/2025, 9:50:13 PM", time.Date(2025, 10, 31, 21, 50, 13, 0, time.UTC), true},
		{"10/31/2025 9:50 AM", time.Date(2025, 10, 31, 9, 50, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"   ", time.Time{}, false},
		{"not a date", time.Time{}, false},
		{"2025-13-45", time.Time{}, false},
		{"N/A", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := Parse(tt.input)
		if ok != tt.ok {
			t.Errorf("Parse(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			continue
		}
		if ok && !got.Equal(tt.want) {
			t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParse_TimeSuffixSameCalendarDate(t *testing.T) {
	a, ok := Parse("2025-10-31, 21:50:13")
	if !ok {
		t.Fatal("expected time-suffixed date to parse")
	}
	b, ok := Parse("2025-10-31")
	if !ok {
		t.Fatal("expected plain date to parse")
	}
	if !DateOnly(a).Equal(DateOnly(b)) {
		t.Errorf("calendar dates differ: %v vs %v", a, b)
	}
	if MonthKey(a) != MonthKey(b) {
		t.Errorf("month keys differ: %q vs %q", MonthKey(a), MonthKey(b))
	}
}

func TestMonthKey(t *testing.T) {
	a := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2025, 10, 31, 23, 59, 0, 0, time.UTC)
	if MonthKey(a) != "Oct 2025" {
		t.Errorf("MonthKey = %q, want Oct 2025", MonthKey(a))
	}
	if MonthKey(a) != MonthKey(b) {
		t.Errorf("same month gave %q and %q", MonthKey(a), MonthKey(b))
	}
	if MonthKey(time.Date(2024, 10, 5, 0, 0, 0, 0, time.UTC)) == MonthKey(a) {
		t.Error("different years must not share a key")
	}
}

func TestSortMonthKeys(t *testing.T) {
	keys := []string{"Feb 2025", "Dec 2024", "Jan 2025", "Oct 2023"}
	SortMonthKeys(keys)
	want := []string{"Oct 2023", "Dec 2024", "Jan 2025", "Feb 2025"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("SortMonthKeys = %v, want %v", keys, want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		other time.Time
		want  int
	}{
		{time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), 0},
		{time.Date(2025, 2, 28, 12, 0, 0, 0, time.UTC), 1},
		{time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), 2},
		{time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC), 30},
	}
	for _, tt := range tests {
		if got := DaysBetween(now, tt.other); got != tt.want {
			t.Errorf("DaysBetween(%v) = %d, want %d", tt.other, got, tt.want)
		}
	}
}
