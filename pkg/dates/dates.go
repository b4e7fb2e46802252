// CLAUDE:SUMMARY Tolerant date parsing for membership exports and the "Jan 2006" month key used by every time bucket.
package dates

import (
	"math"
	"sort"
	"strings"
	"time"
)

// monthKeyLayout is the grouping key layout for all time-bucketed aggregates.
const monthKeyLayout = "Jan 2006"

// layouts accepted by Parse, tried in order. Slash dates are month-first.
var layouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"2006/01/02 15:04:05",
	"1/2/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"2006-01-02 3:04:05 PM",
	"Jan 2 2006",
	"Jan 2 2006 15:04:05",
	"Jan 2 2006, 15:04:05",
	"Jan 2 2006, 3:04:05 PM",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"2-Jan-2006",
	"Mon Jan 2 2006",
}

// Parse reads a date as found in membership exports. One comma is dropped
// first so that "2025-10-31, 21:50:13" parses like "2025-10-31 21:50:13".
// Empty or unrecognised input reports false.
func Parse(s string) (time.Time, bool) {
	s = strings.Replace(strings.TrimSpace(s), ",", "", 1)
	if s == "" {
		return time.Time{}, false
	}
	s = strings.Join(strings.Fields(s), " ")
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MonthKey returns the "Mon YYYY" label of t, e.g. "Oct 2025".
func MonthKey(t time.Time) string {
	return t.Format(monthKeyLayout)
}

// MonthOrder converts a month key to a sortable int (202510). Unknown keys
// sort first as 0.
func MonthOrder(key string) int {
	t, err := time.Parse(monthKeyLayout, key)
	if err != nil {
		return 0
	}
	return t.Year()*100 + int(t.Month())
}

// SortMonthKeys orders month keys chronologically in place.
func SortMonthKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		return MonthOrder(keys[i]) < MonthOrder(keys[j])
	})
}

// DaysBetween returns the whole number of days separating a and b, rounded up
// and independent of argument order.
func DaysBetween(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(math.Ceil(d.Hours() / 24))
}

// DateOnly truncates t to midnight of its calendar day.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
