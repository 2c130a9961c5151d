package common

import (
	"fmt"
	"math"
	"time"
)

// dateLayouts are the deadline formats found in older snapshots.
var dateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

// ParseDate parses a calendar date or RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date: %q", s)
}

// WeekOfYear returns the planning week of t: weeks start on Sunday and
// week 1 is the one containing January 1st, so
// week = ceil((daysSinceJan1 + weekday(Jan1) + 1) / 7).
func WeekOfYear(t time.Time) int {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	days := t.Sub(jan1).Hours() / 24
	return int(math.Ceil((days + float64(jan1.Weekday()) + 1) / 7))
}

// Today returns the current date as YYYY-MM-DD.
func Today(now time.Time) string {
	return now.Format("2006-01-02")
}
