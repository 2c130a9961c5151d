package common

import (
	"fmt"
	"time"
)

// FormatAge describes t relative to the current time: "just now",
// "5m ago", "3h ago", "4d ago", "3w ago", or "in 2d" for future times
// such as invitation expiries.
func FormatAge(t time.Time) string {
	return FormatAgeAt(t, time.Now())
}

// FormatAgeAt is FormatAge against a fixed clock.
func FormatAgeAt(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d > -time.Minute && d < time.Minute:
		return "just now"
	case d < 0:
		return "in " + span(-d)
	default:
		return span(d) + " ago"
	}
}

// span renders d in its largest whole unit. Weeks start at 14 days so
// the last fortnight stays day-accurate.
func span(d time.Duration) string {
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 14*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw", int(d.Hours()/(24*7)))
	}
}
