// Package period resolves calendar-aligned windows and rolling cutoffs for
// the ledger filters and comparison views. Every function takes its reference
// instant as an argument; nothing in here reads the wall clock.
package period

import (
	"fmt"
	"strings"
	"time"
)

// Granularity selects the size of a time window.
type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
	Year  Granularity = "year"
	All   Granularity = "all"
)

// ParseGranularity maps a user-facing period name to a Granularity,
// defaulting to All.
func ParseGranularity(s string) Granularity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "today", "daily":
		return Day
	case "week", "weekly":
		return Week
	case "month", "monthly":
		return Month
	case "year", "yearly":
		return Year
	default:
		return All
	}
}

// Window is a closed interval: Start <= t <= End.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// AlignedWindow returns the calendar-aligned window holding ref. Weeks start
// on Sunday and run through Saturday. Month windows end on the last day of
// ref's month, never rolling into the next one. All yields an unbounded
// window.
func AlignedWindow(g Granularity, ref time.Time) Window {
	switch g {
	case Week:
		start := startOfDay(ref.AddDate(0, 0, -int(ref.Weekday())))
		return Window{Start: start, End: endOfDay(start.AddDate(0, 0, 6))}
	case Month:
		start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
		return Window{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}
	case Year:
		start := time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, ref.Location())
		return Window{Start: start, End: start.AddDate(1, 0, 0).Add(-time.Nanosecond)}
	case All:
		return Window{Start: time.Time{}, End: time.Date(9999, time.December, 31, 23, 59, 59, 0, ref.Location())}
	default:
		return Window{Start: startOfDay(ref), End: endOfDay(ref)}
	}
}

// RollingCutoff returns the inclusive lower bound for a ledger-wide filter
// measured backward from now. There is no upper bound. All yields the zero
// time, which admits everything.
func RollingCutoff(g Granularity, now time.Time) time.Time {
	switch g {
	case Day:
		return now.AddDate(0, 0, -1)
	case Week:
		return now.AddDate(0, 0, -7)
	case Month:
		return now.AddDate(0, -1, 0)
	case Year:
		return now.AddDate(0, 0, -365)
	default:
		return time.Time{}
	}
}

// ShiftRelative resolves a relative phrase against now. Only "yesterday" is
// recognised; anything else resolves to now itself.
func ShiftRelative(phrase string, now time.Time) time.Time {
	if strings.EqualFold(strings.TrimSpace(phrase), "yesterday") {
		return now.AddDate(0, 0, -1)
	}
	return now
}

// Label renders a human label for an aligned window: "Today", "Yesterday",
// a weekday range for week windows, or "Month Year" for anything larger.
func Label(w Window, now time.Time) string {
	switch {
	case sameDay(w.Start, w.End):
		if sameDay(w.Start, now) {
			return "Today"
		}
		if sameDay(w.Start, now.AddDate(0, 0, -1)) {
			return "Yesterday"
		}
		return w.Start.Format("Mon, 2 Jan")
	case w.End.Sub(w.Start) < 8*24*time.Hour:
		return fmt.Sprintf("%s – %s", w.Start.Format("Mon 2 Jan"), w.End.Format("Mon 2 Jan"))
	case sameDay(w.End, w.Start.AddDate(0, 1, 0).AddDate(0, 0, -1)):
		return w.Start.Format("January 2006")
	default:
		return w.Start.Format("2006")
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
