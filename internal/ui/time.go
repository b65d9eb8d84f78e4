package ui

import (
	"fmt"
	"time"

	internalage "github.com/amonks/muontickets/internal/age"
)

const (
	day  = 24 * time.Hour
	week = 7 * day
	year = 365 * day
)

// FormatAge returns the compact age of a ticket timestamp, like "3d" or
// "5w". Missing timestamps render as "-".
func FormatAge(then, now time.Time) string {
	d, ok := internalage.AgeData(then, now)
	if !ok {
		return "-"
	}
	return FormatDuration(d)
}

// FormatAgeAgo is FormatAge with an "ago" suffix for prose output.
func FormatAgeAgo(then, now time.Time) string {
	s := FormatAge(then, now)
	if s == "-" || s == "now" {
		return s
	}
	return s + " ago"
}

// FormatLifetime returns how long a ticket lived, from creation to
// archival, or to now while it is still open.
func FormatLifetime(created, archived, now time.Time) (string, bool) {
	d, ok := internalage.DurationData(created, archived, now)
	if !ok {
		return "", false
	}
	return FormatDuration(d), true
}

// FormatDuration formats d with a single unit. Days run through the fifth
// week so recent tickets stay precise.
func FormatDuration(d time.Duration) string {
	d = max(d, 0)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", d/time.Minute)
	case d < day:
		return fmt.Sprintf("%dh", d/time.Hour)
	case d < 5*week:
		return fmt.Sprintf("%dd", d/day)
	case d < year:
		return fmt.Sprintf("%dw", d/week)
	default:
		return fmt.Sprintf("%dy", d/year)
	}
}
