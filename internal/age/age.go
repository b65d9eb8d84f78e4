// Package age computes ticket ages for display and pick scoring.
package age

import "time"

// AgeData returns how long ago since was, clamped at zero, and whether a
// timestamp was present at all.
func AgeData(since time.Time, now time.Time) (time.Duration, bool) {
	if since.IsZero() {
		return 0, false
	}
	return max(now.Sub(since), 0), true
}

// DurationData returns the time between start and end, clamped at zero.
// An open interval (zero end) is measured against now.
func DurationData(start, end, now time.Time) (time.Duration, bool) {
	if start.IsZero() {
		return 0, false
	}
	if end.IsZero() {
		end = now
	}
	return max(end.Sub(start), 0), true
}

// Days returns the age of since in fractional days. Future and missing
// timestamps are zero days old.
func Days(since time.Time, now time.Time) float64 {
	d, _ := AgeData(since, now)
	return d.Hours() / 24
}
