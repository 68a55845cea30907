package reporting

import "time"

// =============================================================================
// DAY BOUNDARIES
// =============================================================================

// StartOfDay returns d at 00:00:00.000 in d's location.
func StartOfDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

// EndOfDay returns d at 23:59:59.999 in d's location. Stored timestamps have
// at most millisecond precision, so this is the last representable instant
// of the day.
func EndOfDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, int(999*time.Millisecond), d.Location())
}

// =============================================================================
// WEEK BOUNDARIES - Monday-anchored
// =============================================================================

// Monday returns the Monday of the week containing d, at start of day.
// Sunday counts as day 7 of the preceding Monday-anchored week.
func Monday(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return StartOfDay(d.AddDate(0, 0, -offset))
}

// Sunday returns the Sunday closing the week containing d, at start of day.
func Sunday(d time.Time) time.Time {
	return Monday(d).AddDate(0, 0, 6)
}

// WeekOf returns the Monday 00:00:00.000 through Sunday 23:59:59.999 period
// containing the reference instant.
func WeekOf(ref time.Time) Period {
	monday := Monday(ref)
	return Period{Start: monday, End: EndOfDay(monday.AddDate(0, 0, 6))}
}

// YesterdayRange returns the full day before the reference instant.
func YesterdayRange(ref time.Time) Period {
	y := ref.AddDate(0, 0, -1)
	return Period{Start: StartOfDay(y), End: EndOfDay(y)}
}
