package reporting

import "time"

// =============================================================================
// PERIOD - Inclusive date range
// =============================================================================

// Period is the time boundary for an aggregate. Aggregates are ALWAYS
// computed for a period, never "since forever".
//
// Examples:
//   - This week: Monday 00:00:00.000 - Sunday 23:59:59.999
//   - Yesterday: one full day
//   - A reporting range picked by an admin
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod builds an inclusive period spanning full days from the first
// date through the last.
func NewPeriod(from, to time.Time) Period {
	return Period{Start: StartOfDay(from), End: EndOfDay(to)}
}

// Contains returns true if t is within [Start, End].
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// Previous returns the period covering the same number of calendar days
// immediately before this one. Calendar arithmetic, not wall-clock: a DST
// transition inside either period must not shift the anchor.
func (p Period) Previous() Period {
	days := len(p.Days())
	return Period{
		Start: StartOfDay(p.Start).AddDate(0, 0, -days),
		End:   EndOfDay(p.Start.AddDate(0, 0, -1)),
	}
}

// Validate reports a malformed range (end before start).
func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return &InvalidPeriodError{Start: p.Start, End: p.End}
	}
	return nil
}

// Days returns the start of every day in the period, in order.
func (p Period) Days() []time.Time {
	var days []time.Time
	for d := StartOfDay(p.Start); !d.After(p.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func (p Period) String() string {
	return "[" + p.Start.Format("2006-01-02") + ", " + p.End.Format("2006-01-02") + "]"
}
