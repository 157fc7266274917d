// Package window computes the UTC date ranges the dashboard API is
// queried with.
//
// Two inclusivity conventions coexist on purpose and must not be unified
// without sign-off: Lookback returns a half-open span (start inclusive,
// end exclusive) for continuous trailing windows, while SingleDay, Range
// and LastComplete return inclusive-inclusive calendar spans ending at
// 23:59:59.999999. Conflating the two causes one-day data gaps.
package window

import "time"

// DayLayout formats a timestamp as its calendar date.
const DayLayout = "2006-01-02"

// Window is a UTC date range. Whether End is inclusive depends on the
// constructor that produced it; see the package comment.
type Window struct {
	Start time.Time
	End   time.Time
}

// StartDay returns the calendar date of Start.
func (w Window) StartDay() string { return w.Start.UTC().Format(DayLayout) }

// EndDay returns the calendar date of End.
func (w Window) EndDay() string { return w.End.UTC().Format(DayLayout) }

// StartOfDay truncates t to 00:00:00 UTC of its calendar day.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Lookback returns the trailing span of the given number of days up to
// now. Half-open: Start inclusive, End exclusive, End == now in UTC.
func Lookback(days int, now time.Time) Window {
	end := now.UTC()
	return Window{
		Start: end.Add(-time.Duration(days) * 24 * time.Hour),
		End:   end,
	}
}

// SingleDay returns the inclusive-inclusive span covering one calendar
// day: 00:00:00 through 23:59:59.999999 UTC. If date falls on now's
// calendar day the end is clamped to now so future data is never
// requested. All callers get the today-clamp rule from here.
func SingleDay(date, now time.Time) Window {
	start := StartOfDay(date)
	end := start.Add(24*time.Hour - time.Microsecond)

	now = now.UTC()
	if StartOfDay(now).Equal(start) {
		end = now
	}
	return Window{Start: start, End: end}
}

// Range returns the inclusive-inclusive span from a's day start to b's
// day end (23:59:59.999999 UTC).
func Range(a, b time.Time) Window {
	start := StartOfDay(a)
	end := StartOfDay(b).Add(24*time.Hour - time.Microsecond)
	return Window{Start: start, End: end}
}

// LastComplete returns the span covering the last n complete calendar
// days: ending yesterday at 23:59:59.999999 UTC, never including now's
// calendar date. Every day in the span has had a full 24 hours to
// accumulate data.
func LastComplete(n int, now time.Time) Window {
	end := StartOfDay(now).Add(-time.Microsecond)
	start := StartOfDay(end).AddDate(0, 0, -(n - 1))
	return Window{Start: start, End: end}
}

// EnumerateDays returns the start-of-day timestamp of every calendar day
// from start's day through end's day, inclusive, ascending. It is a pure
// function of its inputs and can be re-derived at any point.
func EnumerateDays(start, end time.Time) []time.Time {
	first := StartOfDay(start)
	last := StartOfDay(end)

	var days []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
