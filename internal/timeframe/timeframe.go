// Package timeframe provides the date-range primitives used by the
// analytics queries: inclusive [From, To] windows, the trailing-30-day
// default, and SQLite day bucketing.
package timeframe

import (
	"fmt"
	"time"
)

// DateStat is a single point in a daily time series.
type DateStat struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DayExprFor returns the strftime expression used to bucket the given
// timestamp column by calendar day.
func DayExprFor(column string) string {
	return fmt.Sprintf("strftime('%%Y-%%m-%%d', %s)", column)
}

// DateRange is an inclusive window between two points in time.
type DateRange struct {
	From time.Time
	To   time.Time
}

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// Trailing30Days returns the default analytics window: the 30 days
// leading up to and including now's calendar day.
func Trailing30Days(now time.Time) DateRange {
	return DateRange{
		From: StartOfDay(now.AddDate(0, 0, -30)),
		To:   EndOfDay(now),
	}
}

// Today returns the window covering now's calendar day.
func Today(now time.Time) DateRange {
	return DateRange{From: StartOfDay(now), To: EndOfDay(now)}
}

// CurrentISOWeek returns the window covering now's ISO week
// (Monday through Sunday).
func CurrentISOWeek(now time.Time) DateRange {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	monday := StartOfDay(now.AddDate(0, 0, -(weekday - 1)))
	return DateRange{From: monday, To: EndOfDay(monday.AddDate(0, 0, 6))}
}

// CurrentMonth returns the window covering now's calendar month.
func CurrentMonth(now time.Time) DateRange {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, -1)
	return DateRange{From: first, To: EndOfDay(last)}
}

// ParseRange builds a DateRange from optional YYYY-MM-DD boundary
// strings. Empty strings fall back to the supplied default range;
// a set boundary is widened to cover its whole day.
func ParseRange(fromStr, toStr string, fallback DateRange) (DateRange, error) {
	rng := fallback

	if fromStr != "" {
		from, err := time.ParseInLocation("2006-01-02", fromStr, time.UTC)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid date_from %q: %w", fromStr, err)
		}
		rng.From = StartOfDay(from)
	}

	if toStr != "" {
		to, err := time.ParseInLocation("2006-01-02", toStr, time.UTC)
		if err != nil {
			return DateRange{}, fmt.Errorf("invalid date_to %q: %w", toStr, err)
		}
		rng.To = EndOfDay(to)
	}

	if rng.From.After(rng.To) {
		return DateRange{}, fmt.Errorf("date_from must not be after date_to")
	}

	return rng, nil
}
