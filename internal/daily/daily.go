// Package daily maps calendar dates onto positions in an ordered verse list.
//
// All functions are pure. A date is reduced to its own year/month/day triple, so two
// moments on the same calendar day always map to the same ordinal regardless of the
// time of day or the location attached to the time.Time.
package daily

import (
	"errors"
	"time"
)

const msPerDay = 24 * 60 * 60 * 1000

// ErrEmptyCatalog is returned when an index is requested for a zero-length list.
var ErrEmptyCatalog = errors.New("daily: list length must be positive")

// DayIndex returns the number of whole days between the Unix epoch and t's calendar date.
func DayIndex(t time.Time) int64 {
	y, m, d := t.Date()
	ms := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).UnixMilli()
	return floorDiv(ms, msPerDay)
}

// IdxForDate returns DayIndex(t) reduced into [0, length).
func IdxForDate(t time.Time, length int) (int, error) {
	if length <= 0 {
		return 0, ErrEmptyCatalog
	}
	l := int64(length)
	return int(((DayIndex(t) % l) + l) % l), nil
}

// Effective applies a shuffle offset to a base index, wrapping into [0, length).
// Callers must ensure length > 0. Both terms are reduced first, so no offset overflows.
func Effective(base, offset, length int) int {
	return ((base%length+offset%length)%length + length) % length
}

// OffsetFor returns the offset that makes Effective(base, offset, length) == target.
func OffsetFor(target, base, length int) int {
	return ((target-base)%length + length) % length
}

// SameDay reports whether a and b fall on the same calendar date in their own locations.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DateKey formats t's calendar date as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// ParseDate parses a YYYY-MM-DD date in loc (time.Local when nil).
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(time.DateOnly, s, loc)
}

// Tomorrow returns the same wall-clock time on the next calendar day.
func Tomorrow(t time.Time) time.Time {
	return t.AddDate(0, 0, 1)
}

// NextRollover returns the instant just after the next local midnight following now.
func NextRollover(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, int(50*time.Millisecond), now.Location())
}

// FormatLong renders a date the way the page header shows it, e.g. "Thursday, October 15, 2026".
func FormatLong(t time.Time) string {
	return t.Format("Monday, January 2, 2006")
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
