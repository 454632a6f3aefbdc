/*
Package period provides the YYYY-MM period key, the timeline unit for the
recurring obligation engine.

PURPOSE:
  Everything in the forecast engine is keyed by calendar month. A period key
  is a validated "YYYY-MM" string. The format was chosen deliberately:
  lexicographic order on period keys equals chronological order, so keys can
  be compared and sorted as plain strings, stored as TEXT, and used directly
  in SQL range queries.

KEY CONCEPTS:
  - Key: a calendar month ("2025-03")
  - Window: an inclusive month range [From, To]
  - DueDate: a key combined with a day-of-month, clamped to 28 so every
    month has the day

USAGE:
  key, err := period.Parse("2025-03")
  next := key.AddMonths(1)            // 2025-04
  win := period.NewWindow(start, end)
  keys := win.Keys()                  // every month in the window

SEE ALSO:
  - recurring/calendar.go: due-period enumeration built on this package
*/
package period

import (
	"fmt"
	"time"
)

// Layout is the canonical period key format.
const Layout = "2006-01"

// Key identifies a calendar month as "YYYY-MM".
// Lexicographic comparison of two Keys is chronologically correct.
type Key string

// Parse validates and returns a period key.
func Parse(s string) (Key, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return "", fmt.Errorf("invalid period key %q (want YYYY-MM): %w", s, err)
	}
	// Round-trip guards against accepted-but-noncanonical inputs like "2025-3".
	if t.Format(Layout) != s {
		return "", fmt.Errorf("invalid period key %q (want YYYY-MM)", s)
	}
	return Key(s), nil
}

// MustParse is Parse for test fixtures and constants; it panics on error.
func MustParse(s string) Key {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return k
}

// FromTime returns the key of the month containing t.
func FromTime(t time.Time) Key {
	return Key(t.UTC().Format(Layout))
}

// ThisMonth returns the key of the current month.
func ThisMonth() Key {
	return FromTime(time.Now())
}

// Valid reports whether k is a well-formed period key.
func (k Key) Valid() bool {
	_, err := Parse(string(k))
	return err == nil
}

func (k Key) String() string { return string(k) }

// Time returns the first instant of the month, UTC.
func (k Key) Time() time.Time {
	t, _ := time.Parse(Layout, string(k))
	return t
}

func (k Key) Year() int         { return k.Time().Year() }
func (k Key) Month() time.Month { return k.Time().Month() }

// Comparison: plain string order is chronological order for valid keys.
func (k Key) Before(other Key) bool        { return k < other }
func (k Key) After(other Key) bool         { return k > other }
func (k Key) BeforeOrEqual(other Key) bool { return k <= other }
func (k Key) AfterOrEqual(other Key) bool  { return k >= other }

// AddMonths returns the key n months after k. n may be negative.
func (k Key) AddMonths(n int) Key {
	return FromTime(k.Time().AddDate(0, n, 0))
}

func (k Key) Next() Key { return k.AddMonths(1) }
func (k Key) Prev() Key { return k.AddMonths(-1) }

// MonthsBetween returns the signed count of months from k to other.
// MonthsBetween("2025-01", "2025-04") == 3.
func (k Key) MonthsBetween(other Key) int {
	a, b := k.Time(), other.Time()
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// MaxDueDay is the largest day-of-month an obligation may be due on.
// Capping at 28 means the due day exists in every month, February included.
const MaxDueDay = 28

// ClampDueDay forces a due day into [1, 28].
func ClampDueDay(day int) int {
	if day < 1 {
		return 1
	}
	if day > MaxDueDay {
		return MaxDueDay
	}
	return day
}

// DueDate combines a period key with a due day into a concrete date (UTC).
// The day is clamped to [1, 28] so the result always exists.
func (k Key) DueDate(dueDay int) time.Time {
	t := k.Time()
	return time.Date(t.Year(), t.Month(), ClampDueDay(dueDay), 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// WINDOW - Inclusive month range
// =============================================================================

// Window is an inclusive range of months [From, To].
type Window struct {
	From Key
	To   Key
}

// NewWindow builds a window, swapping the bounds if given in reverse.
func NewWindow(from, to Key) Window {
	if to.Before(from) {
		from, to = to, from
	}
	return Window{From: from, To: to}
}

// Around returns the window [center − pastMonths, center + forwardMonths].
func Around(center Key, pastMonths, forwardMonths int) Window {
	return Window{
		From: center.AddMonths(-pastMonths),
		To:   center.AddMonths(forwardMonths),
	}
}

// Contains reports whether k falls inside the window.
func (w Window) Contains(k Key) bool {
	return w.From.BeforeOrEqual(k) && k.BeforeOrEqual(w.To)
}

// Months returns the number of months in the window (at least 1).
func (w Window) Months() int {
	return w.From.MonthsBetween(w.To) + 1
}

// Keys enumerates every month in the window, ascending.
func (w Window) Keys() []Key {
	keys := make([]Key, 0, w.Months())
	for k := w.From; k.BeforeOrEqual(w.To); k = k.Next() {
		keys = append(keys, k)
	}
	return keys
}

func (w Window) String() string {
	return "[" + string(w.From) + ", " + string(w.To) + "]"
}
