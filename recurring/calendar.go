/*
calendar.go - Due-period enumeration

PURPOSE:
  Decides which calendar months a template generates an obligation in.
  The billing cycle is anchored at StartMonth and recurs every
  BillingIntervalMonths, evaluated independently per year so the pattern
  repeats across year boundaries:

    startMonth=11, interval=3  ->  ...-11, ...-02, ...-05, ...-08, ...

  A monthly template (interval=1) is due every month regardless of
  StartMonth.

SEE ALSO:
  - period/period.go: window enumeration and due-date derivation
  - forecast.go: consumes DuePeriods per template
*/
package recurring

import (
	"time"

	"github.com/gekoparty/utgifter/period"
)

// DueIn reports whether the template generates an obligation in period k.
func (t Template) DueIn(k period.Key) bool {
	interval := t.BillingIntervalMonths
	if interval <= 1 {
		return true
	}
	start := t.StartMonth
	if start < time.January || start > time.December {
		start = time.January
	}
	// Month offset within the year, normalized to [0, 12).
	offset := (int(k.Month()) - int(start) + 12) % 12
	return offset%interval == 0
}

// DuePeriods enumerates the months in the window the template is due in,
// ascending.
func (t Template) DuePeriods(w period.Window) []period.Key {
	var due []period.Key
	for k := w.From; k.BeforeOrEqual(w.To); k = k.Next() {
		if t.DueIn(k) {
			due = append(due, k)
		}
	}
	return due
}

// DueDate returns the concrete due date of the obligation in period k,
// the period's year/month combined with the clamped due day.
func (t Template) DueDate(k period.Key) time.Time {
	return k.DueDate(t.DueDay)
}
