/*
pause.go - Pause window resolution

PURPOSE:
  Decides whether a period falls inside one of a template's pause windows.
  Overlapping pauses should not happen but are not prevented at write time;
  the resolver picks the first match in list order and reports the overlap
  as a data-quality condition for the caller to log, never a fatal error.
*/
package recurring

import "github.com/gekoparty/utgifter/period"

// ResolvePause returns the first pause covering period k, or nil.
// overlapping is true when more than one pause covers k.
func (t Template) ResolvePause(k period.Key) (pause *PausePeriod, overlapping bool) {
	for i := range t.Pauses {
		if !t.Pauses[i].Contains(k) {
			continue
		}
		if pause == nil {
			pause = &t.Pauses[i]
			continue
		}
		return pause, true
	}
	return pause, false
}

// ValidatePause checks a pause range before any state change.
func ValidatePause(from, to period.Key) error {
	if !from.Valid() {
		return &FieldError{Field: "from", Value: string(from), Reason: "must be YYYY-MM"}
	}
	if !to.Valid() {
		return &FieldError{Field: "to", Value: string(to), Reason: "must be YYYY-MM"}
	}
	if to.Before(from) {
		return &FieldError{Field: "to", Value: string(to), Reason: "must not precede from"}
	}
	return nil
}
