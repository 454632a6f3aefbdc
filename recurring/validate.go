package recurring

import (
	"time"

	"github.com/gekoparty/utgifter/period"
)

// parsePeriodKey validates a raw period key, naming the field on failure.
func parsePeriodKey(raw string) (period.Key, error) {
	k, err := period.Parse(raw)
	if err != nil {
		return "", &FieldError{Field: "periodKey", Value: raw, Reason: "must be YYYY-MM"}
	}
	return k, nil
}

// parsePauseKey is parsePeriodKey naming the pause bound that failed.
func parsePauseKey(field, raw string) (period.Key, error) {
	k, err := period.Parse(raw)
	if err != nil {
		return "", &FieldError{Field: field, Value: raw, Reason: "must be YYYY-MM"}
	}
	return k, nil
}

// ValidateTemplate checks the structural invariants of a template
// definition. A template failing validation is excluded from forecasting;
// it must never take the other templates down with it.
func ValidateTemplate(t Template) error {
	if t.ID == "" {
		return &FieldError{Field: "id", Value: "", Reason: "required"}
	}
	if !t.Type.Valid() {
		return &FieldError{Field: "type", Value: string(t.Type), Reason: "unknown expense type"}
	}
	if !ValidBillingInterval(t.BillingIntervalMonths) {
		return &FieldError{Field: "billingIntervalMonths", Value: t.BillingIntervalMonths, Reason: "must be 1, 3, 6 or 12"}
	}
	if t.StartMonth < time.January || t.StartMonth > time.December {
		return &FieldError{Field: "startMonth", Value: int(t.StartMonth), Reason: "must be 1-12"}
	}
	if t.Amount.IsNegative() || t.EstimateMin.IsNegative() || t.EstimateMax.IsNegative() {
		return &FieldError{Field: "amount", Value: t.Amount.String(), Reason: "must not be negative"}
	}
	for _, p := range t.Pauses {
		if err := ValidatePause(p.From, p.To); err != nil {
			return err
		}
	}
	for _, s := range t.Terms {
		if !s.EffectiveFrom.Valid() {
			return &FieldError{Field: "effectiveFromPeriodKey", Value: string(s.EffectiveFrom), Reason: "must be YYYY-MM"}
		}
	}
	return nil
}

// NormalizeTemplate clamps and canonicalizes a template at the write
// boundary: due day into [1, 28], legacy type alias to its canonical form,
// terms sorted for as-of resolution.
func NormalizeTemplate(t Template) (Template, error) {
	typ, err := NormalizeType(string(t.Type))
	if err != nil {
		return t, err
	}
	t.Type = typ
	t.DueDay = period.ClampDueDay(t.DueDay)
	SortTerms(t.Terms)
	return t, nil
}
