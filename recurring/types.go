/*
Package recurring implements the recurring obligation forecast and
reconciliation engine.

PURPOSE:
  Reconciles four independent, time-varying inputs into a single view:
    1. A recurring expense template (the obligation definition)
    2. An ordered sequence of effective-dated term changes
    3. A set of pause windows
    4. An append-only payment ledger
  The output is a per-month forecast with a per-instance payment status,
  over both past and future horizons, including mortgage amortization
  estimates for mortgage-type templates.

KEY CONCEPTS IN THIS FILE (types.go):
  - Template:      a recurring obligation definition
  - TermsSnapshot: an effective-dated override of the price-bearing fields
  - PausePeriod:   an inclusive month range generating no payable instance
  - Payment:       an actual payment record (one per settled period)
  - ForecastItem:  one obligation instance for one period (derived)
  - ForecastMonth: per-month rollup of items (derived)

DESIGN PRINCIPLES:
  1. Projection, not state: status is recomputed on every query, never
     persisted. The next read always reflects the latest truth.
  2. Precision: decimal.Decimal for all money and rates, no float math.
  3. Append-only history: term snapshots are forward-effective; adding one
     never changes the resolved terms of earlier periods.
  4. Canonical enums: the legacy HOUSING type is normalized to MORTGAGE at
     the boundary; the engine only ever sees canonical values.

SEE ALSO:
  - calendar.go: which months a template is due in
  - terms.go:    as-of resolution of term snapshots
  - mortgage.go: amortization estimates
  - forecast.go: the aggregator composing everything
*/
package recurring

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/gekoparty/utgifter/period"
)

// =============================================================================
// EXPENSE TYPE - Canonical obligation categories
// =============================================================================

type ExpenseType string

const (
	TypeMortgage     ExpenseType = "MORTGAGE"
	TypeUtility      ExpenseType = "UTILITY"
	TypeInsurance    ExpenseType = "INSURANCE"
	TypeSubscription ExpenseType = "SUBSCRIPTION"

	// legacyHousing is accepted on input only and normalized to TypeMortgage.
	legacyHousing = "HOUSING"
)

// NormalizeType maps a raw type string to its canonical ExpenseType.
// The legacy HOUSING alias becomes MORTGAGE. Unknown values are rejected.
func NormalizeType(raw string) (ExpenseType, error) {
	switch raw {
	case string(TypeMortgage), legacyHousing:
		return TypeMortgage, nil
	case string(TypeUtility):
		return TypeUtility, nil
	case string(TypeInsurance):
		return TypeInsurance, nil
	case string(TypeSubscription):
		return TypeSubscription, nil
	default:
		return "", &FieldError{Field: "type", Value: raw, Reason: "unknown expense type"}
	}
}

// Valid reports whether t is one of the canonical types.
func (t ExpenseType) Valid() bool {
	switch t {
	case TypeMortgage, TypeUtility, TypeInsurance, TypeSubscription:
		return true
	}
	return false
}

// IsMortgage reports whether t is amortization-bearing.
func (t ExpenseType) IsMortgage() bool { return t == TypeMortgage }

// =============================================================================
// TEMPLATE - A recurring obligation definition
// =============================================================================

// BillingIntervals are the allowed values for Template.BillingIntervalMonths.
var BillingIntervals = []int{1, 3, 6, 12}

// ValidBillingInterval reports whether n is an allowed billing interval.
func ValidBillingInterval(n int) bool {
	for _, v := range BillingIntervals {
		if n == v {
			return true
		}
	}
	return false
}

// Template is a recurring obligation definition. Templates are mutated in
// place by terms/pause operations and archived (IsActive=false) rather than
// hard-deleted so payment history stays intact.
type Template struct {
	ID    string
	Title string
	Type  ExpenseType

	// DueDay is the day-of-month the obligation is due, clamped to 1–28.
	DueDay int

	// BillingIntervalMonths is 1, 3, 6 or 12.
	BillingIntervalMonths int

	// StartMonth (1–12) anchors the billing cycle within the year.
	StartMonth time.Month

	// Baseline price fields (non-mortgage). Exactly one of the estimate
	// range and the fixed amount drives the expected value per period.
	Amount      decimal.Decimal
	EstimateMin decimal.Decimal
	EstimateMax decimal.Decimal

	// Mortgage fields (MORTGAGE type only).
	MortgageHolder   string
	MortgageKind     string
	RemainingBalance decimal.Decimal
	InterestRate     decimal.Decimal // annual, percent
	HasMonthlyFee    bool
	MonthlyFee       decimal.Decimal

	// IsActive is false once the obligation is finished/archived.
	IsActive bool

	// Terms is ordered ascending by EffectiveFrom. Append-only except for
	// the explicit change-terms operation updating a same-key snapshot.
	Terms []TermsSnapshot

	Pauses []PausePeriod

	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// TERMS SNAPSHOT - Effective-dated override
// =============================================================================

// TermsSnapshot overrides the template's price-bearing fields from a given
// period forward. Nil pointer fields are untouched by the override.
//
// Resolution semantics (see terms.go):
//   - Non-mortgage: if the snapshot sets any of Amount/EstimateMin/
//     EstimateMax, the whole price group comes from the snapshot (unset
//     members resolve to zero). A fixed-amount change therefore clears a
//     baseline estimate range instead of being shadowed by it.
//   - Mortgage: InterestRate, RemainingBalance, HasMonthlyFee, MonthlyFee
//     and Amount fall back to the baseline individually, so a rate change
//     does not wipe the recorded balance.
type TermsSnapshot struct {
	ID            string
	EffectiveFrom period.Key

	Amount      *decimal.Decimal
	EstimateMin *decimal.Decimal
	EstimateMax *decimal.Decimal

	InterestRate     *decimal.Decimal
	RemainingBalance *decimal.Decimal
	HasMonthlyFee    *bool
	MonthlyFee       *decimal.Decimal

	Note      string
	CreatedAt time.Time
}

// touchesPrice reports whether the snapshot overrides the non-mortgage
// price group.
func (s TermsSnapshot) touchesPrice() bool {
	return s.Amount != nil || s.EstimateMin != nil || s.EstimateMax != nil
}

// =============================================================================
// PAUSE PERIOD - Months generating no payable instance
// =============================================================================

// PausePeriod is an inclusive month range [From, To] during which the
// obligation generates no payable instance.
type PausePeriod struct {
	ID        string
	From      period.Key
	To        period.Key
	Note      string
	CreatedAt time.Time
}

// Contains reports whether k falls inside the pause.
func (p PausePeriod) Contains(k period.Key) bool {
	return p.From.BeforeOrEqual(k) && k.BeforeOrEqual(p.To)
}

// =============================================================================
// PAYMENT - Actual payment record (append-only ledger)
// =============================================================================

type PaymentStatus string

const (
	PaymentPaid PaymentStatus = "PAID"
)

// Payment is one row of the payment ledger. The natural key is
// (RecurringExpenseID, PeriodKey); at most one PAID row should exist per
// natural key. Duplicates caused by a partially failed move are repaired on
// read, preferring the most recently created row.
type Payment struct {
	ID                 string
	RecurringExpenseID string
	PeriodKey          period.Key
	Amount             decimal.Decimal
	PaidDate           time.Time
	Status             PaymentStatus
	CreatedAt          time.Time
}

// =============================================================================
// FORECAST (derived, never persisted)
// =============================================================================

// Status of a single forecast item. Computed fresh on every query.
type Status string

const (
	StatusUnpaid Status = "UNPAID"
	StatusPaid   Status = "PAID"
	StatusPaused Status = "PAUSED"
	// StatusSkipped is reserved for periods outside a template's active
	// life. The current engine never emits it; archived templates are
	// simply not enumerated unless explicitly requested.
	StatusSkipped Status = "SKIPPED"
)

// Expected value sources.
const (
	SourceFixed    = "fixed"
	SourceEstimate = "estimate"
)

// Expected is the forecast value for one item. Either the Min/Max range is
// populated (Source="estimate" or the snapshot key that produced it) or
// Fixed is (Source="fixed" or the snapshot key).
type Expected struct {
	Min    decimal.Decimal
	Max    decimal.Decimal
	Fixed  decimal.Decimal
	Source string
}

// HasRange reports whether the expected value is an estimate range.
func (e Expected) HasRange() bool {
	return !e.Min.IsZero() || !e.Max.IsZero()
}

// MinAmount returns the lower bound, using Fixed when no range exists.
func (e Expected) MinAmount() decimal.Decimal {
	if e.HasRange() {
		return e.Min
	}
	return e.Fixed
}

// MaxAmount returns the upper bound, using Fixed when no range exists.
func (e Expected) MaxAmount() decimal.Decimal {
	if e.HasRange() {
		return e.Max
	}
	return e.Fixed
}

// Actual is the reconciled payment attached to a forecast item.
type Actual struct {
	PaymentID string
	Amount    decimal.Decimal
	PaidDate  time.Time
}

// MortgageEstimate is the amortization decomposition for a mortgage item.
// MonthsLeft is nil when the principal contribution is zero or negative
// (the debt never resolves under current terms).
type MortgageEstimate struct {
	Interest   decimal.Decimal
	Principal  decimal.Decimal
	MonthsLeft *int
	// Degenerate is set when the payment does not cover interest plus fee.
	Degenerate bool
}

// ForecastItem is one obligation instance: one template in one due period.
type ForecastItem struct {
	RecurringExpenseID string
	Title              string
	Type               ExpenseType
	PeriodKey          period.Key
	DueDate            time.Time
	Expected           Expected
	Actual             *Actual
	Status             Status
	PauseID            string
	Mortgage           *MortgageEstimate
}

// ForecastMonth is the per-month rollup.
// Paused items appear in Items but contribute nothing to the totals.
type ForecastMonth struct {
	Key         period.Key
	Date        time.Time
	Items       []ForecastItem
	ExpectedMin decimal.Decimal
	ExpectedMax decimal.Decimal
	PaidTotal   decimal.Decimal
	ItemsCount  int
}

// Sum3 aggregates the first three forecast months from today forward.
type Sum3 struct {
	Min  decimal.Decimal
	Max  decimal.Decimal
	Paid decimal.Decimal
}

// Summary is the full response of a forecast query.
type Summary struct {
	Expenses  []Template
	Forecast  []ForecastMonth
	NextBills []ForecastItem
	Meta      SummaryMeta
}

type SummaryMeta struct {
	Sum3 Sum3
}

// Filter narrows a summary query to one expense type. The zero value
// (FilterAll) includes everything.
type Filter string

const FilterAll Filter = "ALL"

// ParseFilter normalizes a filter string, accepting the legacy HOUSING
// alias. Empty input means ALL.
func ParseFilter(raw string) (Filter, error) {
	if raw == "" || raw == string(FilterAll) {
		return FilterAll, nil
	}
	t, err := NormalizeType(raw)
	if err != nil {
		return "", &FieldError{Field: "filter", Value: raw, Reason: "unknown filter"}
	}
	return Filter(t), nil
}

// Matches reports whether a template passes the filter.
func (f Filter) Matches(t Template) bool {
	return f == FilterAll || f == "" || ExpenseType(f) == t.Type
}
